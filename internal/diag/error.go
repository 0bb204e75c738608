package diag

import (
	"errors"
	"fmt"

	"gtrans/internal/source"
)

// Error is the error value returned by the lexer, parser, compiler and rewrite
// engine. Kind holds the package sentinel so callers can use errors.Is.
type Error struct {
	Code Code
	Kind error
	Msg  string
	Span source.Span
	Pos  source.LineCol // 1-based; zero when the error has no source location
	Path string
	// Notes point at related locations (previous declaration, reference chain).
	Notes []Note
	// Cause is the underlying failure, e.g. the error a translator returned.
	Cause error
}

// Errorf builds an Error located at span inside file. file may be nil for
// errors that are not tied to a grammar document.
func Errorf(code Code, kind error, file *source.File, span source.Span, format string, args ...any) *Error {
	e := &Error{
		Code: code,
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Span: span,
	}
	if file != nil {
		e.Path = file.Path
		e.Pos = file.Position(span.Start)
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Pos.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Path, e.Pos.Line, e.Pos.Col, e.Code.ID(), e.Msg)
	case e.Path != "":
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code.ID(), e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Code.ID(), e.Msg)
	}
}

// Unwrap exposes both Kind and Cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Wrap sets Cause and appends its text to the message.
func (e *Error) Wrap(cause error) *Error {
	if cause == nil {
		return e
	}
	e.Cause = cause
	e.Msg += ": " + cause.Error()
	return e
}

// At fills Path and Pos from file unless the error is already located.
func (e *Error) At(file *source.File) *Error {
	if file == nil || e.Path != "" {
		return e
	}
	e.Path = file.Path
	e.Pos = file.Position(e.Span.Start)
	return e
}

// Locate resolves Span against fs. Errors without a span stay unlocated.
func (e *Error) Locate(fs *source.FileSet) *Error {
	if fs == nil || e.Span == (source.Span{}) {
		return e
	}
	return e.At(fs.Get(e.Span.File))
}

// LocateAll locates every *Error inside err, including joined errors.
func LocateAll(err error, fs *source.FileSet) {
	switch x := err.(type) {
	case *Error:
		x.Locate(fs)
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			LocateAll(inner, fs)
		}
	case interface{ Unwrap() error }:
		LocateAll(x.Unwrap(), fs)
	}
}

// Flatten returns the leaf errors of joined errors.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return []error{err}
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, inner := range j.Unwrap() {
			out = append(out, Flatten(inner)...)
		}
		return out
	}
	return []error{err}
}

// WithNote attaches a related location.
func (e *Error) WithNote(sp source.Span, msg string) *Error {
	e.Notes = append(e.Notes, Note{Span: sp, Msg: msg})
	return e
}

// Diagnostic converts the error into a SevError diagnostic.
func (e *Error) Diagnostic() Diagnostic {
	d := NewError(e.Code, e.Span, e.Msg)
	d.Notes = append(d.Notes, e.Notes...)
	return d
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ReportErr forwards err to r as a diagnostic. Errors that are not *Error are
// reported with UnknownCode and an empty span.
func ReportErr(r Reporter, err error) {
	if r == nil || err == nil {
		return
	}
	if de, ok := AsError(err); ok {
		r.Report(de.Code, SevError, de.Span, de.Msg, de.Notes)
		return
	}
	r.Report(UnknownCode, SevError, source.Span{}, err.Error(), nil)
}
