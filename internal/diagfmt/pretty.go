package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"gtrans/internal/diag"
	"gtrans/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	code, path      *color.Color
	gutter, caret   *color.Color
	note            *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.path, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	file := lookupFile(fs, d.Primary)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pal.path.Sprint(locationLabel(fs, file, d.Primary, opts.PathMode)),
		pal.severity(d.Severity).Sprint(d.Severity.String()),
		pal.code.Sprint(d.Code.ID()),
		d.Message,
	)
	if file != nil {
		writeExcerpt(w, buildExcerpt(file, d.Primary, int(opts.Context)), opts, pal)
	}
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nf := lookupFile(fs, n.Span)
		if nf == nil {
			fmt.Fprintf(w, "  = %s: %s\n", pal.note.Sprint("note"), n.Msg)
			continue
		}
		fmt.Fprintf(w, "  = %s: %s: %s\n", pal.note.Sprint("note"), locationLabel(fs, nf, n.Span, opts.PathMode), n.Msg)
	}
}

func writeExcerpt(w io.Writer, lines []excerptLine, opts PrettyOpts, pal palette) {
	if len(lines) == 0 {
		return
	}
	gw := len(strconv.FormatUint(uint64(lines[len(lines)-1].num), 10))
	blank := strings.Repeat(" ", gw+1) + "|"
	fmt.Fprintln(w, pal.gutter.Sprint(blank))
	for _, l := range lines {
		num := fmt.Sprintf("%*d |", gw+1, l.num)
		text := clip(l.text, int(opts.Width))
		if text == "" {
			fmt.Fprintln(w, pal.gutter.Sprint(num))
		} else {
			fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprint(num), text)
		}
		if l.under == 0 {
			continue
		}
		marks := "^" + strings.Repeat("~", l.under-1)
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprint(blank), strings.Repeat(" ", l.pad), pal.caret.Sprint(marks))
	}
}

func lookupFile(fs *source.FileSet, sp source.Span) *source.File {
	if fs == nil {
		return nil
	}
	return fs.Get(sp.File)
}

func locationLabel(fs *source.FileSet, f *source.File, sp source.Span, mode PathMode) string {
	if f == nil {
		return "<unknown>"
	}
	pos := f.Position(sp.Start)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, f, mode), pos.Line, pos.Col)
}

func formatPath(fs *source.FileSet, f *source.File, mode PathMode) string {
	base := ""
	if fs != nil {
		base = fs.BaseDir()
	}
	return f.FormatPath(mode.mode(), base)
}
