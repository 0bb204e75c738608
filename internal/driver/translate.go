package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"

	"gtrans/internal/rewrite"
	"gtrans/internal/trace"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TranslateText applies eng to text, NFC-normalising it first when asked.
func TranslateText(ctx context.Context, eng *rewrite.Engine, text string, normalize bool) (string, error) {
	if normalize {
		text = norm.NFC.String(text)
	}
	return eng.Apply(ctx, text)
}

// TranslateFile reads path and returns its translation. A UTF-8 BOM is
// kept on the output; line endings are left alone.
func TranslateFile(ctx context.Context, eng *rewrite.Engine, path string, normalize bool) (string, error) {
	span := trace.BeginCtx(ctx, trace.ScopeFile, path)
	defer span.End("")

	// #nosec G304 -- path comes from the command line or a directory walk
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	body, hadBOM := bytes.CutPrefix(data, utf8BOM)
	out, err := TranslateText(trace.WithParent(ctx, span), eng, string(body), normalize)
	if err != nil {
		span.WithExtra("error", err.Error())
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if hadBOM {
		out = string(utf8BOM) + out
	}
	return out, nil
}

// WriteOutput writes content to path, creating parent directories.
func WriteOutput(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
