package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gtrans/internal/diag"
	"gtrans/internal/diagfmt"
	"gtrans/internal/source"
	"gtrans/internal/version"
)

type diagFormat string

const (
	diagPretty diagFormat = "pretty"
	diagShort  diagFormat = "short"
	diagJSON   diagFormat = "json"
	diagSarif  diagFormat = "sarif"
)

func addDiagnosticFlags(cmd *cobra.Command) {
	cmd.Flags().String("diagnostics", "pretty", "diagnostics format (pretty|short|json|sarif)")
	cmd.Flags().String("path-mode", "auto", "paths in diagnostics (auto|absolute|relative|basename)")
	cmd.Flags().Int8("context", 1, "source lines shown around a pretty diagnostic")
}

type diagOptions struct {
	format   diagFormat
	pathMode diagfmt.PathMode
	context  int8
	color    bool
	max      int
}

// readDiagOptions reads the diagnostic flags; commands without them get
// pretty output with defaults.
func readDiagOptions(cmd *cobra.Command, out *os.File) (diagOptions, error) {
	opts := diagOptions{format: diagPretty, context: 1, color: colorEnabled(cmd, out)}
	opts.max, _ = cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	flags := cmd.Flags()
	if flags.Lookup("diagnostics") == nil {
		return opts, nil
	}

	format, _ := flags.GetString("diagnostics")
	switch f := diagFormat(strings.ToLower(format)); f {
	case diagPretty, diagShort, diagJSON, diagSarif:
		opts.format = f
	default:
		return opts, fmt.Errorf("invalid --diagnostics value %q (expected pretty|short|json|sarif)", format)
	}
	mode, _ := flags.GetString("path-mode")
	pm, ok := diagfmt.ParsePathMode(strings.ToLower(mode))
	if !ok {
		return opts, fmt.Errorf("invalid --path-mode value %q", mode)
	}
	opts.pathMode = pm
	opts.context, _ = flags.GetInt8("context")
	return opts, nil
}

// printBag renders bag in the selected format.
func printBag(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts diagOptions, args []string) error {
	switch opts.format {
	case diagShort:
		if s := diag.FormatShortDiagnostics(bag.Items(), fs, true); s != "" {
			_, err := fmt.Fprintln(w, s)
			return err
		}
		return nil
	case diagJSON:
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         opts.pathMode,
			Max:              opts.max,
			IncludeNotes:     true,
		})
	case diagSarif:
		return diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "gtrans",
			ToolVersion:    version.Version,
			InvocationArgs: args,
		})
	default:
		if bag.Len() == 0 {
			return nil
		}
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     opts.color,
			Context:   opts.context,
			PathMode:  opts.pathMode,
			ShowNotes: true,
		})
		return nil
	}
}

// reportError prints err to stderr. Located diag.Errors are rendered with
// their grammar excerpt; everything else as a plain line under prefix.
func reportError(cmd *cobra.Command, prefix string, err error, fs *source.FileSet) {
	stderr := cmd.ErrOrStderr()
	bag := diag.NewBag(len(diag.Flatten(err)))
	var plain []error
	for _, leaf := range diag.Flatten(err) {
		de, ok := diag.AsError(leaf)
		if !ok {
			plain = append(plain, leaf)
			continue
		}
		de.Locate(fs)
		if de.Path == "" {
			plain = append(plain, de)
			continue
		}
		bag.Add(de.Diagnostic())
	}
	if prefix != "" {
		fmt.Fprintf(stderr, "%s:\n", prefix)
	}
	for _, e := range plain {
		fmt.Fprintf(stderr, "error: %v\n", e)
	}
	if bag.Len() > 0 {
		diagfmt.Pretty(stderr, bag, fs, diagfmt.PrettyOpts{
			Color:     colorEnabled(cmd, os.Stderr),
			Context:   0,
			ShowNotes: true,
		})
	}
}
