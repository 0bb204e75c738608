package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gtrans/internal/project"
	"gtrans/internal/rewrite"
	"gtrans/internal/translators"
)

var errNoGrammar = errors.New("no grammar given: pass -g or add [grammar].paths to " + project.ManifestName)

// runConfig is the manifest merged with command-line overrides.
type runConfig struct {
	manifest     *project.Manifest
	grammarPaths []string
	sourcePath   string
	outputDir    string
	extensions   []string
	jobs         int
	normalize    bool
	spanOnly     bool
	cache        bool
	clearCache   bool
	maxRewrites  int
	translators  map[string]translators.Spec
}

// addGrammarFlags registers the flags shared by every command that loads grammars.
func addGrammarFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("grammar", "g", nil, "grammar file or directory of *.gtg files (repeatable)")
	cmd.Flags().String("manifest", "", "path to "+project.ManifestName+" (default: search upward from the working directory)")
	cmd.Flags().Bool("no-manifest", false, "ignore "+project.ManifestName)
	cmd.Flags().Bool("cache", false, "cache compiled rule sets on disk")
	cmd.Flags().Bool("clear-cache", false, "drop every cached rule set before loading (implies --cache)")
	cmd.Flags().Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
}

// addRunFlags registers the flags that tune translation.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("source", "s", "", "source file or directory to translate")
	cmd.Flags().StringP("output", "o", "", "output directory (a single file prints to stdout when omitted)")
	cmd.Flags().StringSlice("ext", nil, "only translate files with these extensions when walking a directory")
	cmd.Flags().String("normalize", "", `normalize source text before rewriting ("" or "nfc")`)
	cmd.Flags().Bool("span-only", false, "replace each match at its own offsets instead of every occurrence of its text")
	cmd.Flags().Int("max-rewrites", rewrite.DefaultMaxRewrites, "maximum matches of one rule in one file")
}

func loadManifest(cmd *cobra.Command) (*project.Manifest, error) {
	if off, _ := cmd.Flags().GetBool("no-manifest"); off {
		return nil, nil
	}
	if path, _ := cmd.Flags().GetString("manifest"); path != "" {
		return project.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, ok, err := project.LoadManifest(wd)
	if err != nil || !ok {
		return nil, err
	}
	return m, nil
}

// resolveRunConfig applies flags over the manifest. A flag wins only when it
// was set explicitly. Positional grammar paths count as -g values.
func resolveRunConfig(cmd *cobra.Command, grammars ...string) (*runConfig, error) {
	m, err := loadManifest(cmd)
	if err != nil {
		return nil, err
	}
	cfg := &runConfig{
		manifest:    m,
		maxRewrites: rewrite.DefaultMaxRewrites,
		translators: make(map[string]translators.Spec),
	}
	if m != nil {
		cfg.grammarPaths = m.GrammarPaths()
		cfg.sourcePath = m.SourcePath()
		cfg.outputDir = m.OutputDir()
		cfg.extensions = m.Config.Source.Extensions
		cfg.jobs = m.Config.Run.Jobs
		cfg.normalize = strings.EqualFold(m.Config.Run.Normalize, "nfc")
		cfg.spanOnly = m.Config.Run.SpanOnly
		cfg.cache = m.Config.Run.Cache
		if m.Defined("run", "max_rewrites") {
			cfg.maxRewrites = m.Config.Run.MaxRewrites
		}
		for name, tc := range m.Config.Translators {
			cfg.translators[name] = translators.Spec{Builtin: tc.Builtin, Template: tc.Template, Literal: tc.Literal}
		}
	}

	flags := cmd.Flags()
	if flags.Changed("grammar") || len(grammars) > 0 {
		paths, _ := flags.GetStringSlice("grammar")
		cfg.grammarPaths = append(paths, grammars...)
	}
	if flags.Changed("cache") {
		cfg.cache, _ = flags.GetBool("cache")
	}
	if cfg.clearCache, _ = flags.GetBool("clear-cache"); cfg.clearCache {
		cfg.cache = true
	}
	if flags.Changed("jobs") {
		cfg.jobs, _ = flags.GetInt("jobs")
	}
	if flags.Lookup("source") != nil {
		if flags.Changed("source") {
			cfg.sourcePath, _ = flags.GetString("source")
		}
		if flags.Changed("output") {
			cfg.outputDir, _ = flags.GetString("output")
		}
		if flags.Changed("ext") {
			exts, _ := flags.GetStringSlice("ext")
			cfg.extensions = normalizeExtensions(exts)
		}
		if flags.Changed("normalize") {
			mode, _ := flags.GetString("normalize")
			switch strings.ToLower(mode) {
			case "":
				cfg.normalize = false
			case "nfc":
				cfg.normalize = true
			default:
				return nil, fmt.Errorf("invalid --normalize value %q (expected \"\" or nfc)", mode)
			}
		}
		if flags.Changed("span-only") {
			cfg.spanOnly, _ = flags.GetBool("span-only")
		}
		if flags.Changed("max-rewrites") {
			cfg.maxRewrites, _ = flags.GetInt("max-rewrites")
		}
	}

	if cfg.jobs < 0 {
		return nil, fmt.Errorf("--jobs must not be negative")
	}
	if cfg.maxRewrites < 0 {
		return nil, fmt.Errorf("--max-rewrites must not be negative")
	}
	if len(cfg.grammarPaths) == 0 {
		return nil, errNoGrammar
	}
	return cfg, nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
