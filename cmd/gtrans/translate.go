package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gtrans/internal/driver"
	"gtrans/internal/rewrite"
	"gtrans/internal/script"
)

var translateCmd = &cobra.Command{
	Use:   "translate [flags]",
	Short: "Translate a source file or tree with the given grammars",
	Long: `Translate applies the grammar rules to a source file or to every file of a
source directory. A directory is mirrored under the output directory; a
single file without -o is printed to stdout.`,
	Example: `  gtrans translate -g grammars/ -s Main.java
  gtrans translate -g csharp.gtg -s src/ -o out/ --jobs 8`,
	Args: cobra.NoArgs,
	RunE: runTranslate,
}

func init() {
	addGrammarFlags(translateCmd)
	addRunFlags(translateCmd)
	translateCmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
}

func runTranslate(cmd *cobra.Command, args []string) (err error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() {
		if err != nil {
			dumpTraceRing(cmd)
		}
	}()

	cfg, err := resolveRunConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.sourcePath == "" {
		return errors.New("no source given: pass -s or set [source].path")
	}
	uiFlag, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	start := time.Now()
	timer := newTimer(cmd)

	res, err := loadGrammars(ctx, cmd, cfg, timer)
	if err != nil {
		return err
	}

	reg, err := driver.BuildRegistry(cfg.translators, res.Set)
	if err != nil {
		return err
	}
	var eval rewrite.ScriptEvaluator
	if hasScriptRules(res.Set) {
		ev := script.New(script.Options{Size: cfg.jobs})
		defer ev.Close()
		eval = ev
	}
	eng, err := rewrite.NewEngine(res.Set, reg, eval, rewrite.Options{
		SpanOnly:    cfg.spanOnly,
		MaxRewrites: cfg.maxRewrites,
	})
	if err != nil {
		reportError(cmd, "", err, res.FileSet)
		return errReported
	}

	info, err := os.Stat(cfg.sourcePath)
	if err != nil {
		return err
	}

	// одиночный файл без -o печатается в stdout
	if !info.IsDir() && cfg.outputDir == "" {
		t0 := time.Now()
		out, err := driver.TranslateFile(ctx, eng, cfg.sourcePath, cfg.normalize)
		if timer != nil {
			timer.Add("translate", time.Since(t0))
		}
		if err != nil {
			reportError(cmd, cfg.sourcePath, err, res.FileSet)
			return errReported
		}
		if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
			return err
		}
		printTimings(cmd, "translate", cfg.sourcePath, timer)
		return nil
	}
	if cfg.outputDir == "" {
		return errors.New("translating a directory needs an output directory: pass -o or set [output].dir")
	}

	opts := driver.TreeOptions{
		Jobs:       cfg.jobs,
		Normalize:  cfg.normalize,
		Extensions: cfg.extensions,
		Timer:      timer,
	}
	var tree *driver.TreeResult
	if shouldUseTUI(mode, readUIEnv(cmd)) {
		tree, err = runTreeWithUI(ctx, "translating "+cfg.sourcePath, eng, cfg.sourcePath, cfg.outputDir, opts)
	} else {
		if !quiet(cmd) {
			opts.Observer = func(ev driver.ProgressEvent) {
				if ev.Status == driver.FileWorking {
					fmt.Fprintf(cmd.ErrOrStderr(), "Translating file %s\n", ev.Path)
				}
			}
		}
		tree, err = driver.TranslateTree(ctx, eng, cfg.sourcePath, cfg.outputDir, opts)
	}
	if err != nil {
		return err
	}

	for _, fr := range tree.Files {
		if fr.Err != nil {
			reportError(cmd, fr.Path, fr.Err, res.FileSet)
		}
	}
	if !quiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Translated %d file(s), %d failed, in %s\n",
			len(tree.Files)-tree.Failed, tree.Failed, time.Since(start).Round(time.Millisecond))
	}
	printTimings(cmd, "translate", cfg.sourcePath, timer)
	if tree.Failed > 0 {
		return errReported
	}
	return nil
}
