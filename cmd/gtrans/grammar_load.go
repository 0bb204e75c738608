package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gtrans/internal/driver"
	"gtrans/internal/grammar"
	"gtrans/internal/observ"
)

const cacheApp = "gtrans"

// loadGrammars parses, merges and compiles cfg's grammars. Diagnostics are
// printed; a grammar failure comes back as errReported.
func loadGrammars(ctx context.Context, cmd *cobra.Command, cfg *runConfig, timer *observ.Timer) (*driver.GrammarResult, error) {
	dopts, err := readDiagOptions(cmd, os.Stderr)
	if err != nil {
		return nil, err
	}

	var cache *driver.DiskCache
	if cfg.cache {
		cache, err = driver.OpenDiskCache(cacheApp)
		if err != nil {
			// без кэша можно работать дальше
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: rule cache disabled: %v\n", err)
			cache = nil
		}
	}
	if cache != nil && cfg.clearCache {
		if err := cache.DropAll(); err != nil {
			return nil, fmt.Errorf("clear rule cache: %w", err)
		}
	}

	res, err := driver.LoadGrammars(ctx, cfg.grammarPaths, driver.LoadOptions{
		MaxDiagnostics: dopts.max,
		Jobs:           cfg.jobs,
		Cache:          cache,
		Timer:          timer,
	})
	if res != nil && res.Bag.Len() > 0 {
		out := cmd.ErrOrStderr()
		if dopts.format != diagPretty {
			out = cmd.OutOrStdout()
		}
		if perr := printBag(out, res.Bag, res.FileSet, dopts, os.Args[1:]); perr != nil {
			return nil, perr
		}
	}
	if errors.Is(err, driver.ErrGrammar) {
		return res, errReported
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func hasScriptRules(set *grammar.RuleSet) bool {
	for _, r := range set.Rules() {
		if r.Kind == grammar.TranslationScript {
			return true
		}
	}
	return false
}

func newTimer(cmd *cobra.Command) *observ.Timer {
	if on, _ := cmd.Root().PersistentFlags().GetBool("timings"); on {
		return observ.NewTimer()
	}
	return nil
}

// printTimings writes the phase summary to stderr when --timings is set.
func printTimings(cmd *cobra.Command, kind, path string, timer *observ.Timer) {
	if timer == nil {
		return
	}
	format, _ := cmd.Root().PersistentFlags().GetString("timings-format")
	asJSON := strings.EqualFold(format, "json")
	if err := driver.WriteTimings(cmd.ErrOrStderr(), kind, path, timer, asJSON); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "timings: %v\n", err)
	}
}
