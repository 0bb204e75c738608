package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gtrans/internal/diag"
	"gtrans/internal/driver"
	"gtrans/internal/grammar"
	"gtrans/internal/script"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [grammar...]",
	Short: "Parse, merge and compile grammars without translating",
	Long: `Check reports every lexical, syntax and compile error of the grammars. It
also warns about translation rules whose translator is not configured and
reports scripts that do not compile.`,
	RunE: runCheck,
}

func init() {
	addGrammarFlags(checkCmd)
	addDiagnosticFlags(checkCmd)
	checkCmd.Flags().Bool("strict", false, "treat warnings as errors")
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
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

	cfg, err := resolveRunConfig(cmd, args...)
	if err != nil {
		return err
	}
	timer := newTimer(cmd)
	res, err := loadGrammars(cmd.Context(), cmd, cfg, timer)
	if err != nil {
		return err
	}

	bag, err := checkRules(res, cfg)
	if err != nil {
		return err
	}
	dopts, err := readDiagOptions(cmd, os.Stderr)
	if err != nil {
		return err
	}
	out := cmd.ErrOrStderr()
	if dopts.format != diagPretty {
		out = cmd.OutOrStdout()
	}
	if bag.Len() > 0 || dopts.format == diagJSON || dopts.format == diagSarif {
		bag.Sort()
		if err := printBag(out, bag, res.FileSet, dopts, os.Args[1:]); err != nil {
			return err
		}
	}
	printTimings(cmd, "check", "", timer)

	strict, _ := cmd.Flags().GetBool("strict")
	if bag.HasErrors() || (strict && bag.HasWarnings()) {
		return errReported
	}
	if !quiet(cmd) && dopts.format == diagPretty {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d file(s), %d rewrite pair(s), %d rule(s): ok\n",
			len(res.Files), len(res.Set.Rewrites()), res.Set.Len())
	}
	return nil
}

// checkRules looks past compilation: translators the registry cannot supply
// and scripts the interpreter cannot compile.
func checkRules(res *driver.GrammarResult, cfg *runConfig) (*diag.Bag, error) {
	bag := diag.NewBag(res.Set.Len())
	reg, err := driver.BuildRegistry(cfg.translators, res.Set)
	if err != nil {
		return nil, err
	}

	var ev *script.Evaluator
	for _, r := range res.Set.Rules() {
		switch r.Kind {
		case grammar.Translation:
			if !reg.Has(r.Translator) {
				bag.Add(diag.New(diag.SevWarning, diag.AplUnknownTranslator, r.Span,
					fmt.Sprintf("translator %q of rule %q is not registered", r.Translator, r.Key)))
			}
		case grammar.TranslationScript:
			if ev == nil {
				ev = script.New(script.Options{Size: 1})
				defer ev.Close()
			}
			if err := ev.Check(r.Script); err != nil {
				bag.Add(diag.NewError(diag.AplScriptEvaluation, r.BodySpan,
					fmt.Sprintf("script of rule %q does not compile: %v", r.Key, err)))
			}
		}
	}
	return bag, nil
}
