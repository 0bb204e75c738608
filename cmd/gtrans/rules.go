package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"gtrans/internal/grammar"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [flags] [grammar...]",
	Short: "Print the compiled rule set",
	Long:  `Rules loads the grammars and prints the rewrite pairs and every rule with its resolved pattern.`,
	RunE:  runRules,
}

func init() {
	addGrammarFlags(rulesCmd)
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	rulesCmd.Flags().Bool("source-bodies", false, "show rule bodies as written instead of resolved patterns")
}

type rulesPayload struct {
	Rewrites []rewriteJSON `json:"rewrites"`
	Rules    []ruleJSON    `json:"rules"`
}

type rewriteJSON struct {
	Search  string `json:"search"`
	Replace string `json:"replace"`
}

type ruleJSON struct {
	Key        string `json:"key"`
	Kind       string `json:"kind"`
	Translator string `json:"translator,omitempty"`
	Script     string `json:"script,omitempty"`
	Source     string `json:"source"`
	Pattern    string `json:"pattern"`
}

func runRules(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	cfg, err := resolveRunConfig(cmd, args...)
	if err != nil {
		return err
	}
	res, err := loadGrammars(cmd.Context(), cmd, cfg, nil)
	if err != nil {
		return err
	}

	payload := buildRulesPayload(res.Set)
	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	sourceBodies, _ := cmd.Flags().GetBool("source-bodies")
	return renderRules(cmd.OutOrStdout(), payload, sourceBodies, colorEnabled(cmd, os.Stdout))
}

func buildRulesPayload(set *grammar.RuleSet) rulesPayload {
	p := rulesPayload{Rewrites: []rewriteJSON{}, Rules: []ruleJSON{}}
	for _, rw := range set.Rewrites() {
		p.Rewrites = append(p.Rewrites, rewriteJSON{Search: rw.Search, Replace: rw.Replace})
	}
	for _, r := range set.Rules() {
		p.Rules = append(p.Rules, ruleJSON{
			Key:        r.Key,
			Kind:       r.Kind.String(),
			Translator: r.Translator,
			Script:     r.Script,
			Source:     r.Source,
			Pattern:    r.Body,
		})
	}
	return p
}

func renderRules(w io.Writer, p rulesPayload, sourceBodies, useColor bool) error {
	header := lipgloss.NewStyle()
	if useColor {
		header = header.Bold(true)
	}

	if len(p.Rewrites) > 0 {
		rows := make([][]string, 0, len(p.Rewrites))
		for _, rw := range p.Rewrites {
			rows = append(rows, []string{fmt.Sprintf("%q", rw.Search), fmt.Sprintf("%q", rw.Replace)})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			StyleFunc(headerStyle(header)).
			Headers("SEARCH", "REPLACE").
			Rows(rows...)
		if _, err := fmt.Fprintln(w, t.Render()); err != nil {
			return err
		}
	}

	rows := make([][]string, 0, len(p.Rules))
	for _, r := range p.Rules {
		target := r.Translator
		if r.Kind == grammar.TranslationScript.String() {
			target = oneLine(r.Script, 40)
		}
		body := r.Pattern
		if sourceBodies {
			body = r.Source
		}
		rows = append(rows, []string{r.Key, r.Kind, target, body})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(headerStyle(header)).
		Headers("KEY", "KIND", "TRANSLATOR", "PATTERN").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func headerStyle(header lipgloss.Style) table.StyleFunc {
	cell := lipgloss.NewStyle().Padding(0, 1)
	head := header.Padding(0, 1)
	return func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return head
		}
		return cell
	}
}

// oneLine folds a script into a single line of at most n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}
