package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gtrans/internal/diagfmt"
	"gtrans/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.gtg",
	Short: "Dump the token stream of a grammar file",
	Long:  `Tokenize breaks a grammar file down into the tokens the grammar parser sees`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().Bool("strings", false, `recognise "..." literals, as inside a rewrite block`)
	tokenizeCmd.Flags().Bool("whitespace", false, "emit whitespace as tokens, as inside a script body")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	withStrings, _ := cmd.Flags().GetBool("strings")
	withSpace, _ := cmd.Flags().GetBool("whitespace")

	result, err := driver.Tokenize(filePath, driver.TokenizeOptions{
		MaxDiagnostics: maxDiagnostics,
		Strings:        withStrings,
		Whitespace:     withSpace,
	})
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	if result.Bag.HasErrors() || result.Bag.HasWarnings() {
		diagfmt.Pretty(cmd.ErrOrStderr(), result.Bag, result.FileSet, diagfmt.PrettyOpts{
			Color:   colorEnabled(cmd, os.Stderr),
			Context: 2,
		})
	}

	switch format {
	case "pretty":
		err = diagfmt.FormatTokensPretty(cmd.OutOrStdout(), result.Tokens, result.FileSet)
	case "json":
		err = diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result.Tokens, result.FileSet)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errReported
	}
	return nil
}
