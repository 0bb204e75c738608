package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// uiEnv is what auto mode checks besides the terminals.
type uiEnv struct {
	quiet       bool
	traceStderr bool // строки трассы рвут прогресс-бар
}

func readUIEnv(cmd *cobra.Command) uiEnv {
	flags := cmd.Root().PersistentFlags()
	env := uiEnv{quiet: quiet(cmd)}
	out, _ := flags.GetString("trace")
	level, _ := flags.GetString("trace-level")
	mode, _ := flags.GetString("trace-mode")
	enabled := out != "" || !strings.EqualFold(level, "off")
	env.traceStderr = enabled && (out == "" || out == "-") && !strings.EqualFold(mode, "ring")
	return env
}

func shouldUseTUI(mode uiMode, env uiEnv) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		if env.quiet || env.traceStderr {
			return false
		}
		return isTerminal(os.Stdout) && isTerminal(os.Stderr)
	}
}
