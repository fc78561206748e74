package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hermes",
	Short: "hermes - AI Command Gateway",
	Long: `hermes ist ein Execution-Gateway fuer Container-Operationen.

Es nimmt natuerlichsprachliche Intents entgegen, erzeugt daraus per
LLM genau ein literales Docker-Kommando, prueft es gegen eine
Deny-by-default-Allowlist und fuehrt es lokal oder per SSH aus.

Endpunkte:
  POST /api/v1/execute - Pipeline ausfuehren
  GET  /health         - Health Checks
  GET  /metrics        - Zaehlerstaende`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: ./configs/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}
