// Package main provides the entry point for the talent-match CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "matcher",
	Short: "Candidate-to-vacancy matching and ranking",
	Long:  "Matcher ranks candidates against job vacancies through a staged funnel of vector similarity and language-model judgment, and maintains vacancy clusters and expanded search queries.",
}

var (
	flagConfigPath  string
	flagAPIKey      string
	flagDatabaseURL string
	flagVerbose     bool
	flagDebug       bool
	flagJSONLogs    bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	pf.StringVar(&flagAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	pf.StringVar(&flagDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed stage output")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flagJSONLogs, "json-logs", false, "Emit logs as JSON instead of console output")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
