package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd is the observatory CLI: a long-running pipeline worker (serve),
// plus the one-shot operator commands (ingest, trigger-briefing, backfill)
// that exercise the same wiring outside the serve process.
var rootCmd = &cobra.Command{
	Use:     "observatory",
	Short:   "AI news observatory ingestion, clustering, enrichment, and briefing pipeline",
	Long:    "observatory ingests AI-news feeds, clusters them into canonical events, enriches published events with LLM-derived artifacts, and generates daily briefings.",
	Version: "dev",
}

func main() {
	rootCmd.PersistentFlags().String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "directory holding observatory.yaml, llm-providers.yaml, and .env")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// bootstrap loads .env from configDir (non-fatal if absent), sets gin's
// mode from GIN_MODE, and returns configDir for the caller to pass to
// newApp.
func bootstrap(cmd *cobra.Command) (string, error) {
	configDir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		return "", err
	}

	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil {
		fmt.Fprintf(os.Stderr, "warning: no .env loaded from %s: %v\n", configDir, err)
	}

	gin.SetMode(getEnv("GIN_MODE", "debug"))
	return configDir, nil
}
