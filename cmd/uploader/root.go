package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/config"
	"github.com/jito-dev/LinkedIn2Odoo-Contact-Uploader/internal/logging"
)

var (
	cfg       *config.UploaderConfig
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:          "uploader",
	Short:        "Push LinkedIn profiles into Odoo",
	Long:         "Reads the LinkedIn profile open in Chromium, caches and tags it, and uploads it to Odoo through the CRM gateway.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadUploader()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
