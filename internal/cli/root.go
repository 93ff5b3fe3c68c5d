package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cobolscan/config"
	"cobolscan/internal/ctxlog"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "cobolscan",
	Short: "COBOL structure scanner - divisions, paragraphs, call graph and file I/O",
	Long: `cobolscan reads COBOL sources and extracts their structure: divisions,
sections, paragraphs, COPY references, PERFORM/CALL edges and file operations.
Scanned programs are stored in .cobolscan/index.db for graph queries and
LLM-generated paragraph summaries.

Example usage:
  cobolscan parse payroll.cbl --json   # Scan one file and print the model
  cobolscan scan .                     # Scan and store every program under .
  cobolscan graph PAYROLL --dot        # Render the PERFORM/CALL graph
  cobolscan summarize PAYROLL          # Summarize paragraphs with an LLM`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger, err := ctxlog.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

		return nil
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cobolscan.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
