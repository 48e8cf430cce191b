// Command wrw is the who-read-whom admin console: an interactive terminal UI
// over the backend REST API, plus one-shot subcommands for CSV export, CSV
// bulk import and graph inspection.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/smirnoffmg/who-read-whom/cmd/wrw/ui"
	"github.com/smirnoffmg/who-read-whom/internal/api"
	"github.com/smirnoffmg/who-read-whom/internal/config"
	"github.com/smirnoffmg/who-read-whom/internal/graph"
	"github.com/smirnoffmg/who-read-whom/internal/logging"
	"github.com/smirnoffmg/who-read-whom/internal/store"
)

var (
	cfgFile    string
	verbose    bool
	apiURL     string
	apiTimeout time.Duration

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "wrw",
	Short: "Admin console for writers, works and their opinions",
	Long: `wrw is the admin console for the who-read-whom dataset: writers,
their literary works, and who thought what about whose work.

Run without arguments to open the interactive console. Subcommands
cover one-shot CSV export, CSV bulk import and graph inspection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if apiURL != "" {
			cfg.API.BaseURL = apiURL
		}
		if apiTimeout > 0 {
			cfg.API.Timeout = apiTimeout
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Initialize(level, cfg.Logging.Dir); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Get(logging.CategoryUI).Infow("starting console", "api", cfg.API.BaseURL)
		program := tea.NewProgram(ui.NewApp(buildDeps(cfg)), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("console exited with error: %w", err)
		}
		return nil
	},
}

// buildDeps wires the API client, stores and graph assembler for the given
// configuration.
func buildDeps(cfg *config.Config) ui.Deps {
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	writerSvc := api.NewWriterService(client)
	workSvc := api.NewWorkService(client)
	opinionSvc := api.NewOpinionService(client)

	return ui.Deps{
		Config:     cfg,
		Writers:    store.NewWriters(writerSvc),
		Works:      store.NewWorks(workSvc),
		Opinions:   store.NewOpinions(opinionSvc),
		WriterSvc:  writerSvc,
		WorkSvc:    workSvc,
		OpinionSvc: opinionSvc,
		Assembler:  graph.NewAssembler(writerSvc, workSvc, opinionSvc),
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to wrw.yaml (default: none)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend API base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "timeout", 0, "request timeout (overrides config)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(graphCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
