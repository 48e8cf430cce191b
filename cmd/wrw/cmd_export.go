package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smirnoffmg/who-read-whom/internal/api"
	"github.com/smirnoffmg/who-read-whom/internal/csvio"
	"github.com/smirnoffmg/who-read-whom/internal/logging"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:       "export <writers|works|opinions>",
	Short:     "Export an entity list to CSV",
	Long:      "Fetches the full entity list from the backend and writes it as CSV. Without -o the file is named <entity>-<date>.csv in the current directory.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"writers", "works", "opinions"},
	RunE: func(cmd *cobra.Command, args []string) error {
		entity := args[0]

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
		defer cancel()

		client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)

		var out string
		switch entity {
		case "writers":
			writers, err := api.NewWriterService(client).List(ctx, cfg.API.FetchLimit, 0)
			if err != nil {
				return fmt.Errorf("failed to fetch writers: %w", err)
			}
			out = csvio.ExportWriters(writers)
		case "works":
			works, err := api.NewWorkService(client).List(ctx, cfg.API.FetchLimit, 0)
			if err != nil {
				return fmt.Errorf("failed to fetch works: %w", err)
			}
			out = csvio.ExportWorks(works)
		case "opinions":
			opinions, err := api.NewOpinionService(client).List(ctx, cfg.API.FetchLimit, 0)
			if err != nil {
				return fmt.Errorf("failed to fetch opinions: %w", err)
			}
			out = csvio.ExportOpinions(opinions)
		default:
			return fmt.Errorf("unknown entity %q (want writers, works or opinions)", entity)
		}

		path := exportOut
		if path == "" {
			path = fmt.Sprintf("%s-%s.csv", entity, time.Now().Format("2006-01-02"))
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		logging.Get(logging.CategoryCLI).Infow("exported", "entity", entity, "path", path)
		fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", entity, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file path")
}
