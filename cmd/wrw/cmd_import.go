package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smirnoffmg/who-read-whom/internal/api"
	"github.com/smirnoffmg/who-read-whom/internal/csvio"
	"github.com/smirnoffmg/who-read-whom/internal/domain"
	"github.com/smirnoffmg/who-read-whom/internal/importer"
	"github.com/smirnoffmg/who-read-whom/internal/logging"
)

var (
	importYes     bool
	importWorkers int
)

var importCmd = &cobra.Command{
	Use:   "import <writers|works|opinions> <file>",
	Short: "Bulk import entities from a CSV file",
	Long: `Parses the CSV file, prints the accepted rows and any per-row errors,
and creates the accepted rows against the backend. A file with any row
error is rejected whole; fix the file and retry.

Rows are created independently with bounded concurrency. There is no
rollback: rows created before a failure stay created.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"writers", "works", "opinions"},
	RunE: func(cmd *cobra.Command, args []string) error {
		entity, path := args[0], args[1]

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		switch entity {
		case "writers":
			return importWriters(cmd, string(data))
		case "works":
			return importWorks(cmd, string(data))
		case "opinions":
			return importOpinions(cmd, string(data))
		}
		return fmt.Errorf("unknown entity %q (want writers, works or opinions)", entity)
	},
}

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "skip the confirmation prompt")
	importCmd.Flags().IntVar(&importWorkers, "workers", 0, "concurrent create requests (default from config)")
}

// previewAndConfirm prints the parse outcome and asks for confirmation.
// A false return means the import must not proceed.
func previewAndConfirm(cmd *cobra.Command, accepted int, errs []csvio.RowError, valid bool) (bool, error) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d accepted rows\n", accepted)
	for _, e := range errs {
		fmt.Fprintf(out, "  row %d, %s: %s\n", e.Row, e.Field, e.Message)
	}
	if !valid {
		return false, fmt.Errorf("file has %d row errors; nothing imported", len(errs))
	}
	if accepted == 0 {
		fmt.Fprintln(out, "nothing to import")
		return false, nil
	}
	if importYes {
		return true, nil
	}

	fmt.Fprint(out, "proceed? [y/N] ")
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, _ := reader.ReadString('\n')
	if strings.TrimSpace(strings.ToLower(answer)) != "y" {
		fmt.Fprintln(out, "aborted")
		return false, nil
	}
	return true, nil
}

func printTally(cmd *cobra.Command, tally importer.Tally) {
	logging.Get(logging.CategoryCLI).Infow("import finished",
		"created", tally.Created, "failed", tally.Failed)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created %d, failed %d\n", tally.Created, tally.Failed)
	for _, f := range tally.Failures {
		fmt.Fprintf(out, "  %s\n", f)
	}
}

func importCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Bulk imports outlive a single request timeout; the per-request
	// timeout still applies inside the HTTP client.
	return context.WithCancel(cmd.Context())
}

func workerWidth() int {
	if importWorkers > 0 {
		return importWorkers
	}
	return cfg.Import.Workers
}

func importWriters(cmd *cobra.Command, text string) error {
	result, err := csvio.ImportWriters(text)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	ok, err := previewAndConfirm(cmd, len(result.Data), result.Errors, result.IsValid)
	if err != nil || !ok {
		return err
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	svc := api.NewWriterService(client)

	params := make([]domain.WriterParams, 0, len(result.Data))
	for _, w := range result.Data {
		params = append(params, domain.WriterParams{
			Name:      w.Name,
			BirthYear: w.BirthYear,
			DeathYear: w.DeathYear,
			Bio:       w.Bio,
		})
	}

	ctx, cancel := importCtx(cmd)
	defer cancel()
	tally := importer.Run(ctx, params, workerWidth(),
		func(ctx context.Context, row domain.WriterParams) error {
			_, err := svc.Create(ctx, row)
			return err
		},
		func(row domain.WriterParams) string { return row.Name },
	)
	printTally(cmd, tally)
	return nil
}

func importWorks(cmd *cobra.Command, text string) error {
	result, err := csvio.ImportWorks(text)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	ok, err := previewAndConfirm(cmd, len(result.Data), result.Errors, result.IsValid)
	if err != nil || !ok {
		return err
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	svc := api.NewWorkService(client)

	params := make([]domain.WorkParams, 0, len(result.Data))
	for _, w := range result.Data {
		params = append(params, domain.WorkParams{Title: w.Title, AuthorID: w.AuthorID})
	}

	ctx, cancel := importCtx(cmd)
	defer cancel()
	tally := importer.Run(ctx, params, workerWidth(),
		func(ctx context.Context, row domain.WorkParams) error {
			_, err := svc.Create(ctx, row)
			return err
		},
		func(row domain.WorkParams) string { return row.Title },
	)
	printTally(cmd, tally)
	return nil
}

func importOpinions(cmd *cobra.Command, text string) error {
	result, err := csvio.ImportOpinions(text)
	if err != nil {
		return fmt.Errorf("failed to parse CSV: %w", err)
	}
	ok, err := previewAndConfirm(cmd, len(result.Data), result.Errors, result.IsValid)
	if err != nil || !ok {
		return err
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	svc := api.NewOpinionService(client)

	params := make([]domain.OpinionParams, 0, len(result.Data))
	for _, o := range result.Data {
		params = append(params, domain.OpinionParams{
			WriterID:      o.WriterID,
			WorkID:        o.WorkID,
			Sentiment:     o.Sentiment,
			Quote:         o.Quote,
			Source:        o.Source,
			Page:          o.Page,
			StatementYear: o.StatementYear,
		})
	}

	ctx, cancel := importCtx(cmd)
	defer cancel()
	tally := importer.Run(ctx, params, workerWidth(),
		func(ctx context.Context, row domain.OpinionParams) error {
			_, err := svc.Create(ctx, row)
			return err
		},
		func(row domain.OpinionParams) string {
			return fmt.Sprintf("%d-%d", row.WriterID, row.WorkID)
		},
	)
	printTally(cmd, tally)
	return nil
}
