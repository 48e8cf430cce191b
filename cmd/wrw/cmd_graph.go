package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smirnoffmg/who-read-whom/internal/api"
	"github.com/smirnoffmg/who-read-whom/internal/graph"
)

var (
	graphWriterID int64
	graphWorkID   int64
)

var graphCmd = &cobra.Command{
	Use:   "graph (--writer ID | --work ID)",
	Short: "Print the opinion graph for one writer or work",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (graphWriterID == 0) == (graphWorkID == 0) {
			return fmt.Errorf("exactly one of --writer or --work is required")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.API.Timeout)
		defer cancel()

		client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
		writerSvc := api.NewWriterService(client)
		workSvc := api.NewWorkService(client)
		assembler := graph.NewAssembler(writerSvc, workSvc, api.NewOpinionService(client))

		var sel graph.Selection
		if graphWriterID != 0 {
			writer, err := writerSvc.Get(ctx, graphWriterID)
			if err != nil {
				return fmt.Errorf("failed to fetch writer %d: %w", graphWriterID, err)
			}
			sel.Writer = writer
		} else {
			work, err := workSvc.Get(ctx, graphWorkID)
			if err != nil {
				return fmt.Errorf("failed to fetch work %d: %w", graphWorkID, err)
			}
			sel.Work = work
		}

		g, err := assembler.Assemble(ctx, sel)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		labels := make(map[string]string, len(g.Nodes))
		for _, n := range g.Nodes {
			labels[n.ID] = n.Label
			fmt.Fprintf(out, "[%s] %s\n", n.Kind, n.Label)
		}
		if len(g.Links) == 0 {
			fmt.Fprintln(out, "no opinions recorded")
			return nil
		}
		for _, l := range g.Links {
			sentiment := "negative"
			if l.Sentiment {
				sentiment = "positive"
			}
			fmt.Fprintf(out, "%s -> %s (%s): %q [%s]\n",
				labels[l.Source], labels[l.Target], sentiment, l.Quote, l.Citation)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().Int64Var(&graphWriterID, "writer", 0, "writer id to graph")
	graphCmd.Flags().Int64Var(&graphWorkID, "work", 0, "work id to graph")
}
