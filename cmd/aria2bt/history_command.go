package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"aria2bt/internal/history"
)

const defaultHistoryLimit = 20

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "Submission history is disabled (history.enabled = false)")
				return nil
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No submissions recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of entries to show (0 for all)")
	return cmd
}

func renderHistory(entries []history.Entry) string {
	headers := []string{"ID", "When", "Run", "Item", "Status", "GID", "Files", "Error"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			shortID(e.RunID),
			e.Title,
			string(e.Status),
			dashIfEmpty(e.GID),
			dashIfEmpty(e.SelectedFiles),
			truncate(e.ErrorMessage, 60),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
