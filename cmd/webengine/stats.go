package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arshiya-salehi/webengine/internal/config"
	"github.com/arshiya-salehi/webengine/internal/stats"
)

func newStatsCmd() *cobra.Command {
	var indexDir string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the statistics recorded for the most recent build.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := stats.Load(filepath.Join(indexDir, "stats.json"))
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}
			printStats(record)
			return nil
		},
	}

	cmd.Flags().StringVar(&indexDir, "index", config.DefaultOutDir, "directory holding the built index")
	return cmd
}

func printStats(r stats.Record) {
	rows := []struct {
		label string
		value string
	}{
		{"Documents", fmt.Sprintf("%d", r.NumDocuments)},
		{"Unique Terms", fmt.Sprintf("%d", r.NumUniqueTokens)},
		{"Index Size", formatBytes(r.IndexSizeBytes)},
		{"Partial Segments", fmt.Sprintf("%d", r.PartialSegmentCount)},
	}

	width := 0
	for _, row := range rows {
		if len(row.label) > width {
			width = len(row.label)
		}
	}

	for _, row := range rows {
		fmt.Printf("%-*s : %s\n", width, row.label, row.value)
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for val := n / unit; val >= unit; val /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
