package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagStatsReset bool

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics",
		RunE:  runStats,
	}

	cmd.Flags().BoolVar(&flagStatsReset, "reset", false, "reset all counters")

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if flagStatsReset {
		if err := a.recorder.Reset(ctx); err != nil {
			return err
		}

		statusf(flagQuiet, "Statistics reset.\n")

		return nil
	}

	st, err := a.repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading statistics: %w", err)
	}

	rows := [][]string{
		{"Total saves", fmt.Sprintf("%d", st.TotalSaves)},
		{"Tabs saved", fmt.Sprintf("%d", st.TabsSaved)},
		{"Automatic saves", fmt.Sprintf("%d", st.AutoSaves)},
		{"Folders created", fmt.Sprintf("%d", st.FoldersCreated)},
		{"Last save", formatTimestamp(st.LastSave)},
		{"First use", formatTimestamp(st.InstallDate)},
	}

	printTable(os.Stdout, []string{"STATISTIC", "VALUE"}, rows)

	return nil
}
