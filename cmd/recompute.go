package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/project-time-tracker/internal/storage"
	"github.com/Tiliavir/project-time-tracker/internal/timecalc"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute the tracked total from the recorded sessions",
	Args:  cobra.NoArgs,
	RunE:  runRecompute,
}

func runRecompute(cmd *cobra.Command, args []string) error {
	tr := newTracker(newStore)
	path, ok := tr.TrackingFilePath()
	if !ok {
		fmt.Fprintln(os.Stderr, "No project folder found; open a folder to track time.")
		os.Exit(1)
	}
	tr.Recompute()

	df, err := storage.New(path).Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("Total: %s across %d sessions\n", timecalc.FormatDuration(df.TotalSeconds), len(df.Sessions))
	return nil
}
