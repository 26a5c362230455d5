package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/project-time-tracker/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracked time for the project",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()
	data := openTrackedData()

	df, err := data.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	day := timecalc.StartOfDay(now)
	today := timecalc.DailyTotals(df.Sessions, day, timecalc.Midnight(now))[day.Format("2006-01-02")]

	fmt.Println(field("Data file", data.Path()))
	fmt.Println(field("Sessions", fmt.Sprint(len(df.Sessions))))
	fmt.Println(field("Total", timecalc.FormatDuration(df.TotalSeconds)))
	fmt.Println(field("Today", timecalc.FormatDuration(today)))

	if n := len(df.Sessions); n > 0 && df.Sessions[n-1].End != nil {
		last := df.Sessions[n-1]
		fmt.Println(field("Last session", fmt.Sprintf("%s – %s (%s)",
			last.Start.Local().Format("2006-01-02 15:04"),
			last.End.Local().Format("15:04"),
			formatElapsed(last.DurationSeconds()))))
	} else {
		fmt.Println(styles.Stopped.Render("No sessions recorded yet."))
	}
	return nil
}
