package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/project-time-tracker/internal/model"
	"github.com/Tiliavir/project-time-tracker/internal/timecalc"
)

var (
	reportWeek   bool
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show per-day totals for this week",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Report for this week (default)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

type dayTotal struct {
	Date    string `json:"date"`
	Minutes int64  `json:"duration_minutes"`
	seconds int64
}

type weekReport struct {
	Week         string     `json:"week"`
	Days         []dayTotal `json:"days"`
	TotalMinutes int64      `json:"total_minutes"`
	totalSeconds int64
}

func runReport(cmd *cobra.Command, args []string) error {
	now := time.Now()
	from, to := timecalc.WeekRange(now)

	// Sessions starting before Monday may still reach into the week.
	sessions, err := openTrackedData().SessionsInRange(from.AddDate(0, 0, -1), to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	return writeReport(os.Stdout, buildWeekReport(sessions, now), reportFormat)
}

// buildWeekReport lists all seven days of the ISO week containing now.
func buildWeekReport(sessions []model.Session, now time.Time) weekReport {
	from, to := timecalc.WeekRange(now)
	totals := timecalc.DailyTotals(sessions, from, to)

	r := weekReport{Week: timecalc.ISOWeekLabel(now)}
	for day := from; day.Before(to); day = timecalc.Midnight(day) {
		key := day.Format("2006-01-02")
		sec := totals[key]
		r.Days = append(r.Days, dayTotal{Date: key, Minutes: sec / 60, seconds: sec})
		r.totalSeconds += sec
	}
	r.TotalMinutes = r.totalSeconds / 60
	return r
}

func writeReport(w io.Writer, r weekReport, format string) error {
	switch format {
	case "csv":
		fmt.Fprintln(w, "date,duration_minutes")
		for _, d := range r.Days {
			fmt.Fprintf(w, "%s,%d\n", d.Date, d.Minutes)
		}
	case "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
	default: // md
		fmt.Fprintf(w, "Week %s\n", r.Week)
		fmt.Fprintln(w, "--------------------------------")
		for _, d := range r.Days {
			fmt.Fprintf(w, "%-20s%s\n", d.Date, timecalc.FormatDuration(d.seconds))
		}
		fmt.Fprintln(w, "--------------------------------")
		fmt.Fprintf(w, "%-20s%s\n", "Total", timecalc.FormatDuration(r.totalSeconds))
	}
	return nil
}
