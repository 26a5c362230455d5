package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/project-time-tracker/internal/model"
	"github.com/Tiliavir/project-time-tracker/internal/timecalc"
)

var (
	sessionsToday bool
	sessionsWeek  bool
	sessionsAll   bool
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"list"},
	Short:   "List recorded sessions",
	Args:    cobra.NoArgs,
	RunE:    runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsToday, "today", false, "Show today's sessions")
	sessionsCmd.Flags().BoolVar(&sessionsWeek, "week", false, "Show this week's sessions")
	sessionsCmd.Flags().BoolVar(&sessionsAll, "all", false, "Show every recorded session")
}

func runSessions(cmd *cobra.Command, args []string) error {
	sessions, err := sessionsFor(time.Now(), sessionsWeek, sessionsAll)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return printSessions(os.Stdout, sessions)
}

// sessionsFor loads the sessions of today, the ISO week, or all of them.
func sessionsFor(now time.Time, week, all bool) ([]model.Session, error) {
	data := openTrackedData()
	if all {
		df, err := data.Load()
		return df.Sessions, err
	}

	var from, to time.Time
	if week {
		from, to = timecalc.WeekRange(now)
	} else {
		// Default to today (covers --today and the bare command).
		from = timecalc.StartOfDay(now)
		to = timecalc.EndOfDay(now)
	}
	return data.SessionsInRange(from, to)
}

// printSessions writes one table row per session.
func printSessions(w io.Writer, sessions []model.Session) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Date", "Start", "End", "Duration")
	var total int64
	for _, s := range sessions {
		start := s.Start.Local()
		end := "ongoing"
		if s.End != nil {
			end = s.End.Local().Format("15:04:05")
		}
		total += s.DurationSeconds()
		if err := table.Append([]string{
			start.Format("2006-01-02"),
			start.Format("15:04:05"),
			end,
			timecalc.FormatDurationHHMMSS(s.DurationSeconds()),
		}); err != nil {
			return err
		}
	}
	table.Footer("", "", "Total", timecalc.FormatDurationHHMMSS(total))
	return table.Render()
}
