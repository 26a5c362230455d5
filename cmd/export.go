package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/project-time-tracker/internal/model"
)

var (
	exportFormat string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, md")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every session instead of this week's")
}

func runExport(cmd *cobra.Command, args []string) error {
	sessions, err := sessionsFor(time.Now(), true, exportAll)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	switch exportFormat {
	case "json":
		if sessions == nil {
			sessions = []model.Session{}
		}
		data, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	case "md":
		return printSessions(os.Stdout, sessions)
	default: // csv
		printCSV(os.Stdout, sessions)
	}

	return nil
}

func printCSV(w io.Writer, sessions []model.Session) {
	fmt.Fprintln(w, "id,date,start,end,duration_seconds")
	for _, s := range sessions {
		endStr := ""
		if s.End != nil {
			endStr = s.End.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s,%s,%s,%s,%d\n",
			csvEscape(s.ID),
			csvEscape(s.Start.Local().Format("2006-01-02")),
			csvEscape(s.Start.Format(time.RFC3339)),
			csvEscape(endStr),
			s.DurationSeconds(),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
