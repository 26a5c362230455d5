package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/project-time-tracker/internal/model"
)

func TestBuildWeekReport(t *testing.T) {
	// Wednesday of ISO week 2026-W10.
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	mon := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	wedLate := time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC)

	sessions := []model.Session{
		model.NewSession("a", mon).Close(mon.Add(2 * time.Hour)),
		model.NewSession("b", wedLate).Close(wedLate.Add(time.Hour)),
	}

	r := buildWeekReport(sessions, now)
	assert.Equal(t, "2026-W10", r.Week)
	require.Len(t, r.Days, 7)
	assert.Equal(t, "2026-03-02", r.Days[0].Date)
	assert.Equal(t, int64(120), r.Days[0].Minutes)
	assert.Equal(t, int64(30), r.Days[2].Minutes)
	assert.Equal(t, int64(30), r.Days[3].Minutes)
	assert.Equal(t, "2026-03-08", r.Days[6].Date)
	assert.Equal(t, int64(180), r.TotalMinutes)
}

func TestWriteReportFormats(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)
	r := buildWeekReport([]model.Session{
		model.NewSession("a", start).Close(start.Add(90 * time.Minute)),
	}, now)

	var csv bytes.Buffer
	require.NoError(t, writeReport(&csv, r, "csv"))
	assert.Contains(t, csv.String(), "date,duration_minutes\n")
	assert.Contains(t, csv.String(), "2026-03-03,90\n")

	var js bytes.Buffer
	require.NoError(t, writeReport(&js, r, "json"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "2026-W10", decoded["week"])
	assert.EqualValues(t, 90, decoded["total_minutes"])

	var md bytes.Buffer
	require.NoError(t, writeReport(&md, r, "md"))
	assert.True(t, strings.HasPrefix(md.String(), "Week 2026-W10\n"))
	assert.Contains(t, md.String(), "1h 30m")
}
