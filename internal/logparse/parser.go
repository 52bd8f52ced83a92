// Package logparse turns raw fetched chunks into a single time-ordered
// entry stream.
package logparse

import (
	"encoding/csv"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/embertail-io/embertail/internal/models"
)

// Chunk is one raw piece of fetched log content.
type Chunk struct {
	Source string // log name the bytes came from
	Data   []byte
}

// headerPattern matches the start of a text log entry:
// "2023-11-13 09:58:01,123 ERROR message...".
var headerPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}),(\d{3})\s+([A-Z]+)\s*(.*)$`)

const headerTimeLayout = "2006-01-02 15:04:05"

// profileTimeLayout is the timestamp column of profiler CSV rows.
const profileTimeLayout = time.RFC3339

// Parse merges the chunks into one entry sequence, stable-sorted by
// timestamp. Lines that do not start a new entry continue the previous
// one (stack traces); a partial leading line produced by a mid-entry
// fetch boundary is carried as a zero-time entry so no bytes are lost.
func Parse(chunks []Chunk) []models.Entry {
	var entries []models.Entry
	for _, c := range chunks {
		if strings.HasSuffix(c.Source, ".csv") {
			entries = append(entries, parseProfile(c)...)
			continue
		}
		entries = append(entries, parseText(c)...)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	return entries
}

func parseText(c Chunk) []models.Entry {
	var entries []models.Entry
	current := -1

	for _, line := range strings.Split(string(c.Data), "\n") {
		if line == "" {
			continue
		}
		m := headerPattern.FindStringSubmatch(line)
		if m == nil {
			if current >= 0 {
				entries[current].Message += "\n" + line
				entries[current].Raw += "\n" + line
				continue
			}
			// Continuation of an entry whose header was emitted in a
			// previous cycle.
			entries = append(entries, models.Entry{
				Source:  c.Source,
				Message: line,
				Raw:     line,
			})
			current = len(entries) - 1
			continue
		}

		ts, err := time.ParseInLocation(headerTimeLayout, m[1], time.UTC)
		if err != nil {
			continue
		}
		ms, _ := time.ParseDuration(m[2] + "ms")
		entries = append(entries, models.Entry{
			Time:    ts.Add(ms),
			Level:   m[3],
			Source:  c.Source,
			Message: m[4],
			Raw:     line,
		})
		current = len(entries) - 1
	}
	return entries
}

// parseProfile reads profiler CSV rows of the form timestamp,metric,value.
// Rows with an unparseable timestamp (including a header row) are skipped.
func parseProfile(c Chunk) []models.Entry {
	r := csv.NewReader(strings.NewReader(string(c.Data)))
	r.FieldsPerRecord = -1

	var entries []models.Entry
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		if len(rec) < 3 {
			continue
		}
		ts, err := time.Parse(profileTimeLayout, rec[0])
		if err != nil {
			continue
		}
		entries = append(entries, models.Entry{
			Time:    ts,
			Level:   "PROFILE",
			Source:  c.Source,
			Message: rec[1] + "=" + rec[2],
			Raw:     strings.Join(rec, ","),
		})
	}
	return entries
}
