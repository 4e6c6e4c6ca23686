package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pfrederiksen/liga-scores/internal/match"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Correction pairs a match with its previously reported result
type Correction struct {
	Match *match.Match `json:"match"`
	Old   string       `json:"old"`
	New   string       `json:"new"`
}

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt   time.Time                 `json:"checked_at"`
	SourceURL   string                    `json:"source_url"`
	ClubFilter  string                    `json:"club_filter,omitempty"`
	NewMatches  []*match.Match            `json:"new_matches"`
	MatchCount  int                       `json:"match_count"`
	ByDay       map[string][]*match.Match `json:"by_day,omitempty"`
	Corrections []*Correction             `json:"corrections,omitempty"`
	ShowAll     bool                      `json:"show_all,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	// Determine labels based on ShowAll mode
	matchLabel := "new"
	matchPrefix := "NEW"
	if result.ShowAll {
		matchLabel = "results"
		matchPrefix = ""
	}

	if result.MatchCount == 0 {
		if result.ShowAll {
			fmt.Fprintln(w, "No results found.")
		} else {
			fmt.Fprintln(w, "No new results found.")
		}
		writeCorrections(w, result.Corrections)
		return nil
	}

	// If we have day grouping, show grouped output
	if len(result.ByDay) > 0 {
		for _, day := range sortedDays(result.ByDay) {
			matches := result.ByDay[day]
			if len(matches) == 0 {
				continue
			}

			fmt.Fprintf(w, "\n%s (%d %s):\n", day, len(matches), matchLabel)
			for _, m := range matches {
				if matchPrefix != "" {
					fmt.Fprintf(w, "  %s: %s - %s  %s\n", matchPrefix, m.HomeClub, m.GuestClub, m.Result())
				} else {
					fmt.Fprintf(w, "  %s - %s  %s\n", m.HomeClub, m.GuestClub, m.Result())
				}
				if verbose {
					fmt.Fprintf(w, "       ID: %s\n", m.ID)
					fmt.Fprintf(w, "       Source: %s\n", m.SourceURL)
				}
			}
		}
		fmt.Fprintf(w, "\nTotal: %d %s across %d days\n", result.MatchCount, matchLabel, len(result.ByDay))
	} else {
		// Simple list
		for _, m := range result.NewMatches {
			if matchPrefix != "" {
				fmt.Fprintf(w, "%s: %s\n", matchPrefix, m.String())
			} else {
				fmt.Fprintf(w, "%s\n", m.String())
			}
			if verbose {
				fmt.Fprintf(w, "     ID: %s\n", m.ID)
				fmt.Fprintf(w, "     Source: %s\n", m.SourceURL)
			}
		}
		fmt.Fprintf(w, "\nTotal: %d %s\n", result.MatchCount, matchLabel)
	}

	writeCorrections(w, result.Corrections)

	return nil
}

// writeCorrections lists score corrections, if any were detected
func writeCorrections(w io.Writer, corrections []*Correction) {
	if len(corrections) == 0 {
		return
	}

	fmt.Fprintf(w, "\nCorrected results (%d):\n", len(corrections))
	for _, c := range corrections {
		fmt.Fprintf(w, "  %s  %s - %s  %s (was %s)\n",
			c.Match.Date, c.Match.HomeClub, c.Match.GuestClub, c.New, c.Old)
	}
}

// sortedDays orders day keys chronologically; unparseable dates go last
func sortedDays(byDay map[string][]*match.Match) []string {
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		di, dj := match.ParseDate(days[i]), match.ParseDate(days[j])
		if !di.Equal(dj) {
			if di.IsZero() {
				return false
			}
			if dj.IsZero() {
				return true
			}
			return di.Before(dj)
		}
		return days[i] < days[j]
	})
	return days
}
