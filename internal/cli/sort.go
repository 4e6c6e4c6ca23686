package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/liga-scores/internal/match"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate SortOrder = "date"
	SortByClub SortOrder = "club"
)

// sortMatches sorts a slice of matches based on the specified sort order
func sortMatches(matches []*match.Match, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.Slice(matches, func(i, j int) bool {
			return compareByDate(matches[i], matches[j])
		})
	case SortByClub:
		sort.Slice(matches, func(i, j int) bool {
			hi := strings.ToLower(matches[i].HomeClub)
			hj := strings.ToLower(matches[j].HomeClub)
			if hi != hj {
				return hi < hj
			}
			// If home clubs are equal, sort by date
			return compareByDate(matches[i], matches[j])
		})
	}
}

// compareByDate compares two matches by their date
// Returns true if match i should come before match j
func compareByDate(i, j *match.Match) bool {
	dateI := match.ParseDate(i.Date)
	dateJ := match.ParseDate(j.Date)

	// If both dates are valid, compare them
	if !dateI.IsZero() && !dateJ.IsZero() && !dateI.Equal(dateJ) {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	if dateI.IsZero() != dateJ.IsZero() {
		return !dateI.IsZero()
	}

	// Same day or neither parseable: fall back to the club pairing
	hi := strings.ToLower(i.HomeClub)
	hj := strings.ToLower(j.HomeClub)
	if hi != hj {
		return hi < hj
	}
	return strings.ToLower(i.GuestClub) < strings.ToLower(j.GuestClub)
}
