package match

import (
	"sort"
	"strings"
	"time"
)

// Snapshot represents all known matches at a point in time
type Snapshot struct {
	Matches   map[string]*Match `json:"matches"`    // keyed by Match.ID
	ChangeLog []*Change         `json:"change_log"` // recent changes
	UpdatedAt string            `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Matches:   make(map[string]*Match),
		ChangeLog: make([]*Change, 0),
	}
}

// CreateSnapshot creates a snapshot from a list of matches
func CreateSnapshot(matches []*Match, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt
	for _, m := range matches {
		snap.Matches[m.ID] = m
	}
	return snap
}

// DiffResult contains the new matches found against a previous snapshot
type DiffResult struct {
	NewMatches []*Match
	Days       map[string][]*Match // new matches grouped by date
}

// Diff compares current matches against a previous snapshot and returns the
// ones not seen before. clubFilter narrows the result to matches where
// either club name contains the filter, case-insensitively; empty means no
// filter.
func Diff(previous *Snapshot, current []*Match, clubFilter string) *DiffResult {
	result := &DiffResult{
		NewMatches: make([]*Match, 0),
		Days:       make(map[string][]*Match),
	}

	if previous == nil {
		previous = NewSnapshot()
	}

	filter := strings.ToLower(strings.TrimSpace(clubFilter))
	for _, m := range current {
		if filter != "" &&
			!strings.Contains(strings.ToLower(m.HomeClub), filter) &&
			!strings.Contains(strings.ToLower(m.GuestClub), filter) {
			continue
		}

		if _, exists := previous.Matches[m.ID]; !exists {
			result.NewMatches = append(result.NewMatches, m)
			result.Days[m.Date] = append(result.Days[m.Date], m)
		}
	}

	// Sort for consistent output: date first, then the club pairing
	sort.Slice(result.NewMatches, func(i, j int) bool {
		return lessMatches(result.NewMatches[i], result.NewMatches[j])
	})
	for day := range result.Days {
		sort.Slice(result.Days[day], func(i, j int) bool {
			return lessMatches(result.Days[day][i], result.Days[day][j])
		})
	}

	return result
}

// lessMatches orders by parsed date, then home club, then guest club.
func lessMatches(a, b *Match) bool {
	da, db := ParseDate(a.Date), ParseDate(b.Date)
	if !da.Equal(db) {
		return da.Before(db)
	}
	if a.HomeClub != b.HomeClub {
		return a.HomeClub < b.HomeClub
	}
	return a.GuestClub < b.GuestClub
}

// Change represents a difference detected between snapshots
type Change struct {
	MatchID    string    `json:"match_id"`
	ChangeType string    `json:"change_type"` // "new" or "score"
	OldValue   string    `json:"old_value"`
	NewValue   string    `json:"new_value"`
	DetectedAt time.Time `json:"detected_at"`
}

// DetectChanges compares a previous and current version of a match. A nil
// previous marks the match as new; differing scores are reported as a
// correction with the old and new result.
func DetectChanges(previous, current *Match) []*Change {
	if previous == nil {
		return []*Change{
			{
				MatchID:    current.ID,
				ChangeType: "new",
				NewValue:   current.Result(),
				DetectedAt: time.Now().UTC(),
			},
		}
	}

	var changes []*Change
	if previous.HomeScore != current.HomeScore || previous.GuestScore != current.GuestScore {
		changes = append(changes, &Change{
			MatchID:    current.ID,
			ChangeType: "score",
			OldValue:   previous.Result(),
			NewValue:   current.Result(),
			DetectedAt: time.Now().UTC(),
		})
	}
	return changes
}

// CompareSnapshots returns all changes between a previous and a current
// match set, ordered by match ID.
func CompareSnapshots(previous, current map[string]*Match) []*Change {
	var all []*Change
	for id, cur := range current {
		prev, exists := previous[id]
		if !exists {
			all = append(all, DetectChanges(nil, cur)...)
			continue
		}
		all = append(all, DetectChanges(prev, cur)...)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].MatchID != all[j].MatchID {
			return all[i].MatchID < all[j].MatchID
		}
		return all[i].ChangeType < all[j].ChangeType
	})
	return all
}
