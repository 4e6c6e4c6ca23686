package match

import (
	"testing"
)

func sampleMatches() []*Match {
	return []*Match{
		New("09.11.2025", "SV Nord", "FC Süd", 2, 1, "", ""),
		New("02.11.2025", "TSV West", "SG Ost", 0, 0, "", ""),
		New("02.11.2025", "FC Süd", "TSV West", 1, 3, "", ""),
	}
}

func TestDiffFindsNewMatches(t *testing.T) {
	current := sampleMatches()
	previous := CreateSnapshot(current[:1], "2025-11-09T00:00:00Z")

	result := Diff(previous, current, "")

	if len(result.NewMatches) != 2 {
		t.Fatalf("NewMatches = %d, want 2", len(result.NewMatches))
	}
	// Sorted by date, then home club: both new matches are from 02.11.
	if result.NewMatches[0].HomeClub != "FC Süd" || result.NewMatches[1].HomeClub != "TSV West" {
		t.Errorf("order = %q, %q", result.NewMatches[0].HomeClub, result.NewMatches[1].HomeClub)
	}
	if len(result.Days["02.11.2025"]) != 2 {
		t.Errorf("Days[02.11.2025] = %d entries, want 2", len(result.Days["02.11.2025"]))
	}
}

func TestDiffAgainstNilSnapshot(t *testing.T) {
	current := sampleMatches()

	result := Diff(nil, current, "")

	if len(result.NewMatches) != 3 {
		t.Fatalf("NewMatches = %d, want all 3", len(result.NewMatches))
	}
	// Date ordering puts the 02.11. matches before the 09.11. one.
	if result.NewMatches[2].Date != "09.11.2025" {
		t.Errorf("last match date = %q, want 09.11.2025", result.NewMatches[2].Date)
	}
}

func TestDiffClubFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   int
	}{
		{"No filter", "", 3},
		{"Club playing twice", "süd", 2},
		{"Filter matches guest side too", "ost", 1},
		{"Unknown club", "bayern", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Diff(nil, sampleMatches(), tt.filter)
			if len(result.NewMatches) != tt.want {
				t.Errorf("Diff(filter=%q) = %d matches, want %d", tt.filter, len(result.NewMatches), tt.want)
			}
		})
	}
}

func TestDetectChanges(t *testing.T) {
	previous := New("02.11.2025", "SV Nord", "FC Süd", 1, 1, "", "")
	corrected := New("02.11.2025", "SV Nord", "FC Süd", 2, 1, "", "")

	t.Run("New match", func(t *testing.T) {
		changes := DetectChanges(nil, previous)
		if len(changes) != 1 || changes[0].ChangeType != "new" {
			t.Fatalf("changes = %+v", changes)
		}
		if changes[0].NewValue != "1:1" {
			t.Errorf("NewValue = %q, want 1:1", changes[0].NewValue)
		}
	})

	t.Run("Score correction", func(t *testing.T) {
		changes := DetectChanges(previous, corrected)
		if len(changes) != 1 || changes[0].ChangeType != "score" {
			t.Fatalf("changes = %+v", changes)
		}
		if changes[0].OldValue != "1:1" || changes[0].NewValue != "2:1" {
			t.Errorf("change = %q -> %q", changes[0].OldValue, changes[0].NewValue)
		}
	})

	t.Run("Unchanged match", func(t *testing.T) {
		if changes := DetectChanges(previous, previous); len(changes) != 0 {
			t.Errorf("changes = %+v, want none", changes)
		}
	})
}

func TestCompareSnapshots(t *testing.T) {
	previous := New("02.11.2025", "SV Nord", "FC Süd", 1, 1, "", "")
	corrected := New("02.11.2025", "SV Nord", "FC Süd", 2, 1, "", "")
	brandNew := New("09.11.2025", "TSV West", "SG Ost", 4, 0, "", "")

	prev := map[string]*Match{previous.ID: previous}
	cur := map[string]*Match{corrected.ID: corrected, brandNew.ID: brandNew}

	changes := CompareSnapshots(prev, cur)
	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(changes))
	}

	types := map[string]int{}
	for _, c := range changes {
		types[c.ChangeType]++
	}
	if types["new"] != 1 || types["score"] != 1 {
		t.Errorf("change types = %v, want one new and one score", types)
	}
}
