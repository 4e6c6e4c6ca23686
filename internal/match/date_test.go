package match

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		dateText  string
		wantYear  int
		wantMonth time.Month
		wantDay   int
		wantZero  bool
	}{
		{
			name:      "Full date 02.11.2025",
			dateText:  "02.11.2025",
			wantYear:  2025,
			wantMonth: time.November,
			wantDay:   2,
		},
		{
			name:      "Single digit day 2.11.2025",
			dateText:  "2.11.2025",
			wantYear:  2025,
			wantMonth: time.November,
			wantDay:   2,
		},
		{
			name:      "Two digit year 02.11.25",
			dateText:  "02.11.25",
			wantYear:  2025,
			wantMonth: time.November,
			wantDay:   2,
		},
		{
			name:      "Weekday prefix So., 02.11.2025",
			dateText:  "So., 02.11.2025",
			wantYear:  2025,
			wantMonth: time.November,
			wantDay:   2,
		},
		{
			name:      "Surrounding whitespace",
			dateText:  "  15.03.2026  ",
			wantYear:  2026,
			wantMonth: time.March,
			wantDay:   15,
		},
		{
			name:     "Empty string",
			dateText: "",
			wantZero: true,
		},
		{
			name:     "Unparseable text",
			dateText: "Spieltag 12",
			wantZero: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.dateText)
			if tt.wantZero {
				if !got.IsZero() {
					t.Errorf("ParseDate(%q) = %v, want zero time", tt.dateText, got)
				}
				return
			}
			if got.Year() != tt.wantYear || got.Month() != tt.wantMonth || got.Day() != tt.wantDay {
				t.Errorf("ParseDate(%q) = %v, want %d-%02d-%02d",
					tt.dateText, got, tt.wantYear, tt.wantMonth, tt.wantDay)
			}
		})
	}
}

func TestIsRecent(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1).Format("02.01.2006")
	lastMonth := time.Now().AddDate(0, -1, 0).Format("02.01.2006")

	tests := []struct {
		name string
		date string
		days int
		want bool
	}{
		{"Played yesterday within a week", yesterday, 7, true},
		{"Played last month outside a week", lastMonth, 7, false},
		{"Disabled filter includes everything", lastMonth, 0, true},
		{"Unparseable date is kept", "Spieltag 12", 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Match{Date: tt.date}
			if got := m.IsRecent(tt.days); got != tt.want {
				t.Errorf("IsRecent(%d) = %v, want %v", tt.days, got, tt.want)
			}
		})
	}
}
