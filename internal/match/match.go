package match

import (
	"crypto/sha1"
	"fmt"
	"time"
)

// Match represents one deobfuscated result row
type Match struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"` // as printed on the page, e.g. "02.11.2025"
	HomeClub   string    `json:"home_club"`
	GuestClub  string    `json:"guest_club"`
	HomeScore  int       `json:"home_score"`
	GuestScore int       `json:"guest_score"`
	Raw        string    `json:"raw"`
	SourceURL  string    `json:"source_url"`
	FirstSeen  time.Time `json:"first_seen"`
}

// GenerateID creates a deterministic ID for a match. The score is left out
// on purpose: a corrected result keeps its identity and shows up as a score
// change, not a new match.
func GenerateID(date, homeClub, guestClub string) string {
	h := sha1.New()
	h.Write([]byte(date + "|" + homeClub + "|" + guestClub))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// New creates a Match with ID and FirstSeen populated
func New(date, homeClub, guestClub string, homeScore, guestScore int, raw, sourceURL string) *Match {
	return &Match{
		ID:         GenerateID(date, homeClub, guestClub),
		Date:       date,
		HomeClub:   homeClub,
		GuestClub:  guestClub,
		HomeScore:  homeScore,
		GuestScore: guestScore,
		Raw:        raw,
		SourceURL:  sourceURL,
		FirstSeen:  time.Now().UTC(),
	}
}

// Result formats the score as printed, e.g. "2:1".
func (m *Match) Result() string {
	return fmt.Sprintf("%d:%d", m.HomeScore, m.GuestScore)
}

// String renders one line for logs and text output.
func (m *Match) String() string {
	return fmt.Sprintf("%s  %s - %s  %s", m.Date, m.HomeClub, m.GuestClub, m.Result())
}
