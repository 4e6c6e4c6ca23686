package notifier

import (
	"github.com/pfrederiksen/liga-scores/internal/match"
)

// Notifier defines the interface for posting result notifications
type Notifier interface {
	// Notify posts notifications for the given matches
	Notify(matches []*match.Match) error
}
