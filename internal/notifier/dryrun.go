package notifier

import (
	"fmt"

	"github.com/pfrederiksen/liga-scores/internal/match"
)

// DryRunNotifier prints what would be tweeted without actually posting
type DryRunNotifier struct{}

// NewDryRunNotifier creates a new dry-run notifier
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{}
}

// Notify prints the tweets that would be posted
func (n *DryRunNotifier) Notify(matches []*match.Match) error {
	for i, m := range matches {
		tweet := formatTweet(m)
		fmt.Printf("--- Tweet %d/%d ---\n", i+1, len(matches))
		fmt.Println(tweet)
		fmt.Printf("\n(Length: %d characters)\n\n", len(tweet))
	}
	return nil
}
