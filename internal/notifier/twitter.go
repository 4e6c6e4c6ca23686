package notifier

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/liga-scores/internal/match"
)

// TwitterNotifier posts match results to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{client: client}, nil
}

// Notify posts a tweet for each match
func (n *TwitterNotifier) Notify(matches []*match.Match) error {
	for i, m := range matches {
		tweet := formatTweet(m)

		_, _, err := n.client.Statuses.Update(tweet, nil)
		if err != nil {
			return fmt.Errorf("failed to post tweet for match %s: %w", m.ID, err)
		}

		// Rate limiting: wait between tweets
		if i < len(matches)-1 {
			time.Sleep(2 * time.Second)
		}
	}

	return nil
}

// formatTweet formats a match result as a tweet
func formatTweet(m *match.Match) string {
	tweet := "⚽ Full time!\n\n"
	tweet += fmt.Sprintf("%s %s %s\n", m.HomeClub, m.Result(), m.GuestClub)

	if m.Date != "" {
		tweet += fmt.Sprintf("📅 %s\n", m.Date)
	}

	tweet += "\n#Kreisliga #Fussball"

	// Twitter limit is 280 characters
	if len(tweet) > 280 {
		// Truncate on a rune boundary and add ellipsis, so umlauts in
		// club names are never cut in half.
		cut := 277
		for cut > 0 && !utf8.RuneStart(tweet[cut]) {
			cut--
		}
		tweet = tweet[:cut] + "..."
	}

	return tweet
}
