package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pfrederiksen/liga-scores/internal/match"
	"github.com/pfrederiksen/liga-scores/internal/notifier"
)

var (
	resultsFile = flag.String("results-file", "", "Path to results JSON file (or read from stdin)")
	dryRun      = flag.Bool("dry-run", false, "Print tweets without posting")
	maxTweets   = flag.Int("max-tweets", 10, "Maximum number of tweets to post")
	clubFilter  = flag.String("club", "", "Only tweet results involving this club (substring match)")
	maxAgeDays  = flag.Int("max-age-days", 7, "Skip results older than this many days (0 = disabled)")
	version     = "dev"
)

// filterByClub keeps matches where either club name contains the filter
func filterByClub(matches []*match.Match, club string) []*match.Match {
	filter := strings.ToLower(strings.TrimSpace(club))
	if filter == "" {
		return matches
	}
	filtered := make([]*match.Match, 0)
	for _, m := range matches {
		if strings.Contains(strings.ToLower(m.HomeClub), filter) ||
			strings.Contains(strings.ToLower(m.GuestClub), filter) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// filterByAge drops matches played more than maxDays ago
func filterByAge(matches []*match.Match, maxDays int) []*match.Match {
	if maxDays <= 0 {
		return matches
	}
	filtered := make([]*match.Match, 0)
	for _, m := range matches {
		if m.IsRecent(maxDays) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

func main() {
	flag.Parse()

	// Read results from file or stdin
	var reader io.Reader
	if *resultsFile != "" {
		f, err := os.Open(*resultsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening results file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		reader = f
	} else {
		reader = os.Stdin
	}

	// Parse JSON as produced by liga-scores --format json
	var result struct {
		NewMatches []*match.Match `json:"new_matches"`
	}

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&result); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing JSON: %v\n", err)
		os.Exit(1)
	}

	if len(result.NewMatches) == 0 {
		fmt.Println("No new results to tweet")
		os.Exit(0)
	}

	matches := filterByClub(result.NewMatches, *clubFilter)
	matches = filterByAge(matches, *maxAgeDays)

	// Limit number of tweets
	if len(matches) > *maxTweets {
		matches = matches[:*maxTweets]
	}

	if len(matches) == 0 {
		fmt.Println("No results match criteria")
		os.Exit(0)
	}

	// Initialize Twitter client
	var tw notifier.Notifier
	if *dryRun {
		tw = notifier.NewDryRunNotifier()
		fmt.Printf("DRY RUN MODE - Would tweet %d results:\n\n", len(matches))
	} else {
		client, err := notifier.NewTwitterNotifier()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing Twitter client: %v\n", err)
			os.Exit(1)
		}
		tw = client
	}

	// Post tweets
	if err := tw.Notify(matches); err != nil {
		fmt.Fprintf(os.Stderr, "Error posting tweets: %v\n", err)
		os.Exit(1)
	}

	if !*dryRun {
		fmt.Printf("Successfully posted %d tweets\n", len(matches))
	}
}
