package cli

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/liga-scores/internal/digit"
	"github.com/pfrederiksen/liga-scores/internal/fontfetch"
	"github.com/pfrederiksen/liga-scores/internal/fontload"
	"github.com/pfrederiksen/liga-scores/internal/glyphcache"
	"github.com/pfrederiksen/liga-scores/internal/logger"
	"github.com/pfrederiksen/liga-scores/internal/match"
	"github.com/pfrederiksen/liga-scores/internal/scraper"
	"github.com/pfrederiksen/liga-scores/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess    = 0
	ExitError      = 1
	ExitNewResults = 2
)

var (
	flagClub           string
	flagResultsURL     string
	flagDataDir        string
	flagFormat         string
	flagRefresh        bool
	flagVerbose        bool
	flagSort           string
	flagFontCacheSize  int
	flagFontRetryAfter time.Duration
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liga-scores",
		Short: "Check for newly published league match results",
		Long: `A CLI tool to check a league results page for newly published match results.
Scores on the page are obfuscated through per-page web fonts; the tool
downloads each font once, recovers the digits from its glyph table, and
tracks results across runs so only new ones are reported.`,
		RunE: runCheck,
	}

	// Flags shared with subcommands
	cmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "~/.local/share/liga-scores", "Data directory for snapshots and the font cache")
	cmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	// Check-specific flags
	cmd.Flags().StringVar(&flagClub, "club", "", "Only report matches involving this club (substring match)")
	cmd.Flags().StringVar(&flagResultsURL, "results-url", scraper.ResultsURL, "Results page URL")
	cmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Refresh snapshot without showing new results")
	cmd.Flags().StringVar(&flagSort, "sort", "date", "Sort order for new results: date or club")
	cmd.Flags().IntVar(&flagFontCacheSize, "font-cache-size", fontload.DefaultCapacity, "Max obfuscation fonts kept in the in-process registry (0 = unbounded)")
	cmd.Flags().DurationVar(&flagFontRetryAfter, "font-retry-after", 0, "Retry failed font loads after this duration (0 = never retry in-process)")

	cmd.AddCommand(NewFontsCmd())

	return cmd
}

// runCheck is the main command logic
func runCheck(cmd *cobra.Command, args []string) error {
	club := strings.TrimSpace(flagClub)

	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	// Validate sort order
	sortOrder := SortOrder(strings.ToLower(flagSort))
	if sortOrder != SortByDate && sortOrder != SortByClub {
		return fmt.Errorf("invalid sort order: %s (must be 'date' or 'club')", flagSort)
	}

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
		fmt.Fprintf(os.Stderr, "Results URL: %s\n", flagResultsURL)
		fmt.Fprintf(os.Stderr, "Data directory: %s\n", flagDataDir)
		if club != "" {
			fmt.Fprintf(os.Stderr, "Club filter: %s\n", club)
		}
	}

	// Fonts are served by the site hosting the results page
	fontBase, err := fontBaseURL(flagResultsURL)
	if err != nil {
		return err
	}

	// Initialize storage
	store, err := storage.New(flagDataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	glyphs, err := glyphcache.Open(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening glyph cache: %w", err)
	}

	// Assemble the deobfuscation pipeline
	coordinator := fontload.New(fontfetch.New(fontBase), glyphs,
		fontload.WithCapacity(flagFontCacheSize),
		fontload.WithRetryAfter(flagFontRetryAfter),
	)
	resolver := digit.NewResolver(glyphs)
	sc := scraper.NewWithURL(coordinator, resolver, flagResultsURL)

	// Fetch and decode current results
	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Fetching results from %s\n", flagResultsURL)
	}

	currentMatches, err := sc.FetchResults(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching results: %w", err)
	}

	if flagVerbose {
		fonts, glyphCount, codepoints := glyphs.Stats()
		fmt.Fprintf(os.Stderr, "Fetched %d results (%d fonts, %d glyphs, %d codepoints cached)\n",
			len(currentMatches), fonts, glyphCount, codepoints)
	}

	// Load previous snapshot
	var previous *match.Snapshot
	if !flagRefresh {
		previous, err = store.LoadSnapshot(club)
		if err != nil {
			return fmt.Errorf("loading snapshot: %w", err)
		}

		if flagVerbose {
			fmt.Fprintf(os.Stderr, "Loaded previous snapshot with %d matches\n", len(previous.Matches))
		}
	}

	// Compute diff
	diff := match.Diff(previous, currentMatches, club)
	sortMatches(diff.NewMatches, sortOrder)

	// Save updated snapshot
	saved, err := store.CreateSnapshotFromMatches(currentMatches, previous, club)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}

	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Saved snapshot\n")
	}

	// Prepare output
	result := &OutputResult{
		CheckedAt:   time.Now().UTC(),
		SourceURL:   flagResultsURL,
		ClubFilter:  club,
		NewMatches:  diff.NewMatches,
		MatchCount:  len(diff.NewMatches),
		Corrections: collectCorrections(saved, club),
	}
	if len(diff.Days) > 0 {
		result.ByDay = diff.Days
	}

	// In refresh mode, don't output new results
	if flagRefresh {
		if format == FormatText {
			fmt.Println("Snapshot refreshed successfully.")
		} else {
			// Still output JSON but with zero new results
			result.NewMatches = nil
			result.MatchCount = 0
			result.ByDay = nil
			result.Corrections = nil
			WriteOutput(os.Stdout, result, format, flagVerbose)
		}
		os.Exit(ExitSuccess)
		return nil
	}

	// Write output
	if err := WriteOutput(os.Stdout, result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	// Set exit code based on whether new results were found
	if len(diff.NewMatches) > 0 {
		os.Exit(ExitNewResults)
	} else {
		os.Exit(ExitSuccess)
	}

	return nil
}

// fontBaseURL derives the font download base from the results page URL
func fontBaseURL(resultsURL string) (string, error) {
	u, err := url.Parse(resultsURL)
	if err != nil {
		return "", fmt.Errorf("parsing results URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("results URL %q has no scheme or host", resultsURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// collectCorrections maps score changes from the snapshot change log back to
// their matches, honoring the club filter
func collectCorrections(snapshot *match.Snapshot, club string) []*Correction {
	corrections := make([]*Correction, 0)
	filter := strings.ToLower(strings.TrimSpace(club))

	for _, change := range snapshot.ChangeLog {
		if change.ChangeType != "score" {
			continue
		}
		m, exists := snapshot.Matches[change.MatchID]
		if !exists {
			continue
		}
		if filter != "" &&
			!strings.Contains(strings.ToLower(m.HomeClub), filter) &&
			!strings.Contains(strings.ToLower(m.GuestClub), filter) {
			continue
		}
		corrections = append(corrections, &Correction{
			Match: m,
			Old:   change.OldValue,
			New:   change.NewValue,
		})
	}
	return corrections
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
