package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/liga-scores/internal/logger"
	"github.com/pfrederiksen/liga-scores/internal/match"
	"github.com/pfrederiksen/liga-scores/internal/woff"
)

const (
	ResultsURL    = "https://www.fussball.de/ergebnisse/-/liga/kreisliga-a"
	UserAgent     = "liga-scores-cli/1.0 (github.com/pfrederiksen/liga-scores)"
	Timeout       = 30 * time.Second
	RetryInterval = 2 * time.Second
	RetryAttempts = 3
)

var (
	// ErrMalformedCodepoint reports a score cell whose payload could not be
	// turned into a hexadecimal codepoint, or that lacks a font id.
	ErrMalformedCodepoint = errors.New("malformed score cell codepoint")

	// ErrCardinality reports column sequences of unequal length; the page is
	// rejected as a whole rather than guessed at row by row.
	ErrCardinality = errors.New("result columns disagree in length")
)

// FontLoader guarantees a font's glyph table is fetched and cached before
// decoding. Satisfied by fontload.Coordinator.
type FontLoader interface {
	EnsureLoaded(ctx context.Context, fontID string) (*woff.Table, error)
}

// ScoreDecoder maps an obfuscated codepoint to a digit for a loaded font.
// Satisfied by digit.Resolver.
type ScoreDecoder interface {
	Decode(fontID string, codepoint uint32) (int, error)
}

// Scraper handles fetching and parsing the league results page
type Scraper struct {
	client        *http.Client
	url           string
	loader        FontLoader
	decoder       ScoreDecoder
	retryInterval time.Duration
	retryAttempts uint64
}

// New creates a new Scraper instance for the default results page
func New(loader FontLoader, decoder ScoreDecoder) *Scraper {
	return NewWithURL(loader, decoder, ResultsURL)
}

// NewWithURL creates a Scraper for a specific results page URL
func NewWithURL(loader FontLoader, decoder ScoreDecoder, pageURL string) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:           pageURL,
		loader:        loader,
		decoder:       decoder,
		retryInterval: RetryInterval,
		retryAttempts: RetryAttempts,
	}
}

// FetchResults fetches the results page and returns all fully decoded matches.
// Only the page download is retried; extraction and score decoding run once
// on whatever the final attempt returned.
func (s *Scraper) FetchResults(ctx context.Context) ([]*match.Match, error) {
	var body []byte
	fetch := func() error {
		b, err := s.fetchPage(ctx)
		if err != nil {
			logger.Warn("Results page fetch failed", logger.Fields{
				"url":   s.url,
				"error": err.Error(),
			})
			return err
		}
		body = b
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryInterval), s.retryAttempts),
		ctx,
	)
	if err := backoff.Retry(fetch, policy); err != nil {
		return nil, fmt.Errorf("fetching results page: %w", err)
	}

	return s.parseResults(ctx, bytes.NewReader(body), s.url)
}

// fetchPage performs a single GET of the results page
func (s *Scraper) fetchPage(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading page body: %w", err)
	}
	return body, nil
}

// scoreCell is one obfuscated score span: the font that renders it and the
// codepoint standing in for the digit.
type scoreCell struct {
	fontID    string
	codepoint uint32
}

// parseResults extracts matches from HTML. Each result column is pulled out
// as its own ordered sequence; the sequences are only zipped into matches
// after their lengths have been checked against the row count.
func (s *Scraper) parseResults(ctx context.Context, r io.Reader, sourceURL string) ([]*match.Match, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	rows := doc.Find("table.results-table tr.match-row")
	total := rows.Length()

	dates := collectText(rows, "td.column-date")
	clubs := collectText(rows, "td.column-club .club-name")
	homeCells, err := collectScoreCells(rows, "td.column-score span.score-home")
	if err != nil {
		return nil, err
	}
	guestCells, err := collectScoreCells(rows, "td.column-score span.score-guest")
	if err != nil {
		return nil, err
	}

	if len(dates) != total || len(clubs) != 2*total ||
		len(homeCells) != total || len(guestCells) != total {
		return nil, fmt.Errorf("%w: %d rows, %d dates, %d club names, %d home scores, %d guest scores",
			ErrCardinality, total, len(dates), len(clubs), len(homeCells), len(guestCells))
	}

	matches := make([]*match.Match, 0, total)
	for i := 0; i < total; i++ {
		homeClub := clubs[2*i]
		guestClub := clubs[2*i+1]

		homeScore, err := s.decodeCell(ctx, homeCells[i])
		if err != nil {
			return nil, fmt.Errorf("decoding home score for %s vs %s: %w", homeClub, guestClub, err)
		}
		guestScore, err := s.decodeCell(ctx, guestCells[i])
		if err != nil {
			return nil, fmt.Errorf("decoding guest score for %s vs %s: %w", homeClub, guestClub, err)
		}

		raw := fmt.Sprintf("%s %s - %s %d:%d", dates[i], homeClub, guestClub, homeScore, guestScore)
		matches = append(matches, match.New(dates[i], homeClub, guestClub, homeScore, guestScore, raw, sourceURL))
	}

	logger.Info("Extracted match results", logger.Fields{
		"url":     sourceURL,
		"matches": len(matches),
	})

	return matches, nil
}

// decodeCell loads the cell's font (a no-op after the first load per font)
// and resolves the codepoint to a digit
func (s *Scraper) decodeCell(ctx context.Context, cell scoreCell) (int, error) {
	if _, err := s.loader.EnsureLoaded(ctx, cell.fontID); err != nil {
		return 0, fmt.Errorf("loading font %s: %w", cell.fontID, err)
	}
	return s.decoder.Decode(cell.fontID, cell.codepoint)
}

// collectText gathers trimmed text content for every element matching the
// selector, in document order. Empty cells are kept so that length checks
// see them.
func collectText(rows *goquery.Selection, selector string) []string {
	texts := make([]string, 0, rows.Length())
	rows.Find(selector).Each(func(i int, sel *goquery.Selection) {
		texts = append(texts, strings.TrimSpace(sel.Text()))
	})
	return texts
}

// collectScoreCells gathers the (font id, codepoint) pair from every score
// span matching the selector. Any span without a usable font id or payload
// aborts the collection.
func collectScoreCells(rows *goquery.Selection, selector string) ([]scoreCell, error) {
	cells := make([]scoreCell, 0, rows.Length())
	var cellErr error

	rows.Find(selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		fontID, ok := sel.Attr("data-obfuscation")
		if !ok || strings.TrimSpace(fontID) == "" {
			cellErr = fmt.Errorf("%w: score cell %d has no font id", ErrMalformedCodepoint, i)
			return false
		}

		cp, err := decodeCodepoint(sel.Text())
		if err != nil {
			cellErr = fmt.Errorf("score cell %d: %w", i, err)
			return false
		}

		cells = append(cells, scoreCell{fontID: strings.TrimSpace(fontID), codepoint: cp})
		return true
	})

	if cellErr != nil {
		return nil, cellErr
	}
	return cells, nil
}

// decodeCodepoint interprets an obfuscated cell payload as a codepoint.
// Payloads arrive percent-encoded with a literal %u prefix: "%25uE021"
// decodes to "%uE021", which names U+E021. Payloads that are not valid
// percent encodings are used as-is, so a bare "%uE021" or "E021" also works.
func decodeCodepoint(payload string) (uint32, error) {
	decoded, err := url.QueryUnescape(payload)
	if err != nil {
		decoded = payload
	}

	decoded = strings.TrimSpace(decoded)
	decoded = strings.TrimPrefix(decoded, "%u")
	if decoded == "" {
		return 0, fmt.Errorf("%w: empty payload", ErrMalformedCodepoint)
	}

	cp, err := strconv.ParseUint(decoded, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a hex codepoint", ErrMalformedCodepoint, payload)
	}
	return uint32(cp), nil
}
