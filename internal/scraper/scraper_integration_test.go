package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/liga-scores/internal/digit"
	"github.com/pfrederiksen/liga-scores/internal/fontfetch"
	"github.com/pfrederiksen/liga-scores/internal/fontload"
	"github.com/pfrederiksen/liga-scores/internal/glyphcache"
	"github.com/pfrederiksen/liga-scores/internal/woff/wofftest"
)

// newTestScraper shrinks the retry schedule so failure cases do not sleep.
func newTestScraper(loader FontLoader, decoder ScoreDecoder, url string) *Scraper {
	s := NewWithURL(loader, decoder, url)
	s.retryInterval = time.Millisecond
	return s
}

func TestFetchResults(t *testing.T) {
	fixture, err := os.ReadFile("../../testdata/fixtures/sample_results.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	tests := []struct {
		name        string
		htmlContent string
		statusCode  int
		wantError   bool
		wantMatches int
	}{
		{
			name:        "successful fetch with results",
			htmlContent: string(fixture),
			statusCode:  http.StatusOK,
			wantError:   false,
			wantMatches: 3,
		},
		{
			name:        "HTTP error",
			htmlContent: "",
			statusCode:  http.StatusNotFound,
			wantError:   true,
		},
		{
			name:        "empty page",
			htmlContent: `<html><body><p>Keine Spiele</p></body></html>`,
			statusCode:  http.StatusOK,
			wantError:   false,
			wantMatches: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Verify User-Agent is set
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "liga-scores") {
					t.Errorf("User-Agent = %q, should contain 'liga-scores'", userAgent)
				}

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.htmlContent))
			}))
			defer server.Close()

			s := newTestScraper(&fakeLoader{}, fixtureDecoder(), server.URL)

			matches, err := s.FetchResults(context.Background())

			if tt.wantError {
				if err == nil {
					t.Error("FetchResults() expected error, got nil")
				}
			} else {
				if err != nil {
					t.Errorf("FetchResults() unexpected error: %v", err)
				}
				if len(matches) != tt.wantMatches {
					t.Errorf("FetchResults() returned %d matches, want %d", len(matches), tt.wantMatches)
				}
			}
		})
	}
}

func TestFetchResultsRetriesOnServerError(t *testing.T) {
	page := resultPage(resultRow("02.11.2025", "SV Nord", "FC Süd", "%25uE032", "%25uE021"))

	var mu sync.Mutex
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()

		if n < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(page))
	}))
	defer server.Close()

	s := newTestScraper(&fakeLoader{}, fixtureDecoder(), server.URL)

	matches, err := s.FetchResults(context.Background())
	if err != nil {
		t.Fatalf("FetchResults() failed after retries: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("FetchResults() returned %d matches, want 1", len(matches))
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 3 {
		t.Errorf("server saw %d attempts, want 3", attempts)
	}
}

func TestFetchResultsRetriesExhausted(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newTestScraper(&fakeLoader{}, fixtureDecoder(), server.URL)

	_, err := s.FetchResults(context.Background())
	if err == nil {
		t.Fatal("FetchResults() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "unexpected status code: 500") {
		t.Errorf("error = %v, should carry the final status", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != RetryAttempts+1 {
		t.Errorf("server saw %d attempts, want %d", attempts, RetryAttempts+1)
	}
}

// TestFetchResultsEndToEnd drives the full pipeline against one test server:
// the results page references two obfuscation fonts, the fonts are served as
// real WOFF binaries, and scores come back through fetch, parse, cache and
// glyph-name resolution with no fakes involved.
func TestFetchResultsEndToEnd(t *testing.T) {
	fixture, err := os.ReadFile("../../testdata/fixtures/sample_results.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	fontA := wofftest.New("Obfuscation A").Digits([10]rune{
		0xE021, 0xE032, 0xE043, 0xE054, 0xE065, 0xE076, 0xE087, 0xE098, 0xE0A9, 0xE0BA,
	}).WOFF()
	fontB := wofftest.New("Obfuscation B").Digits([10]rune{
		0xF101, 0xF111, 0xF121, 0xF131, 0xF141, 0xF151, 0xF161, 0xF171, 0xF181, 0xF191,
	}).WOFF()
	fonts := map[string][]byte{
		"1A2B3C4D": fontA,
		"9F8E7D6C": fontB,
	}

	var mu sync.Mutex
	fontHits := make(map[string]int)

	mux := http.NewServeMux()
	mux.HandleFunc("/ergebnisse", func(w http.ResponseWriter, r *http.Request) {
		w.Write(fixture)
	})
	mux.HandleFunc("/export.fontface/", func(w http.ResponseWriter, r *http.Request) {
		// Path shape: /export.fontface/-/format/woff/id/<ID>/type/font
		parts := strings.Split(r.URL.Path, "/")
		if len(parts) < 7 {
			http.NotFound(w, r)
			return
		}
		id := parts[6]

		data, ok := fonts[id]
		if !ok {
			http.NotFound(w, r)
			return
		}

		mu.Lock()
		fontHits[id]++
		mu.Unlock()
		w.Write(data)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	store, err := glyphcache.Open("")
	if err != nil {
		t.Fatalf("Failed to open glyph store: %v", err)
	}
	coordinator := fontload.New(fontfetch.New(server.URL), store)
	resolver := digit.NewResolver(store)
	s := newTestScraper(coordinator, resolver, server.URL+"/ergebnisse")

	matches, err := s.FetchResults(context.Background())
	if err != nil {
		t.Fatalf("FetchResults() failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("FetchResults() returned %d matches, want 3", len(matches))
	}

	wantScores := [][2]int{{2, 1}, {0, 0}, {4, 3}}
	for i, m := range matches {
		if m.HomeScore != wantScores[i][0] || m.GuestScore != wantScores[i][1] {
			t.Errorf("match %d score = %d:%d, want %d:%d",
				i, m.HomeScore, m.GuestScore, wantScores[i][0], wantScores[i][1])
		}
	}

	// Six score cells reference the two fonts, but each font is downloaded
	// exactly once.
	mu.Lock()
	defer mu.Unlock()
	for id, hits := range fontHits {
		if hits != 1 {
			t.Errorf("font %s downloaded %d times, want 1", id, hits)
		}
	}
	if len(fontHits) != 2 {
		t.Errorf("downloaded %d fonts, want 2", len(fontHits))
	}
}
