package fontfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/pfrederiksen/liga-scores/internal/woff/wofftest"
)

var scoreCodepoints = [10]rune{
	0xE021, 0xE032, 0xE043, 0xE054, 0xE065,
	0xE076, 0xE087, 0xE098, 0xE0A9, 0xE0BA,
}

func TestFontURL(t *testing.T) {
	f := New("https://example.org/")
	want := "https://example.org/export.fontface/-/format/woff/id/1A2B/type/font"
	if got := f.FontURL("1a2b"); got != want {
		t.Errorf("FontURL() = %q, want %q", got, want)
	}
}

func TestFetchParsesServedFont(t *testing.T) {
	fontData := wofftest.New("LigaScore 1A2B").Digits(scoreCodepoints).WOFF()

	var gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		w.Write(fontData)
	}))
	defer server.Close()

	f := New(server.URL)
	table, err := f.Fetch(context.Background(), "1a2b")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if want := "/export.fontface/-/format/woff/id/1A2B/type/font"; gotPath != want {
		t.Errorf("requested path = %q, want %q", gotPath, want)
	}
	if gotAgent != UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotAgent, UserAgent)
	}
	if table.Name != "LigaScore 1A2B" {
		t.Errorf("table.Name = %q", table.Name)
	}
	if len(table.Glyphs) != 11 {
		t.Errorf("len(Glyphs) = %d, want 11", len(table.Glyphs))
	}
	if g := table.Glyphs[1]; g.Name != "zero" || len(g.Unicodes) != 1 || g.Unicodes[0] != 0xE021 {
		t.Errorf("Glyphs[1] = %+v", g)
	}
}

func TestFetchCleansUpTempFiles(t *testing.T) {
	fontData := wofftest.New("LigaScore 1A2B").Digits(scoreCodepoints).WOFF()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/id/1A2B/"):
			w.Write(fontData)
		case strings.Contains(r.URL.Path, "/id/BAD1/"):
			w.Write([]byte("this is not a font"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	tmpDir, err := os.MkdirTemp("", "fontfetch-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	f := New(server.URL)
	f.tmpDir = tmpDir

	tests := []struct {
		name    string
		fontID  string
		wantErr bool
	}{
		{"Successful fetch", "1a2b", false},
		{"Unparseable payload", "bad1", true},
		{"Missing font", "dead", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.fontID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fetch() error = %v, wantErr %v", err, tt.wantErr)
			}

			entries, err := os.ReadDir(tmpDir)
			if err != nil {
				t.Fatalf("Failed to read temp dir: %v", err)
			}
			if len(entries) != 0 {
				t.Errorf("temp dir holds %d leftover files after fetch", len(entries))
			}
		})
	}
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	f := New(server.URL)
	if _, err := f.Fetch(context.Background(), "1a2b"); err == nil || !strings.Contains(err.Error(), "unexpected status code: 410") {
		t.Errorf("Fetch() error = %v, want status code error", err)
	}
}
