// Package fontfetch downloads score fonts from the site's font export
// endpoint and parses them into glyph tables.
package fontfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pfrederiksen/liga-scores/internal/woff"
)

const (
	// FontPathFormat is the site's per-font export endpoint. The id segment
	// is upper-cased to match the links the results page emits.
	FontPathFormat = "%s/export.fontface/-/format/woff/id/%s/type/font"
	UserAgent      = "liga-scores-cli/1.0 (github.com/pfrederiksen/liga-scores)"
	Timeout        = 30 * time.Second
)

// Fetcher downloads fonts over HTTP. It never retries on its own; failed
// downloads are reported to the caller, which decides whether a font id is
// worth another attempt.
type Fetcher struct {
	client  *http.Client
	baseURL string
	tmpDir  string
}

// New creates a Fetcher for fonts exported by the site at baseURL.
func New(baseURL string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: Timeout,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// FontURL returns the download URL for a font id.
func (f *Fetcher) FontURL(fontID string) string {
	return fmt.Sprintf(FontPathFormat, f.baseURL, strings.ToUpper(strings.TrimSpace(fontID)))
}

// Fetch downloads the font and parses its glyph table. The payload is
// spooled through a temporary file that is removed again on every return
// path, success or not.
func (f *Fetcher) Fetch(ctx context.Context, fontID string) (*woff.Table, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", f.FontURL(fontID), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading font %s: %w", fontID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading font %s: unexpected status code: %d", fontID, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(f.tmpDir, "liga-scores-font-*.woff")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return nil, fmt.Errorf("writing font %s: %w", fontID, err)
	}

	table, err := woff.ParseFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", fontID, err)
	}
	return table, nil
}
