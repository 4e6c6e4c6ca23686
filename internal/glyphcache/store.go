package glyphcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pfrederiksen/liga-scores/internal/woff"
)

const snapshotFile = "fonts.json"

// ErrNotFound is returned by Resolve when the (font, codepoint) pair has no
// cached glyph.
var ErrNotFound = errors.New("glyph not found in cache")

// fontEntry is the stored form of one font: glyph names keyed by glyph index
// and the codepoint index pointing into them.
type fontEntry struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	FetchedAt  time.Time      `json:"fetched_at"`
	Glyphs     map[int]string `json:"glyphs"`
	Codepoints map[uint32]int `json:"codepoints"`
}

// FontInfo summarizes one cached font for listings.
type FontInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
	Glyphs     int       `json:"glyphs"`
	Codepoints int       `json:"codepoints"`
}

// Store holds the cached glyph tables. All methods are safe for concurrent
// use. Initialization (data directory creation, snapshot loading) runs once
// on first use; an init failure is sticky and surfaces from every operation.
type Store struct {
	dataDir string

	initOnce sync.Once
	initErr  error

	mu    sync.Mutex
	fonts map[string]*fontEntry
}

// Open prepares a store rooted at dataDir. An empty dataDir keeps the cache
// purely in memory.
func Open(dataDir string) (*Store, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	return &Store{
		dataDir: dataDir,
		fonts:   make(map[string]*fontEntry),
	}, nil
}

// CanonicalID normalizes a font id. Ids are matched case-insensitively
// everywhere, so the cache stores them lower-cased.
func CanonicalID(fontID string) string {
	return strings.ToLower(strings.TrimSpace(fontID))
}

// ensureInit runs the deferred initialization exactly once.
func (s *Store) ensureInit() error {
	s.initOnce.Do(func() {
		if s.dataDir == "" {
			return
		}
		if err := os.MkdirAll(s.dataDir, 0755); err != nil {
			s.initErr = fmt.Errorf("cache init: creating data directory: %w", err)
			return
		}
		if err := s.load(); err != nil {
			s.initErr = fmt.Errorf("cache init: %w", err)
		}
	})
	return s.initErr
}

// load reads the persisted snapshot. A missing file is an empty cache.
func (s *Store) load() error {
	data, err := os.ReadFile(filepath.Join(s.dataDir, snapshotFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache snapshot: %w", err)
	}

	var fonts map[string]*fontEntry
	if err := json.Unmarshal(data, &fonts); err != nil {
		return fmt.Errorf("parsing cache snapshot: %w", err)
	}

	for id, f := range fonts {
		if f.Glyphs == nil {
			f.Glyphs = make(map[int]string)
		}
		if f.Codepoints == nil {
			f.Codepoints = make(map[uint32]int)
		}
		s.fonts[CanonicalID(id)] = f
	}
	return nil
}

// persist writes the snapshot. Callers hold the mutex.
func (s *Store) persist() error {
	if s.dataDir == "" {
		return nil
	}

	data, err := json.MarshalIndent(s.fonts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache snapshot: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dataDir, snapshotFile), data, 0644); err != nil {
		return fmt.Errorf("writing cache snapshot: %w", err)
	}
	return nil
}

// IsCached reports whether the font's glyph table is already stored.
func (s *Store) IsCached(fontID string) (bool, error) {
	if err := s.ensureInit(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.fonts[CanonicalID(fontID)]
	return ok, nil
}

// Record stores a parsed font. Re-recording a known font leaves existing
// rows untouched: missing glyph or codepoint rows are inserted, nothing is
// overwritten. The snapshot is written only when the call changed something.
func (s *Store) Record(fontID, fontName string, glyphs []woff.Glyph) error {
	if err := s.ensureInit(); err != nil {
		return err
	}
	id := CanonicalID(fontID)
	if id == "" {
		return errors.New("recording font: empty font id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.fonts[id]
	if !ok {
		f = &fontEntry{
			ID:         id,
			Name:       fontName,
			FetchedAt:  time.Now().UTC(),
			Glyphs:     make(map[int]string),
			Codepoints: make(map[uint32]int),
		}
		s.fonts[id] = f
	}

	dirty := !ok
	for _, g := range glyphs {
		if _, exists := f.Glyphs[g.Index]; !exists {
			f.Glyphs[g.Index] = g.Name
			dirty = true
		}
		for _, cp := range g.Unicodes {
			if _, exists := f.Codepoints[cp]; !exists {
				f.Codepoints[cp] = g.Index
				dirty = true
			}
		}
	}
	if !dirty {
		return nil
	}
	return s.persist()
}

// Resolve returns the name of the glyph the font maps the codepoint to.
func (s *Store) Resolve(fontID string, codepoint uint32) (string, error) {
	if err := s.ensureInit(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.fonts[CanonicalID(fontID)]
	if !ok {
		return "", fmt.Errorf("font %q: %w", fontID, ErrNotFound)
	}
	idx, ok := f.Codepoints[codepoint]
	if !ok {
		return "", fmt.Errorf("font %q codepoint U+%04X: %w", fontID, codepoint, ErrNotFound)
	}
	name, ok := f.Glyphs[idx]
	if !ok {
		return "", fmt.Errorf("font %q glyph %d: %w", fontID, idx, ErrNotFound)
	}
	return name, nil
}

// Stats returns row counts: cached fonts, glyph rows and codepoint rows.
func (s *Store) Stats() (fonts, glyphs, codepoints int) {
	if err := s.ensureInit(); err != nil {
		return 0, 0, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fonts {
		fonts++
		glyphs += len(f.Glyphs)
		codepoints += len(f.Codepoints)
	}
	return fonts, glyphs, codepoints
}

// Fonts lists the cached fonts sorted by id.
func (s *Store) Fonts() ([]FontInfo, error) {
	if err := s.ensureInit(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]FontInfo, 0, len(s.fonts))
	for id, f := range s.fonts {
		infos = append(infos, FontInfo{
			ID:         id,
			Name:       f.Name,
			FetchedAt:  f.FetchedAt,
			Glyphs:     len(f.Glyphs),
			Codepoints: len(f.Codepoints),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}
