package glyphcache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pfrederiksen/liga-scores/internal/woff"
)

var testGlyphs = []woff.Glyph{
	{Index: 0, Name: ".notdef"},
	{Index: 1, Name: "zero", Unicodes: []uint32{0xE021}},
	{Index: 2, Name: "one", Unicodes: []uint32{0xE032, 0xE033}},
	{Index: 3, Name: "four", Unicodes: []uint32{0xE054}},
}

func TestRecordAndResolve(t *testing.T) {
	store, err := Open("")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := store.Record("1A2B", "ScoreFont", testGlyphs); err != nil {
		t.Fatalf("Failed to record font: %v", err)
	}

	tests := []struct {
		name      string
		fontID    string
		codepoint uint32
		want      string
		wantErr   bool
	}{
		{
			name:      "Resolve single-codepoint glyph",
			fontID:    "1A2B",
			codepoint: 0xE021,
			want:      "zero",
		},
		{
			name:      "Resolve glyph with several codepoints",
			fontID:    "1A2B",
			codepoint: 0xE033,
			want:      "one",
		},
		{
			name:      "Unknown codepoint",
			fontID:    "1A2B",
			codepoint: 0xE0FF,
			wantErr:   true,
		},
		{
			name:      "Unknown font",
			fontID:    "ffff",
			codepoint: 0xE021,
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Resolve(tt.fontID, tt.codepoint)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Resolve() error = %v, want ErrNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	store, err := Open("")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := store.Record("1a2b", "ScoreFont", testGlyphs); err != nil {
		t.Fatalf("Failed to record font: %v", err)
	}

	// Re-record with a conflicting name for glyph 1 and one new codepoint.
	conflicting := []woff.Glyph{
		{Index: 1, Name: "NOT-zero", Unicodes: []uint32{0xE021, 0xE099}},
	}
	if err := store.Record("1A2B", "Other", conflicting); err != nil {
		t.Fatalf("Failed to re-record font: %v", err)
	}

	if got, err := store.Resolve("1a2b", 0xE021); err != nil || got != "zero" {
		t.Errorf("Resolve(0xE021) = %q, %v; existing row must stay untouched", got, err)
	}
	if got, err := store.Resolve("1a2b", 0xE099); err != nil || got != "zero" {
		t.Errorf("Resolve(0xE099) = %q, %v; new codepoint row must be inserted", got, err)
	}

	fonts, glyphs, codepoints := store.Stats()
	if fonts != 1 || glyphs != 4 || codepoints != 5 {
		t.Errorf("Stats() = %d fonts, %d glyphs, %d codepoints; want 1, 4, 5", fonts, glyphs, codepoints)
	}
}

func TestPersistenceAcrossOpens(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "glyphcache-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	first, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := first.Record("1A2B", "ScoreFont", testGlyphs); err != nil {
		t.Fatalf("Failed to record font: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "fonts.json")); err != nil {
		t.Fatalf("Snapshot file missing after record: %v", err)
	}

	second, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	cached, err := second.IsCached("1a2b")
	if err != nil {
		t.Fatalf("IsCached() error = %v", err)
	}
	if !cached {
		t.Error("IsCached() = false after reopen, want true")
	}
	if got, err := second.Resolve("1A2B", 0xE054); err != nil || got != "four" {
		t.Errorf("Resolve() after reopen = %q, %v; want four", got, err)
	}
}

func TestInMemoryStoreWritesNothing(t *testing.T) {
	store, err := Open("")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := store.Record("1a2b", "", testGlyphs); err != nil {
		t.Fatalf("Failed to record font: %v", err)
	}
	if cached, err := store.IsCached("1a2b"); err != nil || !cached {
		t.Errorf("IsCached() = %v, %v; want true", cached, err)
	}
}

func TestCorruptSnapshotFailureIsSticky(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "glyphcache-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := os.WriteFile(filepath.Join(tmpDir, "fonts.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt snapshot: %v", err)
	}

	store, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	if _, err := store.IsCached("1a2b"); err == nil {
		t.Fatal("IsCached() error = nil, want init failure")
	}
	// Same failure again: init must not be retried.
	if err := store.Record("1a2b", "", testGlyphs); err == nil {
		t.Error("Record() error = nil, want sticky init failure")
	}
	if _, err := store.Resolve("1a2b", 0xE021); err == nil {
		t.Error("Resolve() error = nil, want sticky init failure")
	}
}

func TestFontsListing(t *testing.T) {
	store, err := Open("")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := store.Record("2C3D", "Beta", testGlyphs[:2]); err != nil {
		t.Fatalf("Failed to record font: %v", err)
	}
	if err := store.Record("1a2b", "Alpha", testGlyphs); err != nil {
		t.Fatalf("Failed to record font: %v", err)
	}

	infos, err := store.Fonts()
	if err != nil {
		t.Fatalf("Fonts() error = %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Fonts() returned %d entries, want 2", len(infos))
	}
	if infos[0].ID != "1a2b" || infos[1].ID != "2c3d" {
		t.Errorf("Fonts() order = %q, %q; want sorted ids", infos[0].ID, infos[1].ID)
	}
	if infos[0].Glyphs != 4 || infos[0].Codepoints != 4 {
		t.Errorf("Fonts()[0] counts = %d glyphs, %d codepoints; want 4, 4", infos[0].Glyphs, infos[0].Codepoints)
	}
	if infos[1].Glyphs != 2 || infos[1].Codepoints != 1 {
		t.Errorf("Fonts()[1] counts = %d glyphs, %d codepoints; want 2, 1", infos[1].Glyphs, infos[1].Codepoints)
	}
}

func TestRecordRejectsEmptyFontID(t *testing.T) {
	store, err := Open("")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := store.Record("  ", "ScoreFont", testGlyphs); err == nil {
		t.Error("Record() error = nil, want empty id rejection")
	}
}
