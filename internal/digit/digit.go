// Package digit maps deobfuscated glyph names to score digits.
package digit

import (
	"errors"
	"fmt"

	"github.com/pfrederiksen/liga-scores/internal/glyphcache"
)

var (
	// ErrGlyphNotFound reports a (font, codepoint) pair with no cached
	// glyph. It wraps glyphcache.ErrNotFound.
	ErrGlyphNotFound = fmt.Errorf("codepoint has no cached glyph: %w", glyphcache.ErrNotFound)

	// ErrUnsupportedName reports a glyph whose name is not a digit name.
	ErrUnsupportedName = errors.New("glyph name does not name a digit")
)

// digitNames maps the glyph names score fonts use onto digit values.
var digitNames = map[string]int{
	"zero":  0,
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
	"six":   6,
	"seven": 7,
	"eight": 8,
	"nine":  9,
}

// Store resolves codepoints to glyph names.
type Store interface {
	Resolve(fontID string, codepoint uint32) (string, error)
}

// Resolver turns obfuscated codepoints into digits using cached glyph
// tables.
type Resolver struct {
	store Store
}

// NewResolver creates a Resolver over a glyph store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Decode returns the digit the font renders for the codepoint. The font must
// already be cached; callers load it through the coordinator first.
func (r *Resolver) Decode(fontID string, codepoint uint32) (int, error) {
	name, err := r.store.Resolve(fontID, codepoint)
	if err != nil {
		if errors.Is(err, glyphcache.ErrNotFound) {
			return 0, fmt.Errorf("font %s codepoint U+%04X: %w", fontID, codepoint, ErrGlyphNotFound)
		}
		return 0, fmt.Errorf("resolving codepoint: %w", err)
	}

	d, ok := digitNames[name]
	if !ok {
		return 0, fmt.Errorf("font %s codepoint U+%04X resolves to glyph %q: %w", fontID, codepoint, name, ErrUnsupportedName)
	}
	return d, nil
}
