package woff

import (
	"errors"
	"fmt"
)

// parsePost extracts per-glyph names from the post table. Version 2.0 carries
// explicit names (the case for the site's score fonts, which name their digit
// glyphs "zero".."nine"); version 1.0 implies the standard Macintosh ordering;
// version 3.0 carries no names at all.
func parsePost(b []byte, numGlyphs int) ([]string, error) {
	if len(b) < 32 {
		return nil, errors.New("post: table truncated")
	}
	r := newBinaryReader(b)
	version := r.ReadUint32()
	r.Seek(32) // skip italic angle, underline metrics and memory hints

	names := make([]string, numGlyphs)
	switch version {
	case 0x00010000:
		for i := range names {
			if i < len(macGlyphNames) {
				names[i] = macGlyphNames[i]
			}
		}
		return names, nil

	case 0x00030000:
		return names, nil

	case 0x00020000:
		n := int(r.ReadUint16())
		if r.EOF() {
			return nil, errors.New("post: table truncated")
		}
		if n != numGlyphs {
			return nil, fmt.Errorf("post: glyph count %d does not match maxp glyph count %d", n, numGlyphs)
		}
		indices := make([]uint16, n)
		for i := 0; i < n; i++ {
			indices[i] = r.ReadUint16()
		}
		if r.EOF() {
			return nil, errors.New("post: glyph name index truncated")
		}

		// Pascal strings for all non-standard names, in index order.
		var extra []string
		for r.Len() > 0 {
			l := uint32(r.ReadUint8())
			s := r.ReadString(l)
			if r.EOF() {
				return nil, errors.New("post: string data truncated")
			}
			extra = append(extra, s)
		}

		for i, idx := range indices {
			if int(idx) < len(macGlyphNames) {
				names[i] = macGlyphNames[idx]
				continue
			}
			j := int(idx) - len(macGlyphNames)
			if j >= len(extra) {
				return nil, fmt.Errorf("post: glyph %d references name %d beyond string data", i, idx)
			}
			names[i] = extra[j]
		}
		return names, nil

	default:
		return nil, fmt.Errorf("post: unsupported version 0x%08X", version)
	}
}
