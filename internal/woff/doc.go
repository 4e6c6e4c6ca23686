// Package woff parses the binary score fonts served by the league site into
// glyph tables.
//
// The site obfuscates score digits by rendering them with per-page WOFF fonts
// whose glyphs sit at private-use-area codepoints. Recovering a digit requires
// the font's glyph names ("zero".."nine") and the codepoints assigned to them,
// so this package reads exactly the sfnt tables needed for that mapping:
// maxp (glyph count), post (glyph names), cmap (codepoint assignments) and
// name (display name, best effort). Both WOFF-wrapped and raw sfnt payloads
// are accepted; WOFF table data is inflated with zlib.
package woff
