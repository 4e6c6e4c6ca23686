// Package glyphcache persists the glyph tables of deobfuscation fonts.
//
// The glyphcache package stores, per font id, every glyph name and every
// codepoint-to-glyph assignment recovered from a downloaded score font, so a
// font is fetched and parsed at most once across process runs. The cache is
// held in memory and mirrored to a JSON snapshot in the data directory;
// recording the same font again never alters rows that already exist.
package glyphcache
