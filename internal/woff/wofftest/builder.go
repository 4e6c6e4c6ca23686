// Package wofftest assembles small digit fonts in memory. Tests use it to
// serve fonts from an httptest server instead of checking binary fixtures
// into the repository.
package wofftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/bits"
	"sort"
	"unicode/utf16"

	"github.com/klauspost/compress/zlib"
)

// digitNames index matches the digit value.
var digitNames = [10]string{
	"zero", "one", "two", "three", "four",
	"five", "six", "seven", "eight", "nine",
}

// Font accumulates glyphs and serializes them as a raw sfnt or a WOFF
// container. Glyph index 0 (.notdef) is implicit; added glyphs get
// consecutive indices starting at 1.
type Font struct {
	name   string
	glyphs []glyphSpec
}

type glyphSpec struct {
	name       string
	codepoints []rune
}

// New starts an empty font with the given full name.
func New(name string) *Font {
	return &Font{name: name}
}

// Glyph appends a named glyph reachable from the given codepoints and
// returns the font for chaining. Codepoints must lie in the basic
// multilingual plane, which covers the private use area the score fonts
// obfuscate into.
func (f *Font) Glyph(name string, codepoints ...rune) *Font {
	for _, cp := range codepoints {
		if cp < 0 || cp > 0xFFFD {
			panic(fmt.Sprintf("wofftest: codepoint %U outside the basic multilingual plane", cp))
		}
	}
	f.glyphs = append(f.glyphs, glyphSpec{name: name, codepoints: codepoints})
	return f
}

// Digits adds the ten digit glyphs, mapping codepoints[d] to the glyph named
// for digit d.
func (f *Font) Digits(codepoints [10]rune) *Font {
	for d, cp := range codepoints {
		f.Glyph(digitNames[d], cp)
	}
	return f
}

// SFNT serializes the font as a raw TrueType-flavored sfnt binary.
func (f *Font) SFNT() []byte {
	tables := f.tables()
	n := len(tables)
	entrySelector := bits.Len(uint(n)) - 1
	searchRange := 16 << entrySelector

	w := &writer{}
	w.uint32(0x00010000)
	w.uint16(uint16(n))
	w.uint16(uint16(searchRange))
	w.uint16(uint16(entrySelector))
	w.uint16(uint16(16*n - searchRange))

	offset := uint32(12 + 16*n)
	for _, t := range tables {
		padded := pad4(t.data)
		w.str(t.tag)
		w.uint32(checksum(padded))
		w.uint32(offset)
		w.uint32(uint32(len(t.data)))
		offset += uint32(len(padded))
	}
	for _, t := range tables {
		w.raw(pad4(t.data))
	}
	return w.buf
}

// WOFF serializes the font as a WOFF 1.0 container, zlib-compressing every
// table that shrinks and storing the rest raw.
func (f *Font) WOFF() []byte {
	tables := f.tables()
	n := len(tables)

	type packed struct {
		tag        string
		data       []byte
		origLength uint32
		checksum   uint32
	}
	parts := make([]packed, 0, n)
	sfntSize := uint32(12 + 16*n)
	for _, t := range tables {
		padded := pad4(t.data)
		sfntSize += uint32(len(padded))
		data := deflate(t.data)
		if len(data) >= len(t.data) {
			data = t.data
		}
		parts = append(parts, packed{t.tag, data, uint32(len(t.data)), checksum(padded)})
	}

	offset := uint32(44 + 20*n)
	total := offset
	for _, p := range parts {
		total += uint32(len(pad4(p.data)))
	}

	w := &writer{}
	w.uint32(0x774F4646) // "wOFF"
	w.uint32(0x00010000) // flavor
	w.uint32(total)
	w.uint16(uint16(n))
	w.uint16(0) // reserved
	w.uint32(sfntSize)
	w.uint16(1) // majorVersion
	w.uint16(0) // minorVersion
	w.uint32(0) // metaOffset
	w.uint32(0) // metaLength
	w.uint32(0) // metaOrigLength
	w.uint32(0) // privOffset
	w.uint32(0) // privLength
	for _, p := range parts {
		w.str(p.tag)
		w.uint32(offset)
		w.uint32(uint32(len(p.data)))
		w.uint32(p.origLength)
		w.uint32(p.checksum)
		offset += uint32(len(pad4(p.data)))
	}
	for _, p := range parts {
		w.raw(pad4(p.data))
	}
	return w.buf
}

type namedTable struct {
	tag  string
	data []byte
}

// tables builds the four tables the deobfuscation parser reads, in the
// alphabetical tag order the sfnt directory requires.
func (f *Font) tables() []namedTable {
	return []namedTable{
		{"cmap", f.buildCmap()},
		{"maxp", buildMaxp(len(f.glyphs) + 1)},
		{"name", buildName(f.name)},
		{"post", f.buildPost()},
	}
}

func buildMaxp(numGlyphs int) []byte {
	w := &writer{}
	w.uint32(0x00005000)
	w.uint16(uint16(numGlyphs))
	return w.buf
}

// buildCmap emits a format 4 subtable with one single-codepoint segment per
// mapping plus the required 0xFFFF terminator segment.
func (f *Font) buildCmap() []byte {
	type mapping struct {
		cp  uint16
		gid uint16
	}
	var mappings []mapping
	for i, g := range f.glyphs {
		for _, cp := range g.codepoints {
			mappings = append(mappings, mapping{cp: uint16(cp), gid: uint16(i + 1)})
		}
	}
	sort.Slice(mappings, func(i, j int) bool { return mappings[i].cp < mappings[j].cp })

	segCount := len(mappings) + 1
	entrySelector := bits.Len(uint(segCount)) - 1
	searchRange := 2 << entrySelector

	w := &writer{}
	w.uint16(0) // version
	w.uint16(1) // numTables
	w.uint16(3) // platformID: Windows
	w.uint16(1) // encodingID: Unicode BMP
	w.uint32(12)

	w.uint16(4) // format
	w.uint16(uint16(14 + 2 + 8*segCount))
	w.uint16(0) // language
	w.uint16(uint16(segCount * 2))
	w.uint16(uint16(searchRange))
	w.uint16(uint16(entrySelector))
	w.uint16(uint16(segCount*2 - searchRange))
	for _, m := range mappings {
		w.uint16(m.cp) // endCode
	}
	w.uint16(0xFFFF)
	w.uint16(0) // reservedPad
	for _, m := range mappings {
		w.uint16(m.cp) // startCode
	}
	w.uint16(0xFFFF)
	for _, m := range mappings {
		w.uint16(m.gid - m.cp) // idDelta, modulo 65536
	}
	w.uint16(1)
	for i := 0; i < segCount; i++ {
		w.uint16(0) // idRangeOffset
	}
	return w.buf
}

// buildName emits a format 0 name table carrying the family and full name,
// both as Windows UTF-16BE records.
func buildName(name string) []byte {
	encoded := encodeUTF16BE(name)

	w := &writer{}
	w.uint16(0) // format
	w.uint16(2) // count
	w.uint16(6 + 2*12)
	for _, nameID := range []uint16{1, 4} {
		w.uint16(3)      // platformID
		w.uint16(1)      // encodingID
		w.uint16(0x0409) // languageID
		w.uint16(nameID)
		w.uint16(uint16(len(encoded)))
		w.uint16(0)
	}
	w.raw(encoded)
	return w.buf
}

// buildPost emits a version 2.0 post table naming every added glyph through
// the non-standard string storage.
func (f *Font) buildPost() []byte {
	w := &writer{}
	w.uint32(0x00020000) // version
	w.uint32(0)          // italicAngle
	w.uint16(0)          // underlinePosition
	w.uint16(0)          // underlineThickness
	w.uint32(0)          // isFixedPitch
	w.uint32(0)          // minMemType42
	w.uint32(0)          // maxMemType42
	w.uint32(0)          // minMemType1
	w.uint32(0)          // maxMemType1
	w.uint16(uint16(len(f.glyphs) + 1))
	w.uint16(0) // .notdef, standard index 0
	for i := range f.glyphs {
		w.uint16(uint16(258 + i))
	}
	for _, g := range f.glyphs {
		if len(g.name) > 255 {
			panic(fmt.Sprintf("wofftest: glyph name %q too long", g.name))
		}
		w.uint8(uint8(len(g.name)))
		w.str(g.name)
	}
	return w.buf
}

type writer struct {
	buf []byte
}

func (w *writer) uint8(v uint8)   { w.buf = append(w.buf, v) }
func (w *writer) uint16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *writer) uint32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }
func (w *writer) raw(b []byte)    { w.buf = append(w.buf, b...) }
func (w *writer) str(s string)    { w.buf = append(w.buf, s...) }

func encodeUTF16BE(s string) []byte {
	var b []byte
	for _, u := range utf16.Encode([]rune(s)) {
		b = append(b, byte(u>>8), byte(u))
	}
	return b
}

func pad4(b []byte) []byte {
	if len(b)%4 == 0 {
		return b
	}
	p := make([]byte, (len(b)+3)&^3)
	copy(p, b)
	return p
}

func checksum(padded []byte) uint32 {
	var sum uint32
	for i := 0; i+3 < len(padded); i += 4 {
		sum += binary.BigEndian.Uint32(padded[i:])
	}
	return sum
}

// deflate zlib-compresses data. Writes to a bytes.Buffer cannot fail.
func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(data)
	_ = zw.Close()
	return buf.Bytes()
}
