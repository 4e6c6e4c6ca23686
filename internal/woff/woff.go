package woff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"
)

const (
	signatureWOFF      = 0x774F4646 // "wOFF"
	sfntVersionTrue    = 0x00010000 // TrueType outlines
	sfntVersionOTTO    = 0x4F54544F // "OTTO", CFF outlines
	sfntVersionAppleTT = 0x74727565 // "true", legacy TrueType
)

// Glyph is one entry of a font's glyph table: its position in the table, its
// name from the post table, and every codepoint the cmap assigns to it.
// A glyph may carry zero codepoints (unreachable shapes) or several
// (ligatures, variants).
type Glyph struct {
	Index    int      `json:"index"`
	Name     string   `json:"name"`
	Unicodes []uint32 `json:"unicodes,omitempty"`
}

// Table is a parsed glyph table, ordered by glyph index.
type Table struct {
	Name   string  `json:"name"`
	Glyphs []Glyph `json:"glyphs"`
}

// Parse parses a WOFF or raw sfnt font binary into a glyph table.
func Parse(data []byte) (*Table, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("font data too short (%d bytes)", len(data))
	}

	var tables map[string][]byte
	var err error
	switch binary.BigEndian.Uint32(data) {
	case signatureWOFF:
		tables, err = unpackWOFF(data)
	case sfntVersionTrue, sfntVersionOTTO, sfntVersionAppleTT:
		tables, err = readTableDirectory(data)
	default:
		return nil, fmt.Errorf("unrecognized font signature 0x%08X", binary.BigEndian.Uint32(data))
	}
	if err != nil {
		return nil, err
	}

	return parseTables(tables)
}

// ParseFile parses the font binary stored at path.
func ParseFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}
	return Parse(data)
}

// unpackWOFF reads a WOFF container and returns its sfnt tables, inflating
// zlib-compressed table data.
func unpackWOFF(data []byte) (map[string][]byte, error) {
	r := newBinaryReader(data)
	_ = r.ReadUint32() // signature, checked by Parse
	_ = r.ReadUint32() // flavor
	_ = r.ReadUint32() // length
	numTables := r.ReadUint16()
	_ = r.ReadUint16() // reserved
	_ = r.ReadUint32() // totalSfntSize
	_ = r.ReadUint16() // majorVersion
	_ = r.ReadUint16() // minorVersion
	_ = r.ReadUint32() // metaOffset
	_ = r.ReadUint32() // metaLength
	_ = r.ReadUint32() // metaOrigLength
	_ = r.ReadUint32() // privOffset
	_ = r.ReadUint32() // privLength
	if r.EOF() {
		return nil, errors.New("woff header truncated")
	}

	tables := make(map[string][]byte, numTables)
	for i := 0; i < int(numTables); i++ {
		tag := r.ReadString(4)
		offset := r.ReadUint32()
		compLength := r.ReadUint32()
		origLength := r.ReadUint32()
		_ = r.ReadUint32() // origChecksum
		if r.EOF() {
			return nil, fmt.Errorf("woff table directory truncated at entry %d", i)
		}
		if uint64(offset)+uint64(compLength) > uint64(len(data)) {
			return nil, fmt.Errorf("woff table %q out of bounds", tag)
		}

		raw := data[offset : offset+compLength]
		switch {
		case compLength < origLength:
			inflated, err := inflate(raw, origLength)
			if err != nil {
				return nil, fmt.Errorf("inflating woff table %q: %w", tag, err)
			}
			raw = inflated
		case compLength > origLength:
			return nil, fmt.Errorf("woff table %q: compressed length %d exceeds original length %d", tag, compLength, origLength)
		}
		tables[tag] = raw
	}
	return tables, nil
}

// inflate decompresses a zlib stream and verifies the advertised length.
func inflate(data []byte, origLength uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	if uint32(len(out)) != origLength {
		return nil, fmt.Errorf("inflated to %d bytes, expected %d", len(out), origLength)
	}
	return out, nil
}

// readTableDirectory reads the table directory of an unwrapped sfnt binary.
func readTableDirectory(data []byte) (map[string][]byte, error) {
	r := newBinaryReader(data)
	_ = r.ReadUint32() // sfnt version, checked by Parse
	numTables := r.ReadUint16()
	_ = r.ReadUint16() // searchRange
	_ = r.ReadUint16() // entrySelector
	_ = r.ReadUint16() // rangeShift
	if r.EOF() {
		return nil, errors.New("sfnt header truncated")
	}

	tables := make(map[string][]byte, numTables)
	for i := 0; i < int(numTables); i++ {
		tag := r.ReadString(4)
		_ = r.ReadUint32() // checksum
		offset := r.ReadUint32()
		length := r.ReadUint32()
		if r.EOF() {
			return nil, fmt.Errorf("sfnt table directory truncated at entry %d", i)
		}
		if uint64(offset)+uint64(length) > uint64(len(data)) {
			return nil, fmt.Errorf("sfnt table %q out of bounds", tag)
		}
		tables[tag] = data[offset : offset+length]
	}
	return tables, nil
}

// parseTables assembles the glyph table from the individual sfnt tables.
// maxp, post and cmap are required; everything else a full font carries
// (outlines, metrics, hinting) is irrelevant for score deobfuscation and
// ignored.
func parseTables(tables map[string][]byte) (*Table, error) {
	maxp, ok := tables["maxp"]
	if !ok {
		return nil, errors.New(`missing required table "maxp"`)
	}
	numGlyphs, err := parseMaxp(maxp)
	if err != nil {
		return nil, err
	}

	post, ok := tables["post"]
	if !ok {
		return nil, errors.New(`missing required table "post"`)
	}
	names, err := parsePost(post, numGlyphs)
	if err != nil {
		return nil, err
	}

	cmap, ok := tables["cmap"]
	if !ok {
		return nil, errors.New(`missing required table "cmap"`)
	}
	unicodes, err := parseCmap(cmap, numGlyphs)
	if err != nil {
		return nil, err
	}

	glyphs := make([]Glyph, numGlyphs)
	for i := range glyphs {
		glyphs[i] = Glyph{Index: i, Name: names[i], Unicodes: unicodes[i]}
	}
	return &Table{Name: parseName(tables["name"]), Glyphs: glyphs}, nil
}

// parseMaxp returns the glyph count from the maxp table.
func parseMaxp(b []byte) (int, error) {
	if len(b) < 6 {
		return 0, errors.New("maxp: table truncated")
	}
	r := newBinaryReader(b)
	version := r.ReadUint32()
	if version != 0x00005000 && version != 0x00010000 {
		return 0, fmt.Errorf("maxp: unsupported version 0x%08X", version)
	}
	return int(r.ReadUint16()), nil
}
