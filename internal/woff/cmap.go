package woff

import (
	"errors"
	"fmt"
)

// parseCmap builds the reverse character mapping: for every glyph index the
// list of codepoints that select it. The score fonts park their digits on
// private use area codepoints, so the whole mapping is enumerated up front
// instead of looking up individual characters.
func parseCmap(b []byte, numGlyphs int) ([][]uint32, error) {
	r := newBinaryReader(b)
	if version := r.ReadUint16(); version != 0 {
		return nil, fmt.Errorf("cmap: unsupported version %d", version)
	}
	numTables := r.ReadUint16()
	if r.EOF() {
		return nil, errors.New("cmap: table truncated")
	}

	type encodingRecord struct {
		platformID uint16
		encodingID uint16
		offset     uint32
	}
	records := make([]encodingRecord, 0, numTables)
	for i := 0; i < int(numTables); i++ {
		rec := encodingRecord{r.ReadUint16(), r.ReadUint16(), r.ReadUint32()}
		if r.EOF() {
			return nil, errors.New("cmap: encoding records truncated")
		}
		if rec.offset >= uint32(len(b)) {
			return nil, fmt.Errorf("cmap: subtable offset %d out of bounds", rec.offset)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, errors.New("cmap: no encoding records")
	}

	// Prefer full-repertoire Unicode subtables, then BMP, then the Windows
	// symbol encoding some obfuscation fonts ship with.
	rank := func(rec encodingRecord) int {
		switch {
		case rec.platformID == 3 && rec.encodingID == 10:
			return 0
		case rec.platformID == 3 && rec.encodingID == 1:
			return 1
		case rec.platformID == 0:
			return 2
		case rec.platformID == 3 && rec.encodingID == 0:
			return 3
		}
		return 4
	}
	best := records[0]
	for _, rec := range records[1:] {
		if rank(rec) < rank(best) {
			best = rec
		}
	}

	unicodes := make([][]uint32, numGlyphs)
	add := func(cp uint32, gid uint16) {
		if gid == 0 || int(gid) >= numGlyphs || cp == 0xFFFF {
			return
		}
		unicodes[gid] = append(unicodes[gid], cp)
	}

	sub := b[best.offset:]
	r = newBinaryReader(sub)
	format := r.ReadUint16()
	switch format {
	case 0:
		r.ReadUint16() // length
		r.ReadUint16() // language
		for cp := uint32(0); cp < 256; cp++ {
			add(cp, uint16(r.ReadUint8()))
		}
		if r.EOF() {
			return nil, errors.New("cmap: format 0 subtable truncated")
		}

	case 4:
		length := uint32(r.ReadUint16())
		if length < 16 || length > uint32(len(sub)) {
			return nil, errors.New("cmap: format 4 length out of bounds")
		}
		r = newBinaryReader(sub[:length])
		r.Seek(6) // format, length, language
		segCountX2 := r.ReadUint16()
		if segCountX2 == 0 || segCountX2%2 != 0 {
			return nil, fmt.Errorf("cmap: format 4 bad segment count %d", segCountX2)
		}
		segCount := int(segCountX2 / 2)
		r.ReadUint16() // searchRange
		r.ReadUint16() // entrySelector
		r.ReadUint16() // rangeShift
		endCodes, err := readUint16Slice(r, segCount)
		if err != nil {
			return nil, err
		}
		r.ReadUint16() // reservedPad
		startCodes, err := readUint16Slice(r, segCount)
		if err != nil {
			return nil, err
		}
		deltas, err := readUint16Slice(r, segCount)
		if err != nil {
			return nil, err
		}
		rangeOffsets, err := readUint16Slice(r, segCount)
		if err != nil {
			return nil, err
		}
		// glyphIdArray fills the rest of the subtable.
		glyphIDs, err := readUint16Slice(r, int(r.Len()/2))
		if err != nil {
			return nil, err
		}
		for i := 0; i < segCount; i++ {
			start, end := startCodes[i], endCodes[i]
			if end < start {
				return nil, fmt.Errorf("cmap: format 4 segment %d out of order", i)
			}
			for c := uint32(start); c <= uint32(end); c++ {
				var gid uint16
				if rangeOffsets[i] == 0 {
					gid = uint16(c) + deltas[i]
				} else {
					idx := int(rangeOffsets[i])/2 + int(c-uint32(start)) - (segCount - i)
					if idx < 0 || idx >= len(glyphIDs) {
						continue
					}
					gid = glyphIDs[idx]
					if gid != 0 {
						gid += deltas[i]
					}
				}
				add(c, gid)
			}
		}

	case 6:
		r.ReadUint16() // length
		r.ReadUint16() // language
		first := r.ReadUint16()
		count := r.ReadUint16()
		if r.EOF() {
			return nil, errors.New("cmap: format 6 subtable truncated")
		}
		for i := 0; i < int(count); i++ {
			add(uint32(first)+uint32(i), r.ReadUint16())
		}
		if r.EOF() {
			return nil, errors.New("cmap: format 6 subtable truncated")
		}

	case 12:
		r.ReadUint16() // reserved
		r.ReadUint32() // length
		r.ReadUint32() // language
		numGroups := r.ReadUint32()
		if r.EOF() {
			return nil, errors.New("cmap: format 12 subtable truncated")
		}
		if numGroups > uint32(len(sub))/12 {
			return nil, fmt.Errorf("cmap: format 12 group count %d out of bounds", numGroups)
		}
		for g := uint32(0); g < numGroups; g++ {
			start := r.ReadUint32()
			end := r.ReadUint32()
			startGlyph := r.ReadUint32()
			if r.EOF() {
				return nil, errors.New("cmap: format 12 subtable truncated")
			}
			if end < start {
				return nil, fmt.Errorf("cmap: format 12 group %d out of order", g)
			}
			// Bounding end keeps the inclusive loop below from wrapping at
			// the uint32 maximum.
			if end > 0x10FFFF {
				return nil, fmt.Errorf("cmap: format 12 group %d ends at 0x%08X past the Unicode range", g, end)
			}
			if end-start >= 0x10000 {
				return nil, fmt.Errorf("cmap: format 12 group %d spans %d codepoints", g, end-start+1)
			}
			for c := start; c <= end; c++ {
				gid := startGlyph + (c - start)
				if gid > 0xFFFF {
					continue
				}
				add(c, uint16(gid))
			}
		}

	default:
		return nil, fmt.Errorf("cmap: unsupported subtable format %d", format)
	}
	return unicodes, nil
}

// readUint16Slice reads n consecutive big-endian uint16 values.
func readUint16Slice(r *binaryReader, n int) ([]uint16, error) {
	vals := make([]uint16, n)
	for i := range vals {
		vals[i] = r.ReadUint16()
	}
	if r.EOF() {
		return nil, errors.New("cmap: subtable truncated")
	}
	return vals, nil
}
