package woff

import "unicode/utf16"

// parseName extracts a human readable font name from the name table, best
// effort. The full font name (ID 4) wins over the family name (ID 1); a
// missing or unreadable table yields the empty string since the name is
// informational only.
func parseName(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	r := newBinaryReader(b)
	if format := r.ReadUint16(); format != 0 {
		return ""
	}
	count := r.ReadUint16()
	stringOffset := r.ReadUint16()
	if r.EOF() {
		return ""
	}

	var family string
	for i := 0; i < int(count); i++ {
		platformID := r.ReadUint16()
		encodingID := r.ReadUint16()
		r.ReadUint16() // languageID
		nameID := r.ReadUint16()
		length := r.ReadUint16()
		offset := r.ReadUint16()
		if r.EOF() {
			break
		}
		if nameID != 1 && nameID != 4 {
			continue
		}
		start := uint32(stringOffset) + uint32(offset)
		end := start + uint32(length)
		if end > uint32(len(b)) {
			continue
		}
		raw := b[start:end]

		var s string
		switch {
		case platformID == 0 || platformID == 3:
			s = decodeUTF16BE(raw)
		case platformID == 1 && encodingID == 0:
			// Mac Roman; the ASCII range is all these fonts use.
			runes := make([]rune, len(raw))
			for j, c := range raw {
				runes[j] = rune(c)
			}
			s = string(runes)
		default:
			continue
		}
		if s == "" {
			continue
		}
		if nameID == 4 {
			return s
		}
		family = s
	}
	return family
}

// decodeUTF16BE decodes big-endian UTF-16 bytes, ignoring a trailing odd
// byte.
func decodeUTF16BE(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(units))
}
