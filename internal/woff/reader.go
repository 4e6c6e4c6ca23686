package woff

import "encoding/binary"

// binaryReader reads big-endian values from a byte slice. Out-of-bounds reads
// set the eof flag and return zero values, so callers can run a read sequence
// and check EOF once at the end.
type binaryReader struct {
	buf []byte
	pos uint32
	eof bool
}

func newBinaryReader(buf []byte) *binaryReader {
	return &binaryReader{buf: buf}
}

func (r *binaryReader) ReadBytes(n uint32) []byte {
	if r.eof || uint32(len(r.buf))-r.pos < n {
		r.eof = true
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *binaryReader) ReadString(n uint32) string {
	return string(r.ReadBytes(n))
}

func (r *binaryReader) ReadUint8() uint8 {
	b := r.ReadBytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *binaryReader) ReadUint16() uint16 {
	b := r.ReadBytes(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *binaryReader) ReadUint32() uint32 {
	b := r.ReadBytes(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Seek moves the read position to an absolute offset and clears EOF.
func (r *binaryReader) Seek(pos uint32) {
	if pos > uint32(len(r.buf)) {
		r.eof = true
		return
	}
	r.pos = pos
	r.eof = false
}

// Len returns the number of unread bytes.
func (r *binaryReader) Len() uint32 {
	return uint32(len(r.buf)) - r.pos
}

// EOF reports whether any read ran past the end of the buffer.
func (r *binaryReader) EOF() bool {
	return r.eof
}
