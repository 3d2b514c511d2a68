// Package storage provides the low-level byte access shared by every ADFS
// parsing stage: little-endian integer extraction and the "safe string"
// conversion used for RISC OS names and titles.
//
// ADFS images are small (at most 1.6 MB for the adE-big format), so the
// whole image is slurped into memory once and every later stage addresses
// it by absolute offset rather than re-reading from disk.
package storage

import (
	"io"

	"github.com/pkg/errors"
)

// Reader wraps a fully-loaded byte image and exposes the little-endian,
// offset-addressed reads the ADFS format needs.
type Reader struct {
	buf []byte
}

// NewReader reads r to completion and returns a Reader over the result.
func NewReader(r io.Reader) (*Reader, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading image")
	}
	return &Reader{buf: buf}, nil
}

// NewReaderFromBytes wraps an already-loaded byte slice. Useful for tests
// and for callers that already hold the image in memory.
func NewReaderFromBytes(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the total number of bytes available.
func (r *Reader) Len() int {
	return len(r.buf)
}

// Bytes returns the entire underlying buffer. Callers must not mutate it.
func (r *Reader) Bytes() []byte {
	return r.buf
}

// bounds reports whether [start, end) is a valid range within the buffer.
func (r *Reader) bounds(start, end int) bool {
	return start >= 0 && end >= start && end <= len(r.buf)
}

// ByteAt returns the byte at offset.
func (r *Reader) ByteAt(offset int) (byte, error) {
	if !r.bounds(offset, offset+1) {
		return 0, errors.Errorf("offset %#x out of range (length %#x)", offset, len(r.buf))
	}
	return r.buf[offset], nil
}

// Uint16At reads a little-endian 16-bit value at offset.
func (r *Reader) Uint16At(offset int) (uint16, error) {
	b, err := r.SliceAt(offset, offset+2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// Uint24At reads a little-endian 24-bit value at offset, returned widened
// to uint32.
func (r *Reader) Uint24At(offset int) (uint32, error) {
	b, err := r.SliceAt(offset, offset+3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// Uint32At reads a little-endian 32-bit value at offset.
func (r *Reader) Uint32At(offset int) (uint32, error) {
	b, err := r.SliceAt(offset, offset+4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// SliceAt returns a sub-slice [start, end) of the buffer. The returned
// slice aliases the underlying buffer and must be treated as read-only.
func (r *Reader) SliceAt(start, end int) ([]byte, error) {
	if !r.bounds(start, end) {
		return nil, errors.Errorf("range [%#x, %#x) out of bounds (length %#x)", start, end, len(r.buf))
	}
	return r.buf[start:end], nil
}

// SafeString strips the high bit from each byte of the length-byte field
// at offset and stops at the first control byte (<= 0x20), the RISC OS
// convention for names and titles stored with parity/shift bits set in
// the top bit.
func (r *Reader) SafeString(offset, length int) string {
	b, err := r.SliceAt(offset, offset+length)
	if err != nil {
		return ""
	}
	return SafeBytes(b)
}

// SafeBytes applies the same conversion as SafeString directly to a byte
// slice, for callers that already hold the raw field.
func SafeBytes(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c <= 0x20 {
			break
		}
		if c >= 0x80 {
			c ^= 0x80
			if c <= 0x20 {
				continue
			}
		}
		out = append(out, c)
	}
	return string(out)
}
