package bin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Simple binary parsing/serialization library.
//
// All integers are fixed-width little endian. Byte strings are prefixed with
// their exact length as a uint32. Both Decoder and Encoder remember the first
// error they hit; later calls are no-ops and Err reports it.

var (
	// ErrShortRead means the input ended before a value was complete.
	ErrShortRead = errors.New("bin: short read")
	// ErrCorrupt means a count in the input cannot fit in the remaining data.
	ErrCorrupt = errors.New("bin: corrupt data")
	// ErrTooLarge means a byte string is too long for a 32-bit length prefix.
	ErrTooLarge = errors.New("bin: byte string exceeds 32-bit length")
)

// MaxLength is the longest byte string that can be encoded.
const MaxLength = math.MaxUint32

// Decoder streams binary data from a byte buffer.
type Decoder struct {
	buf []byte
	err error
}

// NewDecoder creates a decoder that parses data from buffer b.
//
// Retains b, which the caller should not modify afterward.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// RemainingBytes gives the number of bytes remaining in the buffer.
func (r Decoder) RemainingBytes() int {
	return len(r.buf)
}

// Err returns the first error encountered while decoding.
func (r Decoder) Err() error {
	return r.err
}

func (r *Decoder) fail(err error) {
	if r.err == nil {
		r.err = err
	}
	r.buf = nil
}

// Bytes is a primitive decoder that reads a fixed number of bytes.
//
// The result aliases the decoder's buffer.
func (r *Decoder) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > len(r.buf) {
		r.fail(fmt.Errorf("%w: need %d bytes, %d remain", ErrShortRead, n, len(r.buf)))
		return nil
	}
	d := r.buf[:n]
	r.buf = r.buf[n:]
	return d
}

// Uint64 decodes a uint64 (in little endian format).
func (r *Decoder) Uint64() uint64 {
	b := r.Bytes(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Uint32 decodes a uint32 (in little endian format).
func (r *Decoder) Uint32() uint32 {
	b := r.Bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Array32 decodes a byte string prefixed with a 32-bit length.
func (r *Decoder) Array32() []byte {
	length := r.Uint32()
	if r.err != nil {
		return nil
	}
	if uint64(length) > uint64(len(r.buf)) {
		r.fail(fmt.Errorf("%w: length %d, %d bytes remain", ErrShortRead, length, len(r.buf)))
		return nil
	}
	return r.Bytes(int(length))
}

// String32 is Array32 returning a copy as a string.
func (r *Decoder) String32() string {
	return string(r.Array32())
}

// Count decodes a uint32 element count, where every element takes at least
// minSize bytes. A count that cannot fit in the remaining bytes is reported
// as ErrCorrupt (and decodes as 0), so callers can size allocations by it.
func (r *Decoder) Count(minSize int) uint32 {
	n := r.Uint32()
	if r.err != nil {
		return 0
	}
	if uint64(n)*uint64(minSize) > uint64(len(r.buf)) {
		r.fail(fmt.Errorf("%w: %d elements of at least %d bytes, %d bytes remain",
			ErrCorrupt, n, minSize, len(r.buf)))
		return 0
	}
	return n
}

// Encoder encodes values to an output stream.
type Encoder struct {
	w io.Writer
	// total bytes written since initialization
	bytesWritten int
	err          error
	scratch      [8]byte
}

// NewEncoder creates an encoder that writes data to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// BytesWritten returns the number of bytes written to the encoder since this
// encoder was created.
func (w Encoder) BytesWritten() int {
	return w.bytesWritten
}

// Err returns the first write or encoding error.
func (w Encoder) Err() error {
	return w.err
}

func (w *Encoder) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Bytes is a primitive encoder that copies bytes.
func (w *Encoder) Bytes(b []byte) {
	for len(b) > 0 && w.err == nil {
		n, err := w.w.Write(b)
		w.bytesWritten += n
		b = b[n:]
		if err != nil {
			w.fail(err)
		} else if n == 0 {
			w.fail(io.ErrShortWrite)
		}
	}
}

func (w *Encoder) str(s string) {
	for len(s) > 0 && w.err == nil {
		n, err := io.WriteString(w.w, s)
		w.bytesWritten += n
		s = s[n:]
		if err != nil {
			w.fail(err)
		} else if n == 0 {
			w.fail(io.ErrShortWrite)
		}
	}
}

// Uint64 encodes a uint64 (in little endian format).
func (w *Encoder) Uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.scratch[:8], v)
	w.Bytes(w.scratch[:8])
}

// Uint32 encodes a uint32 (in little endian format).
func (w *Encoder) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], v)
	w.Bytes(w.scratch[:4])
}

// Count encodes an element count, which must fit in a uint32.
func (w *Encoder) Count(n int) {
	if uint64(n) > MaxLength {
		w.fail(fmt.Errorf("%w: %d elements", ErrTooLarge, n))
		return
	}
	w.Uint32(uint32(n))
}

// Array32 encodes a byte string prefixed with a 32-bit length.
func (w *Encoder) Array32(b []byte) {
	if uint64(len(b)) > MaxLength {
		w.fail(fmt.Errorf("%w: %d bytes", ErrTooLarge, len(b)))
		return
	}
	w.Uint32(uint32(len(b)))
	w.Bytes(b)
}

// String32 is Array32 for a string, without copying it.
func (w *Encoder) String32(s string) {
	if uint64(len(s)) > MaxLength {
		w.fail(fmt.Errorf("%w: %d bytes", ErrTooLarge, len(s)))
		return
	}
	w.Uint32(uint32(len(s)))
	w.str(s)
}
