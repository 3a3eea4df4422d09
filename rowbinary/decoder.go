// Package rowbinary reads fields encoded in the server's native binary row
// format: fixed-width scalars are little-endian, variable-length text carries
// a LEB128 length prefix, and fixed-width text is raw bytes whose length is
// known from the schema.
package rowbinary

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxUVarintLen = binary.MaxVarintLen64

// Source is the unread view of the pending chunk buffer. Reading from it
// tentatively advances the read position; the cursor rolls the position back
// whenever a decode attempt does not succeed, so a Decoder never has to undo
// its own reads.
type Source interface {
	io.Reader
	io.ByteReader
}

// Decoder decodes the fields of exactly one row from a Source. It is bound to
// a single decode attempt: variable-length fields are staged through the
// scratch buffer handed to New, and the same byte content with the same
// scratch capacity always yields the same outcome.
//
// Field readers return nil on success, ErrNotEnoughData when the source is
// exhausted mid-field, a TooSmallBufferError when the scratch buffer cannot
// hold the field, and any other error for malformed input.
type Decoder struct {
	src     Source
	scratch []byte
	used    int
}

// New returns a Decoder reading from src, staging variable-length fields
// through scratch. The scratch buffer is owned by the caller and reused
// across attempts; its capacity never needs to shrink.
func New(src Source, scratch []byte) *Decoder {
	return &Decoder{src: src, scratch: scratch}
}

// UVarint reads a LEB128-encoded unsigned integer.
func (d *Decoder) UVarint() (uint64, error) {
	var x uint64
	var s uint
	for i := 0; i < maxUVarintLen; i++ {
		c, err := d.src.ReadByte()
		if err != nil {
			return 0, ErrNotEnoughData
		}
		if c < 0x80 {
			if i == maxUVarintLen-1 && c > 1 {
				return 0, errors.New("rowstream: uvarint overflows 64 bits")
			}
			return x | uint64(c)<<s, nil
		}
		x |= uint64(c&0x7f) << s
		s += 7
	}
	return 0, errors.New("rowstream: uvarint overflows 64 bits")
}

func (d *Decoder) Bool() (bool, error) {
	c, err := d.UInt8()
	return c != 0, err
}

func (d *Decoder) UInt8() (uint8, error) {
	c, err := d.src.ReadByte()
	if err != nil {
		return 0, ErrNotEnoughData
	}
	return c, nil
}

func (d *Decoder) UInt16() (uint16, error) {
	var b [2]byte
	if err := d.readFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (d *Decoder) UInt32() (uint32, error) {
	var b [4]byte
	if err := d.readFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (d *Decoder) UInt64() (uint64, error) {
	var b [8]byte
	if err := d.readFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (d *Decoder) Int8() (int8, error) {
	c, err := d.UInt8()
	return int8(c), err
}

func (d *Decoder) Int16() (int16, error) {
	v, err := d.UInt16()
	return int16(v), err
}

func (d *Decoder) Int32() (int32, error) {
	v, err := d.UInt32()
	return int32(v), err
}

func (d *Decoder) Int64() (int64, error) {
	v, err := d.UInt64()
	return int64(v), err
}

func (d *Decoder) Float32() (float32, error) {
	v, err := d.UInt32()
	return math.Float32frombits(v), err
}

func (d *Decoder) Float64() (float64, error) {
	v, err := d.UInt64()
	return math.Float64frombits(v), err
}

// String reads a variable-length text field: a LEB128 length prefix followed
// by that many raw bytes.
func (d *Decoder) String() (string, error) {
	b, err := d.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Bytes reads a length-prefixed byte field. The returned slice aliases the
// scratch buffer and is only valid until the next decode attempt.
func (d *Decoder) Bytes() ([]byte, error) {
	n, err := d.UVarint()
	if err != nil {
		return nil, err
	}
	return d.raw(int(n))
}

// FixedString reads a fixed-width text field: exactly n raw bytes with no
// length prefix, n being known from the schema rather than the buffer
// content.
func (d *Decoder) FixedString(n int) (string, error) {
	b, err := d.raw(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ArrayLen reads the element count prefix of an array field.
func (d *Decoder) ArrayLen() (int, error) {
	n, err := d.UVarint()
	return int(n), err
}

// Null reads the null flag preceding a nullable field, reporting true when
// the value is NULL and no value bytes follow.
func (d *Decoder) Null() (bool, error) {
	c, err := d.UInt8()
	return c != 0, err
}

// raw stages n source bytes through the scratch buffer. The scratch capacity
// shortfall is computed before any source byte is consumed, so repeated
// growth retries for the same field never need additional input.
func (d *Decoder) raw(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("rowstream: invalid field length %d", n)
	}
	if free := len(d.scratch) - d.used; n > free {
		return nil, TooSmallBufferError{Need: n - free}
	}
	b := d.scratch[d.used : d.used+n]
	if err := d.readFull(b); err != nil {
		return nil, err
	}
	d.used += n
	return b, nil
}

func (d *Decoder) readFull(p []byte) error {
	if _, err := io.ReadFull(d.src, p); err != nil {
		// Short reads only ever mean the next chunk has not arrived yet.
		return ErrNotEnoughData
	}
	return nil
}
