// Copyright 2023 Linkall Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bytes provides the little-endian cursor and appender every format
// codec in this module is written against.
package bytes

import (
	// standard libraries.
	"encoding/binary"

	// third-party libraries.
	"github.com/pkg/errors"
)

// ErrOutOfBounds is returned whenever a read asks for more bytes than remain.
var ErrOutOfBounds = errors.New("mc3ds.bytes: out of bounds")

// Reader is a cursor over a byte slice. All fields are tightly packed and
// little-endian; a failed read leaves the cursor where it was.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Offset() int {
	return r.off
}

func (r *Reader) Len() int {
	return len(r.buf)
}

func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// Seek moves the cursor to an absolute offset. Seeking to Len() is allowed.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.buf) {
		return errors.Wrapf(ErrOutOfBounds, "seek to %#x, buffer is %#x bytes", off, len(r.buf))
	}
	r.off = off
	return nil
}

func (r *Reader) Skip(n int) error {
	_, err := r.next(n)
	return err
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, errors.Wrapf(ErrOutOfBounds, "read %d bytes at offset %#x, %d left", n, r.off, r.Remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) Uint8() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

func (r *Reader) Uint16() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

func (r *Reader) Uint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Bitfield32 reads one uint32 and splits it into fields, least significant
// bits first.
func (r *Reader) Bitfield32(widths ...uint) ([]uint32, error) {
	if err := checkWidths(widths); err != nil {
		return nil, err
	}
	v, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	return UnpackBitfield32(v, widths...), nil
}

// Bytes returns the next n bytes without copying. The result aliases the
// underlying buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	return r.next(n)
}

// Clone returns a copy of the next n bytes.
func (r *Reader) Clone(n int) ([]byte, error) {
	b, err := r.next(n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// ReadFull fills p from the cursor.
func (r *Reader) ReadFull(p []byte) error {
	b, err := r.next(len(p))
	if err != nil {
		return err
	}
	copy(p, b)
	return nil
}

// String reads a fixed-length string of n bytes. No terminator is implied or
// stripped.
func (r *Reader) String(n int) (string, error) {
	b, err := r.next(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Rest returns everything after the cursor and moves the cursor to the end.
func (r *Reader) Rest() []byte {
	b := r.buf[r.off:]
	r.off = len(r.buf)
	return b
}
