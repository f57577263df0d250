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

package bytes

import (
	// standard libraries.
	"encoding/binary"
)

// Writer appends little-endian fields to a growing buffer. It mirrors Reader
// method for method.
type Writer struct {
	buf []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Uint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) Int8(v int8) {
	w.Uint8(uint8(v))
}

func (w *Writer) Uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) Int16(v int16) {
	w.Uint16(uint16(v))
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

// Bitfield32 packs values least significant bits first and appends the word.
func (w *Writer) Bitfield32(values []uint32, widths ...uint) error {
	v, err := PackBitfield32(values, widths...)
	if err != nil {
		return err
	}
	w.Uint32(v)
	return nil
}

func (w *Writer) Write(p []byte) {
	w.buf = append(w.buf, p...)
}

func (w *Writer) String(s string) {
	w.buf = append(w.buf, s...)
}

// Zero appends n zero bytes.
func (w *Writer) Zero(n int) {
	for ; n > 0; n-- {
		w.buf = append(w.buf, 0)
	}
}

// PutUint32At overwrites four bytes at off, which must already be written.
func (w *Writer) PutUint32At(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[off:], v)
}
