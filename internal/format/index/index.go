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

// Package index reads and writes the CDB index file, which maps chunk
// positions to the slot and subfile holding their data.
package index

import (
	// standard libraries.
	"fmt"

	// third-party libraries.
	"github.com/pkg/errors"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

const (
	HeaderSize  = 6 * 4
	PointerSize = 4

	offsetEntrySize = 12
)

// Values every known index stores in its constant fields.
const (
	ExpectedConstant0    uint32 = 0x2
	ExpectedBlocksPerRow uint16 = 0x20FF
	ExpectedConstant1    uint16 = 0xA
	ExpectedConstant2    uint16 = 0x8000
)

// Entry locates one chunk. Position and Parameters are set by the packed
// revision; Unknown0, Unknown1 and Unknown4 take their place in the legacy one.
type Entry struct {
	Position   primitive.Position
	Parameters primitive.Parameters

	Unknown0 uint16
	Unknown1 uint16
	Unknown4 uint16

	Slot    uint16
	Subfile uint16

	BlocksPerRow uint16
	Constant1    uint16
	Constant2    uint16
}

// NewEntry returns an entry with the constant fields filled in.
func NewEntry(slot, subfile uint16) Entry {
	return Entry{
		Slot:         slot,
		Subfile:      subfile,
		BlocksPerRow: ExpectedBlocksPerRow,
		Constant1:    ExpectedConstant1,
		Constant2:    ExpectedConstant2,
	}
}

type Index struct {
	Revision primitive.Revision

	Constant0 uint32
	Unknown1  uint32
	Unknown2  uint32

	Pointers []uint32
	Entries  []Entry
	// Trailer holds bytes after the entry table.
	Trailer []byte
}

// Lookup returns the entry stored for pos. Only packed entries carry a
// position.
func (ix *Index) Lookup(pos primitive.Position) (Entry, bool) {
	if ix.Revision != primitive.RevisionPacked {
		return Entry{}, false
	}
	for _, e := range ix.Entries {
		if e.Position == pos {
			return e, true
		}
	}
	return Entry{}, false
}

// Locate returns the entries pointing at slot, keyed by subfile.
func (ix *Index) Locate(slot uint16) map[uint16]Entry {
	m := make(map[uint16]Entry)
	for _, e := range ix.Entries {
		if e.Slot == slot {
			m[e.Subfile] = e
		}
	}
	return m
}

// Decode parses an index. The entry layout is resolved from entry_size, trying
// the packed layout before the legacy one; hint restricts the candidates.
func Decode(data []byte, hint primitive.Revision) (*Index, []formaterr.Warning, error) {
	if len(data) < HeaderSize {
		return nil, nil, formaterr.Locate(errors.Wrapf(formaterr.ErrTruncatedArchive,
			"%d bytes cannot hold an index header", len(data)), formaterr.NoSubfile, 0)
	}
	r := bytes.NewReader(data)
	var hdr [6]uint32
	for i := range hdr {
		hdr[i], _ = r.Uint32()
	}
	entryCount, entrySize, pointerCount := hdr[1], hdr[3], hdr[4]

	l, ok := resolve(entrySize, hint)
	if !ok {
		return nil, nil, formaterr.Locate(&formaterr.RevisionError{EntrySize: entrySize},
			formaterr.NoSubfile, offsetEntrySize)
	}

	ix := &Index{
		Revision:  l.revision,
		Constant0: hdr[0],
		Unknown1:  hdr[2],
		Unknown2:  hdr[5],
	}
	var warnings []formaterr.Warning
	if ix.Constant0 != ExpectedConstant0 {
		warnings = append(warnings, formaterr.Warning{
			Kind:    formaterr.ErrUnexpectedConstant,
			Subfile: formaterr.NoSubfile,
			Detail:  constantDetail("constant0", ix.Constant0, ExpectedConstant0),
		})
	}

	if need := int64(pointerCount) * PointerSize; need > int64(r.Remaining()) {
		return nil, nil, formaterr.Locate(errors.Wrapf(formaterr.ErrTruncatedArchive,
			"%d pointers need %d bytes, have %d", pointerCount, need, r.Remaining()),
			formaterr.NoSubfile, int64(r.Offset()))
	}
	ix.Pointers = make([]uint32, pointerCount)
	for i := range ix.Pointers {
		ix.Pointers[i], _ = r.Uint32()
	}

	if need := int64(entryCount) * int64(entrySize); need > int64(r.Remaining()) {
		return nil, nil, formaterr.Locate(errors.Wrapf(formaterr.ErrTruncatedArchive,
			"%d entries of %d bytes need %d bytes, have %d", entryCount, entrySize, need, r.Remaining()),
			formaterr.NoSubfile, int64(r.Offset()))
	}
	ix.Entries = make([]Entry, entryCount)
	for i := range ix.Entries {
		off := int64(r.Offset())
		raw, _ := r.Bytes(int(entrySize))
		e, err := l.decode(bytes.NewReader(raw))
		if err != nil {
			return nil, nil, formaterr.Locate(err, formaterr.NoSubfile, off)
		}
		ix.Entries[i] = e
		warnings = append(warnings, checkConstants(&e, off)...)
	}

	if rest := r.Rest(); len(rest) > 0 {
		ix.Trailer = append([]byte(nil), rest...)
	}
	return ix, warnings, nil
}

// Encode writes ix. Counts and entry size come from the model.
func Encode(ix *Index) ([]byte, error) {
	rev := ix.Revision
	if rev == primitive.RevisionAuto {
		rev = primitive.RevisionPacked
	}
	l, ok := layoutOf(rev)
	if !ok {
		return nil, errors.Wrapf(formaterr.ErrInvalidModel, "unknown index revision %s", rev)
	}

	w := bytes.NewWriter(HeaderSize + len(ix.Pointers)*PointerSize +
		len(ix.Entries)*int(l.size) + len(ix.Trailer))
	w.Uint32(ix.Constant0)
	w.Uint32(uint32(len(ix.Entries)))
	w.Uint32(ix.Unknown1)
	w.Uint32(l.size)
	w.Uint32(uint32(len(ix.Pointers)))
	w.Uint32(ix.Unknown2)
	for _, p := range ix.Pointers {
		w.Uint32(p)
	}
	for i := range ix.Entries {
		if err := l.encode(w, &ix.Entries[i]); err != nil {
			return nil, errors.Wrapf(formaterr.ErrInvalidModel, "entry %d: %v", i, err)
		}
	}
	w.Write(ix.Trailer)
	return w.Bytes(), nil
}

func checkConstants(e *Entry, off int64) []formaterr.Warning {
	var ws []formaterr.Warning
	check := func(name string, got, want uint16) {
		if got != want {
			ws = append(ws, formaterr.Warning{
				Kind:    formaterr.ErrUnexpectedConstant,
				Subfile: formaterr.NoSubfile,
				Offset:  off,
				Detail:  constantDetail(name, uint32(got), uint32(want)),
			})
		}
	}
	check("blocks per row", e.BlocksPerRow, ExpectedBlocksPerRow)
	check("constant1", e.Constant1, ExpectedConstant1)
	check("constant2", e.Constant2, ExpectedConstant2)
	return ws
}

func constantDetail(name string, got, want uint32) string {
	return fmt.Sprintf("%s is %#x, expected %#x", name, got, want)
}
