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

// Package section reads and writes the chunk header that precedes a chunk's
// compressed sections, and maps section entries to byte ranges.
package section

import (
	// standard libraries.
	"fmt"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

const (
	Count     = 6
	EntrySize = 4 * 4

	// RegionOffset is where the chunk region starts, counted from the magic.
	// Section positions are stored relative to the magic, so the offset inside
	// the region is position - RegionOffset.
	RegionOffset = 0xC
	// DataOffset is the first payload byte, counted from the magic, in both
	// revisions.
	DataOffset = 0x70
)

// Entry describes one section. An empty slot stores -1, -1, 0, 0.
type Entry struct {
	Index            int32
	Position         int32
	CompressedSize   int32
	DecompressedSize int32
}

// EmptyEntry is the sentinel value of an unused slot.
var EmptyEntry = Entry{Index: -1, Position: -1}

func (e Entry) sentinels() int {
	n := 0
	if e.Index == -1 {
		n++
	}
	if e.Position == -1 {
		n++
	}
	if e.CompressedSize == 0 {
		n++
	}
	if e.DecompressedSize == 0 {
		n++
	}
	return n
}

// Empty reports whether every field holds its sentinel.
func (e Entry) Empty() bool {
	return e.sentinels() == 4
}

// Consistent is false when some, but not all, fields hold their sentinel.
func (e Entry) Consistent() bool {
	n := e.sentinels()
	return n == 0 || n == 4
}

func (e Entry) String() string {
	return fmt.Sprintf("index=%d position=%#x compressed=%d decompressed=%d",
		e.Index, e.Position, e.CompressedSize, e.DecompressedSize)
}

// Range is a byte range inside the chunk region.
type Range struct {
	Offset int
	Length int
}

// Start returns the range start counted from the magic.
func (r Range) Start() int {
	return r.Offset + RegionOffset
}

func (r Range) End() int {
	return r.Start() + r.Length
}

// Resolve maps a populated entry to its compressed bytes. Empty and
// inconsistent entries do not resolve.
func Resolve(e Entry) (Range, bool) {
	if e.sentinels() != 0 || e.Position < RegionOffset || e.CompressedSize < 0 {
		return Range{}, false
	}
	return Range{Offset: int(e.Position) - RegionOffset, Length: int(e.CompressedSize)}, true
}

// Header is the chunk header. Legacy headers carry two unknown shorts; packed
// headers carry the chunk position, its parameters and three unknown shorts.
type Header struct {
	Legacy [2]int16

	Position   primitive.Position
	Parameters primitive.Parameters
	Unknown    [3]int16

	Entries [Count]Entry
}

// Size returns the encoded header size of rev.
func Size(rev primitive.Revision) int {
	if rev == primitive.RevisionLegacy {
		return 2*2 + Count*EntrySize
	}
	return 4 + 2 + 3*2 + Count*EntrySize
}

// EntryOffset returns the offset of entry slot from the start of the header.
func EntryOffset(rev primitive.Revision, slot int) int {
	return Size(rev) - (Count-slot)*EntrySize
}

// Decode reads a header for rev. Entries with a partial sentinel are kept as
// read and reported as warnings at their offset in r.
func Decode(r *bytes.Reader, rev primitive.Revision) (Header, []formaterr.Warning, error) {
	var h Header
	var err error
	if rev == primitive.RevisionLegacy {
		for i := range h.Legacy {
			if h.Legacy[i], err = r.Int16(); err != nil {
				return h, nil, err
			}
		}
	} else {
		if h.Position, err = primitive.ReadPosition(r); err != nil {
			return h, nil, err
		}
		if h.Parameters, err = primitive.ReadParameters(r); err != nil {
			return h, nil, err
		}
		for i := range h.Unknown {
			if h.Unknown[i], err = r.Int16(); err != nil {
				return h, nil, err
			}
		}
	}

	var warnings []formaterr.Warning
	for i := range h.Entries {
		off := int64(r.Offset())
		e := &h.Entries[i]
		for _, p := range []*int32{&e.Index, &e.Position, &e.CompressedSize, &e.DecompressedSize} {
			if *p, err = r.Int32(); err != nil {
				return h, nil, err
			}
		}
		if !e.Consistent() {
			warnings = append(warnings, formaterr.Warning{
				Kind:    formaterr.ErrInconsistentSectionSentinel,
				Subfile: formaterr.NoSubfile,
				Offset:  off,
				Detail:  fmt.Sprintf("slot %d: %s", i, e),
			})
		}
	}
	return h, warnings, nil
}

func (h *Header) Encode(w *bytes.Writer, rev primitive.Revision) error {
	if rev == primitive.RevisionLegacy {
		for _, v := range h.Legacy {
			w.Int16(v)
		}
	} else {
		if err := h.Position.WriteTo(w); err != nil {
			return err
		}
		h.Parameters.WriteTo(w)
		for _, v := range h.Unknown {
			w.Int16(v)
		}
	}
	for _, e := range h.Entries {
		w.Int32(e.Index)
		w.Int32(e.Position)
		w.Int32(e.CompressedSize)
		w.Int32(e.DecompressedSize)
	}
	return nil
}

// Layout assigns positions to the populated entries of h so that their
// payloads follow the header back to back in slot order. Entries that are not
// consistent are left untouched. It returns the end of the last payload,
// counted from the magic.
func (h *Header) Layout() int {
	pos := DataOffset
	for i := range h.Entries {
		e := &h.Entries[i]
		if e.sentinels() != 0 {
			continue
		}
		e.Position = int32(pos)
		pos += int(e.CompressedSize)
	}
	return pos
}
