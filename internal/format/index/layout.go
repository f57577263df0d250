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

package index

import (
	// this project.
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

// layout is one revision of the entry record.
type layout struct {
	revision primitive.Revision
	size     uint32
	decode   func(r *bytes.Reader) (Entry, error)
	encode   func(w *bytes.Writer, e *Entry) error
}

// Trial order when resolving an index revision.
var layouts = []layout{
	{revision: primitive.RevisionPacked, size: 16, decode: decodePacked, encode: encodePacked},
	{revision: primitive.RevisionLegacy, size: 16, decode: decodeLegacy, encode: encodeLegacy},
}

func resolve(entrySize uint32, hint primitive.Revision) (layout, bool) {
	for _, l := range layouts {
		if hint != primitive.RevisionAuto && hint != l.revision {
			continue
		}
		if l.size == entrySize {
			return l, true
		}
	}
	return layout{}, false
}

func layoutOf(rev primitive.Revision) (layout, bool) {
	for _, l := range layouts {
		if l.revision == rev {
			return l, true
		}
	}
	return layout{}, false
}

// EntrySize returns the record size of rev, or 0 for an unknown revision.
func EntrySize(rev primitive.Revision) uint32 {
	l, _ := layoutOf(rev)
	return l.size
}

func readUint16s(r *bytes.Reader, dst ...*uint16) error {
	for _, p := range dst {
		v, err := r.Uint16()
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

func decodePacked(r *bytes.Reader) (Entry, error) {
	var e Entry
	var err error
	if e.Position, err = primitive.ReadPosition(r); err != nil {
		return e, err
	}
	if err = readUint16s(r, &e.Slot, &e.Subfile, &e.BlocksPerRow, &e.Constant1); err != nil {
		return e, err
	}
	if e.Parameters, err = primitive.ReadParameters(r); err != nil {
		return e, err
	}
	err = readUint16s(r, &e.Constant2)
	return e, err
}

func encodePacked(w *bytes.Writer, e *Entry) error {
	if err := e.Position.WriteTo(w); err != nil {
		return err
	}
	w.Uint16(e.Slot)
	w.Uint16(e.Subfile)
	w.Uint16(e.BlocksPerRow)
	w.Uint16(e.Constant1)
	e.Parameters.WriteTo(w)
	w.Uint16(e.Constant2)
	return nil
}

func decodeLegacy(r *bytes.Reader) (Entry, error) {
	var e Entry
	err := readUint16s(r, &e.Unknown0, &e.Unknown1, &e.Slot, &e.Subfile,
		&e.BlocksPerRow, &e.Constant1, &e.Unknown4, &e.Constant2)
	return e, err
}

func encodeLegacy(w *bytes.Writer, e *Entry) error {
	for _, v := range []uint16{e.Unknown0, e.Unknown1, e.Slot, e.Subfile,
		e.BlocksPerRow, e.Constant1, e.Unknown4, e.Constant2} {
		w.Uint16(v)
	}
	return nil
}
