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

// Package vdb reads and writes the record header that opens every VDB subfile.
// The header follows the magic directly; its first 8 bytes share the slot of
// the legacy subfile header.
package vdb

import (
	// standard libraries.
	"math"

	// third-party libraries.
	"github.com/pkg/errors"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

const fixedSize = 1 + 7 + 4 + 2 + 2

type Header struct {
	List     [7]byte
	Unknown0 uint32
	// Name is exactly name_size bytes, without a terminator.
	Name     string
	Unknown1 uint16
	// MapFlag is 1 for map records and 0 otherwise.
	MapFlag uint16
}

func (h *Header) IsMap() bool {
	return h.MapFlag == 1
}

// Size returns the encoded size of h, not counting the magic.
func (h *Header) Size() int {
	return fixedSize + len(h.Name)
}

// Decode reads a header from r, which must be positioned right after the magic.
func Decode(r *bytes.Reader) (Header, error) {
	var h Header
	n, err := r.Uint8()
	if err != nil {
		return h, err
	}
	if err = r.ReadFull(h.List[:]); err != nil {
		return h, err
	}
	if h.Unknown0, err = r.Uint32(); err != nil {
		return h, err
	}
	if h.Name, err = r.String(int(n)); err != nil {
		return h, err
	}
	if h.Unknown1, err = r.Uint16(); err != nil {
		return h, err
	}
	if h.MapFlag, err = r.Uint16(); err != nil {
		return h, err
	}
	return h, nil
}

func (h *Header) Encode(w *bytes.Writer) error {
	if len(h.Name) > math.MaxUint8 {
		return errors.Wrapf(formaterr.ErrInvalidModel, "record name is %d bytes, at most %d fit",
			len(h.Name), math.MaxUint8)
	}
	w.Uint8(uint8(len(h.Name)))
	w.Write(h.List[:])
	w.Uint32(h.Unknown0)
	w.String(h.Name)
	w.Uint16(h.Unknown1)
	w.Uint16(h.MapFlag)
	return nil
}
