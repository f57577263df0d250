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

// Package voxel decodes the inflated terrain section of a chunk into
// subchunks of block ids and block data.
package voxel

import (
	// standard libraries.
	"math"

	// third-party libraries.
	"github.com/pkg/errors"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

const (
	Side   = 16
	Volume = Side * Side * Side
	Area   = Side * Side

	// SubchunkSize is the encoded size of one subchunk: a constant byte, the
	// block ids, the packed block data and the auxiliary bytes.
	SubchunkSize = 1 + Volume + Volume/2 + Volume
	trailerSize  = Area*2 + Area

	MaxSubchunks = math.MaxUint8
)

// Index returns the array index of a block inside a subchunk.
func Index(x, y, z int) int {
	return x*Area + z*Side + y
}

// NibbleArray packs two 4-bit values per byte. Byte i holds value 2i in its
// low nibble and value 2i+1 in its high nibble.
type NibbleArray [Volume / 2]byte

func (n *NibbleArray) Get(i int) uint8 {
	b := n[i/2]
	if i%2 == 0 {
		return b & 0x0F
	}
	return b >> 4
}

func (n *NibbleArray) Set(i int, v uint8) {
	b := &n[i/2]
	if i%2 == 0 {
		*b = *b&0xF0 | v&0x0F
	} else {
		*b = *b&0x0F | v<<4
	}
}

type Subchunk struct {
	// Constant0 is 0 in every known save.
	Constant0 byte
	Blocks    [Volume]byte
	Data      NibbleArray
	// Aux is zero in every known save.
	Aux [Volume]byte
}

// BlockData is a decoded terrain section.
type BlockData struct {
	Subchunks []Subchunk
	Unknown   [Area]uint16
	Biomes    [Area]byte
}

// Size returns the encoded size of block data holding count subchunks.
func Size(count int) int {
	return 1 + count*SubchunkSize + trailerSize
}

func (b *BlockData) Size() int {
	return Size(len(b.Subchunks))
}

// Decode parses buf, whose declared inflated size is declared. Errors carry no
// location; offsets inside an inflated buffer do not map to archive offsets.
func Decode(buf []byte, declared int) (*BlockData, error) {
	if len(buf) == 0 {
		return nil, errors.Wrap(formaterr.ErrTruncatedBlockData, "no subchunk count")
	}
	count := int(buf[0])
	if need := Size(count); len(buf) < need {
		return nil, errors.Wrapf(formaterr.ErrTruncatedBlockData,
			"%d subchunks need %d bytes, have %d", count, need, len(buf))
	}
	if len(buf) != declared {
		return nil, errors.Wrapf(formaterr.ErrSizeMismatch, "block data is %d bytes, declared %d", len(buf), declared)
	}
	if need := Size(count); len(buf) != need {
		return nil, errors.Wrapf(formaterr.ErrSizeMismatch,
			"%d bytes after %d subchunks at offset %#x", len(buf)-need, count, need)
	}

	r := bytes.NewReader(buf[1:])
	b := &BlockData{Subchunks: make([]Subchunk, count)}
	for i := range b.Subchunks {
		s := &b.Subchunks[i]
		s.Constant0, _ = r.Uint8()
		_ = r.ReadFull(s.Blocks[:])
		_ = r.ReadFull(s.Data[:])
		_ = r.ReadFull(s.Aux[:])
	}
	for i := range b.Unknown {
		b.Unknown[i], _ = r.Uint16()
	}
	_ = r.ReadFull(b.Biomes[:])
	return b, nil
}

func (b *BlockData) Encode() ([]byte, error) {
	if len(b.Subchunks) > MaxSubchunks {
		return nil, errors.Wrapf(formaterr.ErrInvalidModel, "%d subchunks, at most %d fit",
			len(b.Subchunks), MaxSubchunks)
	}
	w := bytes.NewWriter(b.Size())
	w.Uint8(uint8(len(b.Subchunks)))
	for i := range b.Subchunks {
		s := &b.Subchunks[i]
		w.Uint8(s.Constant0)
		w.Write(s.Blocks[:])
		w.Write(s.Data[:])
		w.Write(s.Aux[:])
	}
	for _, v := range b.Unknown {
		w.Uint16(v)
	}
	w.Write(b.Biomes[:])
	return w.Bytes(), nil
}

func inColumn(x, y, z int) bool {
	return x >= 0 && x < Side && z >= 0 && z < Side && y >= 0 && y < MaxSubchunks*Side
}

// Block returns the id and data of the block at column coordinates x, y, z.
// Blocks above the last subchunk are air and report ok == false.
func (b *BlockData) Block(x, y, z int) (id, data uint8, ok bool) {
	if !inColumn(x, y, z) || y/Side >= len(b.Subchunks) {
		return 0, 0, false
	}
	s := &b.Subchunks[y/Side]
	i := Index(x, y%Side, z)
	return s.Blocks[i], s.Data.Get(i), true
}

// SetBlock stores a block, adding empty subchunks below it as needed.
func (b *BlockData) SetBlock(x, y, z int, id, data uint8) error {
	if !inColumn(x, y, z) {
		return errors.Errorf("block (%d, %d, %d) is outside the column", x, y, z)
	}
	for y/Side >= len(b.Subchunks) {
		b.Subchunks = append(b.Subchunks, Subchunk{})
	}
	s := &b.Subchunks[y/Side]
	i := Index(x, y%Side, z)
	s.Blocks[i] = id
	s.Data.Set(i, data)
	return nil
}
