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

package primitive

import (
	// standard libraries.
	"fmt"

	// this project.
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

const (
	positionXBits   = 14
	positionZBits   = 14
	positionDimBits = 4

	PositionMin  = -1 << (positionXBits - 1)
	PositionMax  = 1<<(positionXBits-1) - 1
	DimensionMax = 1<<positionDimBits - 1
)

var positionWidths = []uint{positionXBits, positionZBits, positionDimBits}

// Dimension ids observed in saves.
const (
	Overworld uint8 = 0
	Nether    uint8 = 1
	End       uint8 = 2
)

// Position is a chunk coordinate packed into 32 bits: x in bits 0-13, z in
// bits 14-27 (both two's complement) and the dimension in bits 28-31.
type Position struct {
	X         int16
	Z         int16
	Dimension uint8
}

func DecodePosition(v uint32) Position {
	f := bytes.UnpackBitfield32(v, positionWidths...)
	return Position{
		X:         int16(bytes.SignExtend(f[0], positionXBits)),
		Z:         int16(bytes.SignExtend(f[1], positionZBits)),
		Dimension: uint8(f[2]),
	}
}

func (p Position) Valid() bool {
	return p.X >= PositionMin && p.X <= PositionMax &&
		p.Z >= PositionMin && p.Z <= PositionMax &&
		p.Dimension <= DimensionMax
}

func (p Position) Encode() (uint32, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("position %s does not fit the packed layout", p)
	}
	const fieldMask = 1<<positionXBits - 1
	return bytes.PackBitfield32([]uint32{
		uint32(int32(p.X)) & fieldMask,
		uint32(int32(p.Z)) & fieldMask,
		uint32(p.Dimension),
	}, positionWidths...)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, dim %d)", p.X, p.Z, p.Dimension)
}

// Parameters are two signed bytes of unknown meaning. They are echoed between
// a chunk header and its index entry and always written back verbatim.
type Parameters struct {
	A int8
	B int8
}

func ReadParameters(r *bytes.Reader) (Parameters, error) {
	a, err := r.Int8()
	if err != nil {
		return Parameters{}, err
	}
	b, err := r.Int8()
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{A: a, B: b}, nil
}

func (p Parameters) WriteTo(w *bytes.Writer) {
	w.Int8(p.A)
	w.Int8(p.B)
}

func ReadPosition(r *bytes.Reader) (Position, error) {
	v, err := r.Uint32()
	if err != nil {
		return Position{}, err
	}
	return DecodePosition(v), nil
}

func (p Position) WriteTo(w *bytes.Writer) error {
	v, err := p.Encode()
	if err != nil {
		return err
	}
	w.Uint32(v)
	return nil
}
