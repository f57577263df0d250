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
	// third-party libraries.
	"github.com/pkg/errors"
)

// ErrBitfield is returned for field widths that do not fit a 32-bit word or
// values that overflow their field.
var ErrBitfield = errors.New("mc3ds.bytes: invalid bitfield")

func checkWidths(widths []uint) error {
	var total uint
	for _, w := range widths {
		if w == 0 || w > 32 {
			return errors.Wrapf(ErrBitfield, "width %d", w)
		}
		total += w
	}
	if total > 32 {
		return errors.Wrapf(ErrBitfield, "widths sum to %d bits", total)
	}
	return nil
}

// UnpackBitfield32 splits v into len(widths) fields, lowest bits first. Widths
// must have been validated.
func UnpackBitfield32(v uint32, widths ...uint) []uint32 {
	fields := make([]uint32, len(widths))
	for i, w := range widths {
		fields[i] = v & mask(w)
		v >>= w % 32
		if w == 32 {
			v = 0
		}
	}
	return fields
}

// PackBitfield32 is the inverse of UnpackBitfield32.
func PackBitfield32(values []uint32, widths ...uint) (uint32, error) {
	if len(values) != len(widths) {
		return 0, errors.Wrapf(ErrBitfield, "%d values for %d fields", len(values), len(widths))
	}
	if err := checkWidths(widths); err != nil {
		return 0, err
	}
	var v uint32
	var shift uint
	for i, w := range widths {
		if values[i]&^mask(w) != 0 {
			return 0, errors.Wrapf(ErrBitfield, "value %#x overflows %d-bit field %d", values[i], w, i)
		}
		v |= values[i] << shift
		shift += w
	}
	return v, nil
}

// SignExtend interprets the low bits of v as a two's complement integer.
func SignExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

func mask(w uint) uint32 {
	if w >= 32 {
		return ^uint32(0)
	}
	return 1<<w - 1
}
