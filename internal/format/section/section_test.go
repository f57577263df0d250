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

package section

import (
	// standard libraries.
	"testing"

	// third-party libraries.
	. "github.com/smartystreets/goconvey/convey"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

// entryFromMask sets field i to its sentinel when bit i of mask is set.
func entryFromMask(mask int) Entry {
	e := Entry{Index: 2, Position: 0x70, CompressedSize: 40, DecompressedSize: 100}
	if mask&1 != 0 {
		e.Index = -1
	}
	if mask&2 != 0 {
		e.Position = -1
	}
	if mask&4 != 0 {
		e.CompressedSize = 0
	}
	if mask&8 != 0 {
		e.DecompressedSize = 0
	}
	return e
}

func TestSentinels(t *testing.T) {
	Convey("sentinel classification", t, func() {
		for mask := 0; mask < 16; mask++ {
			e := entryFromMask(mask)
			So(e.Empty(), ShouldEqual, mask == 15)
			So(e.Consistent(), ShouldEqual, mask == 0 || mask == 15)
			_, ok := Resolve(e)
			So(ok, ShouldEqual, mask == 0)
		}
		So(EmptyEntry.Empty(), ShouldBeTrue)
	})

	Convey("decode reports partial sentinels", t, func() {
		for _, rev := range []primitive.Revision{primitive.RevisionLegacy, primitive.RevisionPacked} {
			for mask := 0; mask < 16; mask++ {
				h := Header{}
				for i := range h.Entries {
					h.Entries[i] = EmptyEntry
				}
				h.Entries[3] = entryFromMask(mask)

				w := bytes.NewWriter(Size(rev))
				So(h.Encode(w, rev), ShouldBeNil)
				So(w.Len(), ShouldEqual, Size(rev))

				got, warnings, err := Decode(bytes.NewReader(w.Bytes()), rev)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, h)
				if mask == 0 || mask == 15 {
					So(warnings, ShouldBeEmpty)
				} else {
					So(warnings, ShouldHaveLength, 1)
					So(warnings[0].Kind, ShouldEqual, formaterr.ErrInconsistentSectionSentinel)
					So(warnings[0].Offset, ShouldEqual, int64(Size(rev)-3*EntrySize))
				}
			}
		}
	})
}

func TestHeader(t *testing.T) {
	Convey("chunk header", t, func() {
		So(Size(primitive.RevisionLegacy)+12, ShouldEqual, DataOffset)
		So(Size(primitive.RevisionPacked)+4, ShouldEqual, DataOffset)

		h := Header{
			Position:   primitive.Position{X: -5, Z: 7, Dimension: primitive.Nether},
			Parameters: primitive.Parameters{A: 3, B: -4},
			Unknown:    [3]int16{1, -1, 0x100},
		}
		for i := range h.Entries {
			h.Entries[i] = EmptyEntry
		}
		h.Entries[0] = Entry{Index: 0, CompressedSize: 10, DecompressedSize: 30}
		h.Entries[2] = Entry{Index: 2, CompressedSize: 5, DecompressedSize: 8}

		Convey("layout packs payloads in slot order", func() {
			end := h.Layout()
			So(end, ShouldEqual, DataOffset+15)
			So(h.Entries[0].Position, ShouldEqual, int32(DataOffset))
			So(h.Entries[1], ShouldResemble, EmptyEntry)
			So(h.Entries[2].Position, ShouldEqual, int32(DataOffset+10))

			r, ok := Resolve(h.Entries[2])
			So(ok, ShouldBeTrue)
			So(r, ShouldResemble, Range{Offset: DataOffset + 10 - RegionOffset, Length: 5})
			So(r.Start(), ShouldEqual, DataOffset+10)
			So(r.End(), ShouldEqual, DataOffset+15)
		})

		Convey("packed round trip", func() {
			h.Layout()
			w := bytes.NewWriter(0)
			So(h.Encode(w, primitive.RevisionPacked), ShouldBeNil)
			got, warnings, err := Decode(bytes.NewReader(w.Bytes()), primitive.RevisionPacked)
			So(err, ShouldBeNil)
			So(warnings, ShouldBeEmpty)
			So(got, ShouldResemble, h)
		})

		Convey("short buffer", func() {
			w := bytes.NewWriter(0)
			So(h.Encode(w, primitive.RevisionPacked), ShouldBeNil)
			_, _, err := Decode(bytes.NewReader(w.Bytes()[:50]), primitive.RevisionPacked)
			So(err, ShouldNotBeNil)
		})

		Convey("position out of range", func() {
			h.Position.Dimension = 16
			So(h.Encode(bytes.NewWriter(0), primitive.RevisionPacked), ShouldNotBeNil)
			So(h.Encode(bytes.NewWriter(0), primitive.RevisionLegacy), ShouldBeNil)
		})
	})
}
