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
	"testing"

	// third-party libraries.
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReader(t *testing.T) {
	Convey("little-endian reader", t, func() {
		r := NewReader([]byte{
			0x01,
			0x34, 0x12,
			0x78, 0x56, 0x34, 0x12,
			0xff, 0xff, 0xff, 0xff,
			'a', 'b', 'c',
		})

		u8, err := r.Uint8()
		So(err, ShouldBeNil)
		So(u8, ShouldEqual, 0x01)

		u16, err := r.Uint16()
		So(err, ShouldBeNil)
		So(u16, ShouldEqual, 0x1234)

		u32, err := r.Uint32()
		So(err, ShouldBeNil)
		So(u32, ShouldEqual, 0x12345678)

		i32, err := r.Int32()
		So(err, ShouldBeNil)
		So(i32, ShouldEqual, -1)

		s, err := r.String(3)
		So(err, ShouldBeNil)
		So(s, ShouldEqual, "abc")
		So(r.Remaining(), ShouldEqual, 0)

		Convey("short read fails and keeps the cursor", func() {
			So(r.Seek(10), ShouldBeNil)
			_, err := r.Uint32()
			So(errors.Is(err, ErrOutOfBounds), ShouldBeTrue)
			So(r.Offset(), ShouldEqual, 10)
		})

		Convey("seek past the end fails", func() {
			So(errors.Is(r.Seek(r.Len()+1), ErrOutOfBounds), ShouldBeTrue)
			So(r.Seek(r.Len()), ShouldBeNil)
		})

		Convey("clone does not alias", func() {
			So(r.Seek(11), ShouldBeNil)
			b, err := r.Clone(3)
			So(err, ShouldBeNil)
			b[0] = 'z'
			So(r.Seek(11), ShouldBeNil)
			s, _ := r.String(3)
			So(s, ShouldEqual, "abc")
		})
	})
}

func TestWriterMirrorsReader(t *testing.T) {
	Convey("writer output reads back", t, func() {
		w := NewWriter(16)
		w.Uint8(7)
		w.Int16(-2)
		w.Uint32(0xABCDEF98)
		w.Int8(-128)
		w.String("name")
		w.Zero(3)
		So(w.Len(), ShouldEqual, 1+2+4+1+4+3)

		r := NewReader(w.Bytes())
		u8, _ := r.Uint8()
		i16, _ := r.Int16()
		u32, _ := r.Uint32()
		i8, _ := r.Int8()
		s, _ := r.String(4)
		So(u8, ShouldEqual, 7)
		So(i16, ShouldEqual, -2)
		So(u32, ShouldEqual, 0xABCDEF98)
		So(i8, ShouldEqual, -128)
		So(s, ShouldEqual, "name")
		So(r.Rest(), ShouldResemble, []byte{0, 0, 0})
	})
}

func TestBitfield(t *testing.T) {
	Convey("bitfields", t, func() {
		Convey("unpack lowest bits first", func() {
			fields := UnpackBitfield32(0x1000_4003, 14, 14, 4)
			So(fields, ShouldResemble, []uint32{0x3, 0x1, 0x1})
		})

		Convey("pack is the inverse", func() {
			v, err := PackBitfield32([]uint32{0x3fff, 0x2000, 0xf}, 14, 14, 4)
			So(err, ShouldBeNil)
			So(UnpackBitfield32(v, 14, 14, 4), ShouldResemble, []uint32{0x3fff, 0x2000, 0xf})
		})

		Convey("overflowing value", func() {
			_, err := PackBitfield32([]uint32{0x4000}, 14)
			So(errors.Is(err, ErrBitfield), ShouldBeTrue)
		})

		Convey("too many bits", func() {
			_, err := NewReader([]byte{0, 0, 0, 0}).Bitfield32(16, 16, 1)
			So(errors.Is(err, ErrBitfield), ShouldBeTrue)
		})

		Convey("sign extension", func() {
			So(SignExtend(0x3fff, 14), ShouldEqual, -1)
			So(SignExtend(0x2000, 14), ShouldEqual, -8192)
			So(SignExtend(0x1fff, 14), ShouldEqual, 8191)
		})

		Convey("writer round-trip", func() {
			w := NewWriter(4)
			So(w.Bitfield32([]uint32{5, 6, 2}, 14, 14, 4), ShouldBeNil)
			fields, err := NewReader(w.Bytes()).Bitfield32(14, 14, 4)
			So(err, ShouldBeNil)
			So(fields, ShouldResemble, []uint32{5, 6, 2})
		})
	})
}
