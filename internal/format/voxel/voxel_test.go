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

package voxel

import (
	// standard libraries.
	"testing"

	// third-party libraries.
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
)

func pattern(count int) []byte {
	buf := make([]byte, Size(count))
	buf[0] = byte(count)
	for i := 1; i < len(buf); i++ {
		buf[i] = byte(i*7 + i>>8)
	}
	for i := 0; i < count; i++ {
		buf[1+i*SubchunkSize] = 0
	}
	return buf
}

func TestNibbleArray(t *testing.T) {
	// The low-nibble-first order is inferred from save samples, not from any
	// format notes. These cases pin it.
	Convey("nibble order", t, func() {
		var n NibbleArray
		n[0] = 0x21
		n[1] = 0xBA
		So(n.Get(0), ShouldEqual, uint8(0x1))
		So(n.Get(1), ShouldEqual, uint8(0x2))
		So(n.Get(2), ShouldEqual, uint8(0xA))
		So(n.Get(3), ShouldEqual, uint8(0xB))

		n.Set(1, 0xF)
		So(n[0], ShouldEqual, byte(0xF1))
		n.Set(2, 0x13)
		So(n[1], ShouldEqual, byte(0xB3))
	})

	Convey("unpack then pack reproduces every byte", t, func() {
		var src, dst NibbleArray
		for i := range src {
			src[i] = byte(i * 31)
		}
		for i := 0; i < Volume; i++ {
			dst.Set(i, src.Get(i))
		}
		So(dst, ShouldResemble, src)
	})
}

func TestDecode(t *testing.T) {
	Convey("decode block data", t, func() {
		buf := pattern(2)

		b, err := Decode(buf, len(buf))
		So(err, ShouldBeNil)
		So(b.Subchunks, ShouldHaveLength, 2)
		So(b.Size(), ShouldEqual, len(buf))
		So(b.Subchunks[1].Blocks[0], ShouldEqual, buf[1+SubchunkSize+1])
		So(b.Biomes[Area-1], ShouldEqual, buf[len(buf)-1])

		Convey("encode reproduces the buffer", func() {
			out, err := b.Encode()
			So(err, ShouldBeNil)
			So(out, ShouldResemble, buf)
		})

		Convey("one subchunk, short buffer", func() {
			short := pattern(1)[:SubchunkSize-1]
			_, err := Decode(short, Size(1))
			So(errors.Is(err, formaterr.ErrTruncatedBlockData), ShouldBeTrue)

			_, err = Decode(nil, 0)
			So(errors.Is(err, formaterr.ErrTruncatedBlockData), ShouldBeTrue)
		})

		Convey("declared size disagrees", func() {
			_, err := Decode(buf, len(buf)+1)
			So(errors.Is(err, formaterr.ErrSizeMismatch), ShouldBeTrue)
		})

		Convey("bytes after the biomes", func() {
			long := append(buf, 0)
			_, err := Decode(long, len(long))
			So(errors.Is(err, formaterr.ErrSizeMismatch), ShouldBeTrue)
		})

		Convey("no subchunks", func() {
			empty := pattern(0)
			b, err := Decode(empty, len(empty))
			So(err, ShouldBeNil)
			So(b.Subchunks, ShouldBeEmpty)
			_, _, ok := b.Block(0, 0, 0)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestBlocks(t *testing.T) {
	Convey("block access", t, func() {
		b := &BlockData{}
		So(b.SetBlock(3, 20, 5, 7, 0xC), ShouldBeNil)
		So(b.Subchunks, ShouldHaveLength, 2)

		id, data, ok := b.Block(3, 20, 5)
		So(ok, ShouldBeTrue)
		So(id, ShouldEqual, uint8(7))
		So(data, ShouldEqual, uint8(0xC))

		i := Index(3, 4, 5)
		So(i, ShouldEqual, 3*256+5*16+4)
		So(b.Subchunks[1].Blocks[i], ShouldEqual, byte(7))
		So(b.Subchunks[1].Data[i/2]&0x0F, ShouldEqual, byte(0xC))

		_, _, ok = b.Block(3, 40, 5)
		So(ok, ShouldBeFalse)
		So(b.SetBlock(16, 0, 0, 1, 0), ShouldNotBeNil)

		out, err := b.Encode()
		So(err, ShouldBeNil)
		again, err := Decode(out, len(out))
		So(err, ShouldBeNil)
		So(again, ShouldResemble, b)
	})
}
