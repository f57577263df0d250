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

package container

import (
	// standard libraries.
	"encoding/binary"
	"testing"

	// third-party libraries.
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

const testSubfileSize = 4096

func packedArchive(kind primitive.Kind, magics ...uint32) []byte {
	w := bytes.NewWriter(FileHeaderSize + len(magics)*testSubfileSize)
	FileHeader{
		VersionA:     1,
		VersionB:     1,
		SubfileCount: uint32(len(magics)),
		FooterSize:   FileHeaderSize,
		SubfileSize:  testSubfileSize,
		FormatTag:    kind.FormatTag(),
	}.WriteTo(w)
	for i, m := range magics {
		w.Uint32(m)
		w.Uint8(uint8(i + 1))
		w.Zero(testSubfileSize - MagicSize - 1)
	}
	return w.Bytes()
}

func legacyArchive(magics ...uint32) []byte {
	w := bytes.NewWriter(len(magics) * testSubfileSize)
	for i, m := range magics {
		if i == 0 {
			FileHeader{
				VersionA:     1,
				VersionB:     1,
				SubfileCount: uint32(len(magics)),
				FooterSize:   FileHeaderSize,
				SubfileSize:  testSubfileSize,
			}.WriteTo(w)
		} else {
			for j := 0; j < LegacyPrefixSize; j++ {
				w.Uint8(0xA0 + uint8(i))
			}
		}
		w.Uint32(m)
		w.Zero(testSubfileSize - LegacyPrefixSize - MagicSize)
	}
	return w.Bytes()
}

func TestRead(t *testing.T) {
	Convey("read packed archive", t, func() {
		data := packedArchive(primitive.KindCDB, primitive.MagicCDB, primitive.MagicCDB, primitive.MagicCDB)

		Convey("well-formed archive", func() {
			f, err := Read(data, primitive.KindCDB, primitive.RevisionAuto)
			So(err, ShouldBeNil)
			So(f.Revision, ShouldEqual, primitive.RevisionPacked)
			So(f.Subfiles, ShouldHaveLength, 3)
			So(f.Footer, ShouldBeEmpty)
			for i := range f.Subfiles {
				So(f.Subfiles[i].Prefix, ShouldBeNil)
				So(f.Subfiles[i].Data, ShouldHaveLength, testSubfileSize)
				So(f.Subfiles[i].Magic(), ShouldEqual, primitive.MagicCDB)
				So(f.Subfiles[i].Data[MagicSize], ShouldEqual, uint8(i+1))
			}
			So(f.Offset(2), ShouldEqual, int64(FileHeaderSize+2*testSubfileSize))
		})

		Convey("one byte short", func() {
			_, err := Read(data[:len(data)-1], primitive.KindCDB, primitive.RevisionAuto)
			So(errors.Is(err, formaterr.ErrTruncatedArchive), ShouldBeTrue)
			sub, off, ok := formaterr.Location(err)
			So(ok, ShouldBeTrue)
			So(sub, ShouldEqual, formaterr.NoSubfile)
			So(off, ShouldEqual, int64(len(data)-1))
		})

		Convey("shorter than a file header", func() {
			_, err := Read(data[:10], primitive.KindCDB, primitive.RevisionAuto)
			So(errors.Is(err, formaterr.ErrTruncatedArchive), ShouldBeTrue)
		})

		Convey("wrong kind", func() {
			_, err := Read(data, primitive.KindVDB, primitive.RevisionPacked)
			So(errors.Is(err, formaterr.ErrInvalidMagic), ShouldBeTrue)
			sub, off, _ := formaterr.Location(err)
			So(sub, ShouldEqual, 0)
			So(off, ShouldEqual, int64(FileHeaderSize))
		})

		Convey("bad magic in a later subfile", func() {
			binary.LittleEndian.PutUint32(data[FileHeaderSize+2*testSubfileSize:], 0x12345678)
			_, err := Read(data, primitive.KindCDB, primitive.RevisionAuto)
			So(errors.Is(err, formaterr.ErrInvalidMagic), ShouldBeTrue)
			sub, _, _ := formaterr.Location(err)
			So(sub, ShouldEqual, 2)
		})

		Convey("filler subfiles", func() {
			binary.LittleEndian.PutUint32(data[FileHeaderSize+testSubfileSize:], 0)
			f, err := Read(data, primitive.KindCDB, primitive.RevisionAuto)
			So(err, ShouldBeNil)
			So(f.Subfiles[1].Filler(), ShouldBeTrue)

			binary.LittleEndian.PutUint32(data[FileHeaderSize:], 0)
			_, err = Read(data, primitive.KindCDB, primitive.RevisionAuto)
			So(errors.Is(err, formaterr.ErrInvalidMagic), ShouldBeTrue)
		})

		Convey("footer bytes are kept", func() {
			data = append(data, 0xDE, 0xAD)
			f, err := Read(data, primitive.KindCDB, primitive.RevisionAuto)
			So(err, ShouldBeNil)
			So(f.Footer, ShouldResemble, []byte{0xDE, 0xAD})
		})

		Convey("no subfiles", func() {
			binary.LittleEndian.PutUint32(data[4:], 0)
			_, err := Read(data, primitive.KindCDB, primitive.RevisionAuto)
			So(errors.Is(err, formaterr.ErrTruncatedArchive), ShouldBeTrue)
		})
	})

	Convey("read legacy archive", t, func() {
		data := legacyArchive(primitive.MagicVDB, primitive.MagicVDB)

		f, err := Read(data, primitive.KindVDB, primitive.RevisionAuto)
		So(err, ShouldBeNil)
		So(f.Revision, ShouldEqual, primitive.RevisionLegacy)
		So(f.Subfiles, ShouldHaveLength, 2)
		So(f.Subfiles[0].Prefix, ShouldBeNil)
		So(f.Subfiles[1].Prefix, ShouldHaveLength, LegacyPrefixSize)
		So(f.Subfiles[1].Prefix[0], ShouldEqual, byte(0xA1))
		So(f.Subfiles[1].Data, ShouldHaveLength, testSubfileSize-LegacyPrefixSize)
		So(f.Offset(1), ShouldEqual, int64(testSubfileSize+LegacyPrefixSize))

		Convey("a legacy archive cannot be read as packed", func() {
			_, err := Read(data, primitive.KindVDB, primitive.RevisionPacked)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestWrite(t *testing.T) {
	Convey("write archive", t, func() {
		Convey("packed round trip is byte exact", func() {
			data := packedArchive(primitive.KindVDB, primitive.MagicVDB, 0, primitive.MagicVDB)
			data = append(data, 1, 2, 3)
			f, err := Read(data, primitive.KindVDB, primitive.RevisionAuto)
			So(err, ShouldBeNil)
			out, err := Write(f)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, data)
		})

		Convey("legacy round trip is byte exact", func() {
			data := legacyArchive(primitive.MagicCDB, primitive.MagicCDB, primitive.MagicCDB)
			f, err := Read(data, primitive.KindCDB, primitive.RevisionLegacy)
			So(err, ShouldBeNil)
			out, err := Write(f)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, data)
		})

		Convey("subfile count follows the model", func() {
			data := packedArchive(primitive.KindCDB, primitive.MagicCDB, primitive.MagicCDB)
			f, err := Read(data, primitive.KindCDB, primitive.RevisionAuto)
			So(err, ShouldBeNil)
			f.Subfiles = append(f.Subfiles, Subfile{Data: f.Subfiles[0].Data[:64]})
			out, err := Write(f)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, FileHeaderSize+3*testSubfileSize)

			again, err := Read(out, primitive.KindCDB, primitive.RevisionAuto)
			So(err, ShouldBeNil)
			So(again.Header.SubfileCount, ShouldEqual, uint32(3))
			So(again.Subfiles[2].Data[:64], ShouldResemble, f.Subfiles[0].Data[:64])
		})

		Convey("zero subfile size is computed", func() {
			f := &File{
				Kind:     primitive.KindCDB,
				Revision: primitive.RevisionPacked,
				Subfiles: []Subfile{
					{Data: []byte{0x98, 0xEF, 0xCD, 0xAB, 1}},
					{Data: []byte{0x98, 0xEF, 0xCD, 0xAB, 1, 2, 3}},
				},
			}
			out, err := Write(f)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, FileHeaderSize+2*7)
			again, err := Read(out, primitive.KindCDB, primitive.RevisionAuto)
			So(err, ShouldBeNil)
			So(again.Header.FormatTag, ShouldEqual, primitive.FormatTagCDB)
			So(again.Subfiles[0].Data, ShouldResemble, []byte{0x98, 0xEF, 0xCD, 0xAB, 1, 0, 0})
		})

		Convey("subfile size grows to fit an edited subfile", func() {
			f := &File{
				Kind:     primitive.KindCDB,
				Revision: primitive.RevisionPacked,
				Header:   FileHeader{SubfileSize: 4},
				Subfiles: []Subfile{
					{Data: []byte{0x98, 0xEF, 0xCD, 0xAB, 1}},
					{Data: []byte{0x98, 0xEF, 0xCD, 0xAB}},
				},
			}
			out, err := Write(f)
			So(err, ShouldBeNil)
			So(out, ShouldHaveLength, FileHeaderSize+2*5)
			So(f.Header.SubfileSize, ShouldEqual, uint32(4))

			again, err := Read(out, primitive.KindCDB, primitive.RevisionAuto)
			So(err, ShouldBeNil)
			So(again.Header.SubfileSize, ShouldEqual, uint32(5))
			So(again.Subfiles[0].Data, ShouldResemble, []byte{0x98, 0xEF, 0xCD, 0xAB, 1})
			So(again.Subfiles[1].Data, ShouldResemble, []byte{0x98, 0xEF, 0xCD, 0xAB, 0})

			out2, err := Write(again)
			So(err, ShouldBeNil)
			So(out2, ShouldResemble, out)
		})

		Convey("legacy subfile size counts the prefix", func() {
			data := legacyArchive(primitive.MagicCDB, primitive.MagicCDB)
			f, err := Read(data, primitive.KindCDB, primitive.RevisionLegacy)
			So(err, ShouldBeNil)
			f.Subfiles[1].Data = append(f.Subfiles[1].Data, 7)
			out, err := Write(f)
			So(err, ShouldBeNil)

			again, err := Read(out, primitive.KindCDB, primitive.RevisionLegacy)
			So(err, ShouldBeNil)
			So(again.Header.SubfileSize, ShouldEqual, uint32(testSubfileSize+1))
			So(again.Subfiles[1].Data, ShouldResemble, f.Subfiles[1].Data)
			So(again.Subfiles[0].Data, ShouldHaveLength, testSubfileSize+1-LegacyPrefixSize)
		})

		Convey("empty model", func() {
			_, err := Write(&File{Kind: primitive.KindCDB})
			So(errors.Is(err, formaterr.ErrInvalidModel), ShouldBeTrue)
		})
	})
}
