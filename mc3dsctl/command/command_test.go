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

package command

import (
	// standard libraries.
	"context"
	"os"
	"path/filepath"
	"testing"

	// third-party libraries.
	. "github.com/smartystreets/goconvey/convey"

	// this project.
	"github.com/linkall-labs/mc3ds/internal/format/container"
	"github.com/linkall-labs/mc3ds/internal/format/vdb"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/pkg/archive"
)

func TestLoadConfig(t *testing.T) {
	Convey("load config", t, func() {
		dir := t.TempDir()
		file := filepath.Join(dir, "mc3dsctl.yaml")
		t.Setenv("MC3DS_TEST_LEVEL", "debug")
		err := os.WriteFile(file, []byte("log_level: ${MC3DS_TEST_LEVEL}\nrevision: legacy\ncompression_level: 9\n"), 0o600)
		So(err, ShouldBeNil)

		Convey("from file", func() {
			c, err := loadConfig(GlobalFlags{ConfigFile: file})
			So(err, ShouldBeNil)
			So(c.LogLevel, ShouldEqual, "debug")
			So(c.Revision, ShouldEqual, primitive.RevisionLegacy)
			So(c.CompressionLevel, ShouldEqual, 9)
			So(c.archiveOptions(), ShouldHaveLength, 2)
		})

		Convey("flags override the file", func() {
			c, err := loadConfig(GlobalFlags{ConfigFile: file, LogLevel: "warn", Revision: "packed"})
			So(err, ShouldBeNil)
			So(c.LogLevel, ShouldEqual, "warn")
			So(c.Revision, ShouldEqual, primitive.RevisionPacked)
		})

		Convey("bad revision", func() {
			_, err := loadConfig(GlobalFlags{Revision: "newest"})
			So(err, ShouldNotBeNil)
		})

		Convey("missing file", func() {
			_, err := loadConfig(GlobalFlags{ConfigFile: filepath.Join(dir, "absent.yaml")})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestArchiveKind(t *testing.T) {
	Convey("archive kind", t, func() {
		k, err := archiveKind("", "db/cdb/slt3.cdb")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, primitive.KindCDB)

		k, err = archiveKind("vdb", "dump.bin")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, primitive.KindVDB)

		_, err = archiveKind("", "dump.bin")
		So(err, ShouldNotBeNil)
	})
}

func testChunkArchive() *archive.Archive {
	c := &archive.Chunk{Position: primitive.Position{X: 3, Z: -4}}
	c.Sections[1] = &archive.Section{Index: 3, Payload: []byte("section three")}
	c.Sections[4] = &archive.Section{Index: 7, Payload: []byte{1, 2, 3, 4}}
	return &archive.Archive{
		Kind:     primitive.KindCDB,
		Revision: primitive.RevisionPacked,
		Header:   container.FileHeader{VersionA: 1, VersionB: 1, SubfileSize: 512},
		Subfiles: []archive.Subfile{{Chunk: c}, {Filler: make([]byte, 512)}},
	}
}

func TestExtractArchive(t *testing.T) {
	ctx := context.Background()

	Convey("extract section payloads", t, func() {
		dir := t.TempDir()
		n, err := extractArchive(ctx, testChunkArchive(), dir)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 2)

		b, err := os.ReadFile(filepath.Join(dir, "0", "1_3.bin"))
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, "section three")
		b, err = os.ReadFile(filepath.Join(dir, "0", "4_7.bin"))
		So(err, ShouldBeNil)
		So(b, ShouldResemble, []byte{1, 2, 3, 4})
		_, err = os.Stat(filepath.Join(dir, "1"))
		So(os.IsNotExist(err), ShouldBeTrue)
	})

	Convey("extract records", t, func() {
		dir := t.TempDir()
		a := &archive.Archive{
			Kind:     primitive.KindVDB,
			Revision: primitive.RevisionPacked,
			Header:   container.FileHeader{SubfileSize: 128},
			Subfiles: []archive.Subfile{{Record: &archive.Record{Header: vdb.Header{Name: "m"}, Payload: []byte("map")}}},
		}
		n, err := extractArchive(ctx, a, dir)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 1)
		b, err := os.ReadFile(filepath.Join(dir, "0.bin"))
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, "map")
	})
}

func TestSectionSizes(t *testing.T) {
	ctx := context.Background()

	Convey("compressed section size distribution", t, func() {
		data, err := archive.Flush(ctx, testChunkArchive())
		So(err, ShouldBeNil)
		rep, err := archive.Inspect(ctx, data, primitive.KindCDB)
		So(err, ShouldBeNil)

		his := sectionSizes(rep)
		So(his.TotalCount(), ShouldEqual, int64(2))
		So(his.Max(), ShouldBeGreaterThanOrEqualTo, int64(rep.Subfiles[0].Sections[1].CompressedSize))
	})
}

func TestVerifyArchive(t *testing.T) {
	ctx := context.Background()

	Convey("verify re-encodes an archive", t, func() {
		data, err := archive.Flush(ctx, testChunkArchive())
		So(err, ShouldBeNil)

		res, err := verifyArchive(ctx, data, primitive.KindCDB)
		So(err, ShouldBeNil)
		So(res.Subfiles, ShouldEqual, 2)
		So(res.Semantic, ShouldBeTrue)
		So(res.ByteExact, ShouldBeTrue)

		_, err = verifyArchive(ctx, data, primitive.KindVDB)
		So(err, ShouldNotBeNil)
	})
}
