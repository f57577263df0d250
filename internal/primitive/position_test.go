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
	"testing"

	// third-party libraries.
	. "github.com/smartystreets/goconvey/convey"
)

func TestPosition(t *testing.T) {
	Convey("packed chunk position", t, func() {
		Convey("decode signed fields", func() {
			// x = -1, z = 2, dimension = 1
			p := DecodePosition(0x3fff | 2<<14 | 1<<28)
			So(p, ShouldResemble, Position{X: -1, Z: 2, Dimension: 1})
		})

		Convey("encode is the inverse", func() {
			for _, p := range []Position{
				{X: 0, Z: 0, Dimension: Overworld},
				{X: PositionMin, Z: PositionMax, Dimension: Nether},
				{X: 123, Z: -456, Dimension: End},
				{X: -8192, Z: -8192, Dimension: DimensionMax},
			} {
				v, err := p.Encode()
				So(err, ShouldBeNil)
				So(DecodePosition(v), ShouldResemble, p)
			}
		})

		Convey("out of range", func() {
			_, err := Position{X: PositionMax + 1}.Encode()
			So(err, ShouldNotBeNil)
			_, err = Position{Dimension: DimensionMax + 1}.Encode()
			So(err, ShouldNotBeNil)
		})
	})
}

func TestKindAndRevision(t *testing.T) {
	Convey("kind", t, func() {
		k, err := ParseKind(".vdb")
		So(err, ShouldBeNil)
		So(k, ShouldEqual, KindVDB)
		So(k.Magic(), ShouldEqual, MagicVDB)
		So(KindCDB.FormatTag(), ShouldEqual, FormatTagCDB)
		_, err = ParseKind("mcr")
		So(err, ShouldNotBeNil)
	})

	Convey("revision", t, func() {
		r, err := ParseRevision("packed")
		So(err, ShouldBeNil)
		So(r, ShouldEqual, RevisionPacked)
		So(RevisionLegacy.String(), ShouldEqual, "legacy")
		_, err = ParseRevision("v3")
		So(err, ShouldNotBeNil)
	})
}
