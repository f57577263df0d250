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

// Package container splits a save archive into its fixed-size subfiles and
// assembles it again.
//
// Packed layout:
//
//	[FileHeader 20][subfile 0]...[subfile N-1][footer]
//	subfile = [magic 4][data ...]
//
// Legacy layout:
//
//	[subfile 0]...[subfile N-1][footer]
//	subfile = [prefix 20][magic 4][reserved 8][data ...]
//
// The legacy prefix of subfile 0 is the FileHeader; other subfiles carry
// opaque bytes there.
package container

import (
	// this project.
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

const (
	FileHeaderSize = 2 + 2 + 4 + 4 + 4 + 4

	MagicSize          = 4
	LegacyPrefixSize   = FileHeaderSize
	LegacyReservedSize = 8
)

// FileHeader is stored once per archive. Every field except the subfile
// geometry is carried opaquely.
type FileHeader struct {
	// VersionA and VersionB are always 1 in known saves.
	VersionA     uint16
	VersionB     uint16
	SubfileCount uint32
	// FooterSize is not validated. Legacy archives reuse the slot.
	FooterSize  uint32
	SubfileSize uint32
	// FormatTag is 0x4 for CDB and 0x100 for VDB in the packed revision.
	FormatTag uint32
}

func ReadFileHeader(r *bytes.Reader) (FileHeader, error) {
	var h FileHeader
	var err error
	if h.VersionA, err = r.Uint16(); err != nil {
		return h, err
	}
	if h.VersionB, err = r.Uint16(); err != nil {
		return h, err
	}
	if h.SubfileCount, err = r.Uint32(); err != nil {
		return h, err
	}
	if h.FooterSize, err = r.Uint32(); err != nil {
		return h, err
	}
	if h.SubfileSize, err = r.Uint32(); err != nil {
		return h, err
	}
	if h.FormatTag, err = r.Uint32(); err != nil {
		return h, err
	}
	return h, nil
}

func (h FileHeader) WriteTo(w *bytes.Writer) {
	w.Uint16(h.VersionA)
	w.Uint16(h.VersionB)
	w.Uint32(h.SubfileCount)
	w.Uint32(h.FooterSize)
	w.Uint32(h.SubfileSize)
	w.Uint32(h.FormatTag)
}

// ResolveRevision picks the layout. An explicit hint wins; otherwise the
// packed layout is chosen when the format tag matches the kind.
func ResolveRevision(h FileHeader, kind primitive.Kind, hint primitive.Revision) primitive.Revision {
	if hint != primitive.RevisionAuto {
		return hint
	}
	if h.FormatTag == kind.FormatTag() {
		return primitive.RevisionPacked
	}
	return primitive.RevisionLegacy
}

// PrefixSize is the number of bytes in front of the magic inside a subfile.
func PrefixSize(rev primitive.Revision) int {
	if rev == primitive.RevisionLegacy {
		return LegacyPrefixSize
	}
	return 0
}

// SubfileHeaderSize is the size of the subfile header counted from the magic.
func SubfileHeaderSize(rev primitive.Revision) int {
	if rev == primitive.RevisionLegacy {
		return MagicSize + LegacyReservedSize
	}
	return MagicSize
}

func archiveBase(rev primitive.Revision) int {
	if rev == primitive.RevisionLegacy {
		return 0
	}
	return FileHeaderSize
}
