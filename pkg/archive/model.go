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

// Package archive opens CDB and VDB world-save archives into an in-memory model
// and flushes models back to archive bytes.
//
// The model holds no derived values: section positions, compressed sizes and
// subfile counts are recomputed on flush. Reopening a flushed archive yields a
// model deeply equal to the one flushed.
package archive

import (
	// this project.
	"github.com/linkall-labs/mc3ds/internal/format/container"
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/format/section"
	"github.com/linkall-labs/mc3ds/internal/format/vdb"
	"github.com/linkall-labs/mc3ds/internal/format/voxel"
	"github.com/linkall-labs/mc3ds/internal/primitive"
)

// TerrainSection is the section index holding a chunk's block data.
const TerrainSection = 0

type Archive struct {
	Kind     primitive.Kind
	Revision primitive.Revision
	Header   container.FileHeader
	Subfiles []Subfile
	// Footer holds the bytes after the last subfile.
	Footer []byte
	// Warnings collects non-fatal findings from Open.
	Warnings []formaterr.Warning
}

// Subfile holds exactly one of Chunk, Record or Filler.
type Subfile struct {
	// Prefix is the opaque legacy prefix of subfiles after the first.
	Prefix []byte

	Chunk  *Chunk
	Record *Record
	// Filler keeps the bytes of a subfile with a zero magic, from the magic on.
	Filler []byte
}

func (s *Subfile) IsFiller() bool {
	return s.Chunk == nil && s.Record == nil
}

// Chunk is the content of a CDB subfile. Legacy chunks fill Reserved and
// Legacy; packed chunks fill Position, Parameters and Unknown.
type Chunk struct {
	Reserved []byte
	Legacy   [2]int16

	Position   primitive.Position
	Parameters primitive.Parameters
	Unknown    [3]int16

	// Sections is indexed by header slot. A nil entry is an empty slot.
	Sections [section.Count]*Section
}

// Section returns the section with the given index, or nil.
func (c *Chunk) Section(index int32) *Section {
	for _, s := range c.Sections {
		if s != nil && s.Raw == nil && s.Index == index {
			return s
		}
	}
	return nil
}

// Terrain returns the decoded block data of the chunk, or nil.
func (c *Chunk) Terrain() *voxel.BlockData {
	if s := c.Section(TerrainSection); s != nil {
		return s.Blocks
	}
	return nil
}

type Section struct {
	Index int32
	// Payload holds the inflated bytes unless Blocks is set.
	Payload []byte
	Blocks  *voxel.BlockData
	// Raw keeps an entry whose sentinels disagree. Such a section has no
	// payload and is written back as read.
	Raw *section.Entry
}

// Bytes returns the inflated section content.
func (s *Section) Bytes() ([]byte, error) {
	if s.Blocks != nil {
		return s.Blocks.Encode()
	}
	return s.Payload, nil
}

// Record is the content of a VDB subfile.
type Record struct {
	Header vdb.Header
	// Payload runs from the end of the header to the end of the subfile.
	Payload []byte
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}
