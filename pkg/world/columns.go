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

package world

import (
	// standard libraries.
	"context"
	"fmt"

	// third-party libraries.
	"github.com/huandu/skiplist"
	"github.com/pkg/errors"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/format/index"
	"github.com/linkall-labs/mc3ds/internal/format/voxel"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/observability/log"
	"github.com/linkall-labs/mc3ds/pkg/archive"
)

// Column is an index entry joined with the chunk it points at.
type Column struct {
	Entry index.Entry
	Chunk *archive.Chunk
}

// Columns joins every index entry whose slot exists on disk with its chunk.
// Entries pointing at filler subfiles are skipped. A chunk whose header
// position disagrees with its entry is kept under the entry position and
// reported as a warning.
func (w *World) Columns(ctx context.Context) (map[primitive.Position]*Column, []formaterr.Warning, error) {
	if w.index.Revision != primitive.RevisionPacked {
		return nil, nil, ErrNoPosition
	}
	archives, err := w.LoadAll(ctx, primitive.KindCDB)
	if err != nil {
		return nil, nil, err
	}

	columns := make(map[primitive.Position]*Column, len(w.index.Entries))
	var warnings []formaterr.Warning
	for i, e := range w.index.Entries {
		a, ok := archives[int(e.Slot)]
		if !ok {
			continue
		}
		chunk, err := chunkAt(a, e)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "index entry %d", i)
		}
		if chunk == nil {
			continue
		}
		if chunk.Position != e.Position {
			detail := fmt.Sprintf("entry %d (slot %d, subfile %d): index says %s, chunk says %s",
				i, e.Slot, e.Subfile, e.Position, chunk.Position)
			warnings = append(warnings, formaterr.Warning{
				Kind:    formaterr.ErrPositionMismatch,
				Subfile: formaterr.NoSubfile,
				Offset:  entryOffset(w.index, i),
				Detail:  detail,
			})
			log.Warning(ctx, "chunk position differs from its index entry", map[string]interface{}{
				log.KeySlot:     e.Slot,
				log.KeySubfile:  e.Subfile,
				log.KeyPosition: e.Position.String(),
			})
		}
		if _, dup := columns[e.Position]; dup {
			return nil, nil, errors.Wrapf(ErrDuplicate, "%s", e.Position)
		}
		columns[e.Position] = &Column{Entry: e, Chunk: chunk}
	}
	return columns, warnings, nil
}

// Ordered returns columns sorted by dimension, then x, then z.
func Ordered(columns map[primitive.Position]*Column) []*Column {
	l := skiplist.New(skiplist.Uint64)
	for pos, c := range columns {
		l.Set(orderKey(pos), c)
	}
	out := make([]*Column, 0, l.Len())
	for el := l.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*Column))
	}
	return out
}

func orderKey(p primitive.Position) uint64 {
	return uint64(p.Dimension)<<32 | uint64(uint16(p.X)^0x8000)<<16 | uint64(uint16(p.Z)^0x8000)
}

// chunkAt returns the chunk e points at, or nil for a filler subfile.
func chunkAt(a *archive.Archive, e index.Entry) (*archive.Chunk, error) {
	if int(e.Subfile) >= len(a.Subfiles) {
		return nil, errors.Wrapf(formaterr.ErrOutOfBounds, "subfile %d of slot %d, archive has %d",
			e.Subfile, e.Slot, len(a.Subfiles))
	}
	return a.Subfiles[e.Subfile].Chunk, nil
}

// entryOffset is the byte offset of entry i inside the index file.
func entryOffset(ix *index.Index, i int) int64 {
	return int64(index.HeaderSize + len(ix.Pointers)*index.PointerSize + i*int(index.EntrySize(ix.Revision)))
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ChunkAt returns the chunk holding column position pos, or nil when the world
// has none.
func (w *World) ChunkAt(ctx context.Context, pos primitive.Position) (*archive.Chunk, error) {
	e, ok := w.index.Lookup(pos)
	if !ok || !w.HasSlot(primitive.KindCDB, int(e.Slot)) {
		return nil, nil
	}
	a, err := w.Archive(ctx, primitive.KindCDB, int(e.Slot))
	if err != nil {
		return nil, err
	}
	return chunkAt(a, e)
}

// Block returns the block at world coordinates. Anything outside stored
// chunks is air.
func (w *World) Block(ctx context.Context, x, y, z int, dimension uint8) (id, data uint8, err error) {
	cx, cz := floorDiv(x, voxel.Side), floorDiv(z, voxel.Side)
	pos := primitive.Position{X: int16(cx), Z: int16(cz), Dimension: dimension}
	if !pos.Valid() || cx != int(pos.X) || cz != int(pos.Z) {
		return 0, 0, nil
	}
	chunk, err := w.ChunkAt(ctx, pos)
	if err != nil || chunk == nil {
		return 0, 0, err
	}

	blocks := chunk.Terrain()
	if blocks == nil {
		s := chunk.Section(archive.TerrainSection)
		if s == nil {
			return 0, 0, nil
		}
		if blocks, err = voxel.Decode(s.Payload, len(s.Payload)); err != nil {
			return 0, 0, err
		}
	}
	id, data, _ = blocks.Block(x-cx*voxel.Side, y, z-cz*voxel.Side)
	return id, data, nil
}
