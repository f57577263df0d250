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

package archive

import (
	// standard libraries.
	"context"

	// this project.
	"github.com/linkall-labs/mc3ds/internal/format/container"
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/format/section"
	"github.com/linkall-labs/mc3ds/internal/format/vdb"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

// Report describes an archive without inflating any section.
type Report struct {
	Kind       primitive.Kind
	Revision   primitive.Revision
	Header     container.FileHeader
	Subfiles   []SubfileSummary
	FooterSize int
	Warnings   []formaterr.Warning
}

type SubfileSummary struct {
	Index  int
	Offset int64
	Filler bool

	// Chunk header fields, CDB only.
	Position primitive.Position
	Sections [section.Count]section.Entry

	// Record header, VDB only.
	Record *vdb.Header
}

// Populated returns the number of non-empty section slots.
func (s *SubfileSummary) Populated() int {
	n := 0
	for _, e := range s.Sections {
		if !e.Empty() {
			n++
		}
	}
	return n
}

// CompressedSize sums the compressed sizes of consistent sections.
func (s *SubfileSummary) CompressedSize() int {
	n := 0
	for _, e := range s.Sections {
		if _, ok := section.Resolve(e); ok {
			n += int(e.CompressedSize)
		}
	}
	return n
}

// Inspect reads the container framing and every subfile header.
func Inspect(ctx context.Context, data []byte, kind primitive.Kind, opts ...Option) (*Report, error) {
	cfg := makeConfig(opts...)
	f, err := container.Read(data, kind, cfg.revision)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Kind:       kind,
		Revision:   f.Revision,
		Header:     f.Header,
		Subfiles:   make([]SubfileSummary, len(f.Subfiles)),
		FooterSize: len(f.Footer),
	}
	for i := range f.Subfiles {
		sf := &f.Subfiles[i]
		sum := &rep.Subfiles[i]
		sum.Index, sum.Offset, sum.Filler = i, f.Offset(i), sf.Filler()
		if sum.Filler {
			continue
		}

		r := bytes.NewReader(sf.Data)
		_ = r.Skip(container.MagicSize)
		if kind == primitive.KindVDB {
			h, err := vdb.Decode(r)
			if err != nil {
				return nil, formaterr.Locate(err, i, sum.Offset+int64(r.Offset()))
			}
			sum.Record = &h
			continue
		}
		if f.Revision == primitive.RevisionLegacy {
			_ = r.Skip(container.LegacyReservedSize)
		}
		h, ws, err := section.Decode(r, f.Revision)
		if err != nil {
			return nil, formaterr.Locate(err, i, sum.Offset+int64(r.Offset()))
		}
		sum.Position = h.Position
		sum.Sections = h.Entries
		rep.Warnings = append(rep.Warnings, formaterr.Relocate(ws, i, sum.Offset)...)
	}
	logWarnings(ctx, kind, rep.Warnings)
	return rep, nil
}
