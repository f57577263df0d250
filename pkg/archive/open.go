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
	"time"

	// third-party libraries.
	"github.com/pkg/errors"

	// this project.
	"github.com/linkall-labs/mc3ds/internal/format/container"
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/format/section"
	"github.com/linkall-labs/mc3ds/internal/format/vdb"
	"github.com/linkall-labs/mc3ds/internal/format/voxel"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
	"github.com/linkall-labs/mc3ds/observability/log"
	"github.com/linkall-labs/mc3ds/observability/metrics"
)

// Open decodes an archive of the given kind. Fatal errors carry the subfile
// and byte offset of the fault; see formaterr.Location.
func Open(ctx context.Context, data []byte, kind primitive.Kind, opts ...Option) (*Archive, error) {
	cfg := makeConfig(opts...)
	start := time.Now()

	d := &decoder{cfg: &cfg, kind: kind}
	a, err := d.decode(data)

	rev := cfg.revision
	if a != nil {
		rev = a.Revision
	}
	metrics.ArchiveOpenCounterVec.WithLabelValues(kind.String(), rev.String(), metrics.Result(err)).Inc()
	metrics.ArchiveOpSecond.WithLabelValues(kind.String(), metrics.LabelValueOpen).
		Observe(time.Since(start).Seconds())
	if err != nil {
		log.Debug(ctx, "open archive failed", map[string]interface{}{
			log.KeyKind:  kind.String(),
			log.KeyError: err,
		})
		return nil, err
	}

	logWarnings(ctx, kind, a.Warnings)
	log.Debug(ctx, "archive opened", map[string]interface{}{
		log.KeyKind:     kind.String(),
		log.KeyRevision: a.Revision.String(),
		"subfiles":      len(a.Subfiles),
		"warnings":      len(a.Warnings),
	})
	return a, nil
}

func logWarnings(ctx context.Context, kind primitive.Kind, ws []formaterr.Warning) {
	for _, w := range ws {
		metrics.WarningCounterVec.WithLabelValues(w.Kind.Error()).Inc()
		log.Warning(ctx, "suspicious archive data", map[string]interface{}{
			log.KeyKind:    kind.String(),
			log.KeyWarning: w.Kind.Error(),
			log.KeySubfile: w.Subfile,
			log.KeyOffset:  w.Offset,
			"detail":       w.Detail,
		})
	}
}

type decoder struct {
	cfg  *config
	kind primitive.Kind

	rev      primitive.Revision
	subfile  int
	base     int64
	warnings []formaterr.Warning
}

// fail locates err at off bytes past the magic of the current subfile.
func (d *decoder) fail(err error, off int) error {
	return formaterr.Locate(err, d.subfile, d.base+int64(off))
}

func (d *decoder) decode(data []byte) (*Archive, error) {
	f, err := container.Read(data, d.kind, d.cfg.revision)
	if err != nil {
		return nil, err
	}
	d.rev = f.Revision

	a := &Archive{
		Kind:     d.kind,
		Revision: f.Revision,
		Header:   f.Header,
		Subfiles: make([]Subfile, len(f.Subfiles)),
		Footer:   cloneBytes(f.Footer),
	}
	for i := range f.Subfiles {
		sf := &f.Subfiles[i]
		out := &a.Subfiles[i]
		d.subfile, d.base = i, f.Offset(i)
		out.Prefix = cloneBytes(sf.Prefix)

		typ := metrics.LabelValueFiller
		switch {
		case sf.Filler():
			out.Filler = cloneBytes(sf.Data)
		case d.kind == primitive.KindCDB:
			typ = metrics.LabelValueChunk
			if out.Chunk, err = d.decodeChunk(sf.Data); err != nil {
				return nil, err
			}
		default:
			typ = metrics.LabelValueRecord
			if out.Record, err = d.decodeRecord(sf.Data); err != nil {
				return nil, err
			}
		}
		metrics.SubfileCounterVec.WithLabelValues(d.kind.String(), typ).Inc()
	}
	a.Warnings = d.warnings
	return a, nil
}

func (d *decoder) decodeChunk(data []byte) (*Chunk, error) {
	r := bytes.NewReader(data)
	_ = r.Skip(container.MagicSize)

	c := &Chunk{}
	var err error
	if d.rev == primitive.RevisionLegacy {
		if c.Reserved, err = r.Clone(container.LegacyReservedSize); err != nil {
			return nil, d.fail(err, r.Offset())
		}
	}
	h, ws, err := section.Decode(r, d.rev)
	if err != nil {
		return nil, d.fail(err, r.Offset())
	}
	d.warnings = append(d.warnings, formaterr.Relocate(ws, d.subfile, d.base)...)
	c.Legacy = h.Legacy
	c.Position = h.Position
	c.Parameters = h.Parameters
	c.Unknown = h.Unknown

	for slot, e := range h.Entries {
		switch {
		case e.Empty():
			continue
		case !e.Consistent():
			raw := e
			c.Sections[slot] = &Section{Index: e.Index, Raw: &raw}
			continue
		}

		rg, ok := section.Resolve(e)
		if !ok || rg.Start() < section.DataOffset || rg.End() > len(data) {
			return nil, d.fail(errors.Wrapf(formaterr.ErrOutOfBounds,
				"section slot %d (%s) lies outside the %d byte subfile", slot, e, len(data)),
				container.SubfileHeaderSize(d.rev)+section.EntryOffset(d.rev, slot))
		}
		payload, err := d.cfg.codec.Inflate(data[rg.Start():rg.End()], int(e.DecompressedSize))
		if err != nil {
			return nil, d.fail(err, rg.Start())
		}
		metrics.InflatedByteCounterVec.WithLabelValues(d.kind.String()).Add(float64(len(payload)))

		s := &Section{Index: e.Index}
		if e.Index == TerrainSection && d.cfg.decodeBlocks {
			if s.Blocks, err = voxel.Decode(payload, int(e.DecompressedSize)); err != nil {
				return nil, d.fail(err, rg.Start())
			}
		} else {
			s.Payload = payload
		}
		c.Sections[slot] = s
	}
	return c, nil
}

func (d *decoder) decodeRecord(data []byte) (*Record, error) {
	r := bytes.NewReader(data)
	_ = r.Skip(container.MagicSize)
	h, err := vdb.Decode(r)
	if err != nil {
		return nil, d.fail(err, r.Offset())
	}
	return &Record{Header: h, Payload: cloneBytes(r.Rest())}, nil
}
