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
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
	"github.com/linkall-labs/mc3ds/observability/log"
	"github.com/linkall-labs/mc3ds/observability/metrics"
)

// Flush encodes a back to archive bytes. Section positions, sizes and the
// subfile count are derived from the model. A RevisionAuto archive is written
// in the packed layout.
func Flush(ctx context.Context, a *Archive, opts ...Option) ([]byte, error) {
	cfg := makeConfig(opts...)
	start := time.Now()

	rev := a.Revision
	if rev == primitive.RevisionAuto {
		rev = primitive.RevisionPacked
	}
	e := &encoder{cfg: &cfg, kind: a.Kind, rev: rev}
	data, err := e.encode(a)

	metrics.ArchiveFlushCounterVec.WithLabelValues(a.Kind.String(), rev.String(), metrics.Result(err)).Inc()
	metrics.ArchiveOpSecond.WithLabelValues(a.Kind.String(), metrics.LabelValueFlush).
		Observe(time.Since(start).Seconds())
	if err != nil {
		log.Debug(ctx, "flush archive failed", map[string]interface{}{
			log.KeyKind:  a.Kind.String(),
			log.KeyError: err,
		})
		return nil, err
	}
	log.Debug(ctx, "archive flushed", map[string]interface{}{
		log.KeyKind:     a.Kind.String(),
		log.KeyRevision: rev.String(),
		log.KeySize:     len(data),
	})
	return data, nil
}

type encoder struct {
	cfg  *config
	kind primitive.Kind
	rev  primitive.Revision
}

func (e *encoder) encode(a *Archive) ([]byte, error) {
	if !a.Kind.Valid() {
		return nil, errors.Wrapf(formaterr.ErrInvalidModel, "unknown archive %s", a.Kind)
	}
	f := &container.File{
		Kind:     a.Kind,
		Revision: e.rev,
		Header:   a.Header,
		Subfiles: make([]container.Subfile, len(a.Subfiles)),
		Footer:   a.Footer,
	}
	for i := range a.Subfiles {
		s := &a.Subfiles[i]
		var data []byte
		var err error
		switch {
		case s.Chunk != nil && s.Record != nil:
			err = errors.Wrap(formaterr.ErrInvalidModel, "subfile holds both a chunk and a record")
		case s.Chunk != nil:
			data, err = e.encodeChunk(s.Chunk)
		case s.Record != nil:
			data, err = e.encodeRecord(s.Record)
		case i == 0:
			err = errors.Wrap(formaterr.ErrInvalidModel, "the first subfile cannot be filler")
		default:
			data = s.Filler
		}
		if err != nil {
			return nil, formaterr.Locate(err, i, f.Offset(i))
		}
		f.Subfiles[i] = container.Subfile{Prefix: s.Prefix, Data: data}
	}
	return container.Write(f)
}

func (e *encoder) encodeChunk(c *Chunk) ([]byte, error) {
	if e.kind != primitive.KindCDB {
		return nil, errors.Wrapf(formaterr.ErrInvalidModel, "chunk in a %s archive", e.kind)
	}
	h := section.Header{
		Legacy:     c.Legacy,
		Position:   c.Position,
		Parameters: c.Parameters,
		Unknown:    c.Unknown,
	}
	var payloads [section.Count][]byte
	for slot, s := range c.Sections {
		switch {
		case s == nil:
			h.Entries[slot] = section.EmptyEntry
			continue
		case s.Raw != nil:
			if s.Raw.Consistent() {
				return nil, errors.Wrapf(formaterr.ErrInvalidModel, "section slot %d keeps a raw entry with consistent sentinels", slot)
			}
			h.Entries[slot] = *s.Raw
			continue
		case s.Index == section.EmptyEntry.Index:
			return nil, errors.Wrapf(formaterr.ErrInvalidModel, "section slot %d has the empty index %d", slot, s.Index)
		}

		raw, err := s.Bytes()
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return nil, errors.Wrapf(formaterr.ErrInvalidModel, "section slot %d is empty, use a nil section", slot)
		}
		compressed, err := e.cfg.codec.Deflate(raw)
		if err != nil {
			return nil, err
		}
		metrics.DeflatedByteCounterVec.WithLabelValues(e.kind.String()).Add(float64(len(compressed)))
		h.Entries[slot] = section.Entry{
			Index:            s.Index,
			CompressedSize:   int32(len(compressed)),
			DecompressedSize: int32(len(raw)),
		}
		payloads[slot] = compressed
	}
	end := h.Layout()

	w := bytes.NewWriter(end)
	w.Uint32(e.kind.Magic())
	if e.rev == primitive.RevisionLegacy {
		reserved := c.Reserved
		if len(reserved) > container.LegacyReservedSize {
			return nil, errors.Wrapf(formaterr.ErrInvalidModel, "%d reserved bytes, expected %d",
				len(reserved), container.LegacyReservedSize)
		}
		w.Write(reserved)
		w.Zero(container.LegacyReservedSize - len(reserved))
	}
	if err := h.Encode(w, e.rev); err != nil {
		return nil, errors.Wrap(formaterr.ErrInvalidModel, err.Error())
	}
	for _, p := range payloads {
		w.Write(p)
	}
	return w.Bytes(), nil
}

func (e *encoder) encodeRecord(r *Record) ([]byte, error) {
	if e.kind != primitive.KindVDB {
		return nil, errors.Wrapf(formaterr.ErrInvalidModel, "record in a %s archive", e.kind)
	}
	w := bytes.NewWriter(container.MagicSize + r.Header.Size() + len(r.Payload))
	w.Uint32(e.kind.Magic())
	if err := r.Header.Encode(w); err != nil {
		return nil, err
	}
	w.Write(r.Payload)
	return w.Bytes(), nil
}
