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

// Package world reads a world save directory:
//
//	<root>/level.dat
//	<root>/db/cdb/newindex.cdb (or index.cdb)
//	<root>/db/cdb/slt<N>.cdb
//	<root>/db/vdb/slt<N>.vdb
package world

import (
	// standard libraries.
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	// third-party libraries.
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/format/index"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/observability/log"
	"github.com/linkall-labs/mc3ds/observability/metrics"
	"github.com/linkall-labs/mc3ds/pkg/archive"
)

const (
	DBDir        = "db"
	IndexFile    = "index.cdb"
	NewIndexFile = "newindex.cdb"
	LevelFile    = "level.dat"
)

var (
	ErrNoIndex    = errors.New("mc3ds.world: no index file")
	ErrNoPosition = errors.New("mc3ds.world: legacy index entries carry no position")
	ErrDuplicate  = errors.New("mc3ds.world: duplicate chunk position")
)

var slotPattern = regexp.MustCompile(`^slt(\d+)\.(cdb|vdb)$`)

// File access goes through these so tests can replace them.
var (
	readFile = os.ReadFile
	readDir  = os.ReadDir
)

type cacheKey struct {
	kind primitive.Kind
	slot int
}

type World struct {
	root  string
	cfg   config
	name  string
	index *index.Index
	slots map[primitive.Kind][]int
	cache *lru.Cache

	warnings []formaterr.Warning
}

// Open scans root and decodes its index. Slot archives are decoded lazily.
func Open(ctx context.Context, root string, opts ...Option) (*World, error) {
	cfg := makeConfig(opts...)
	cache, err := lru.New(cfg.cacheSize)
	if err != nil {
		return nil, err
	}
	w := &World{
		root:  root,
		cfg:   cfg,
		cache: cache,
		slots: make(map[primitive.Kind][]int),
	}

	for _, kind := range []primitive.Kind{primitive.KindCDB, primitive.KindVDB} {
		slots, err := scanSlots(w.dir(kind), kind)
		if err != nil {
			return nil, err
		}
		w.slots[kind] = slots
	}

	if err = w.openIndex(ctx); err != nil {
		return nil, err
	}

	level := filepath.Join(root, LevelFile)
	if data, err := readFile(level); err != nil {
		log.Warning(ctx, "level data is unreadable", map[string]interface{}{
			log.KeyPath:  level,
			log.KeyError: err,
		})
	} else if w.name, err = readLevelName(data); err != nil {
		log.Warning(ctx, "level data is malformed", map[string]interface{}{
			log.KeyPath:  level,
			log.KeyError: err,
		})
	}

	log.Info(ctx, "world opened", map[string]interface{}{
		log.KeyPath: root,
		"name":      w.name,
		"cdb_slots": len(w.slots[primitive.KindCDB]),
		"vdb_slots": len(w.slots[primitive.KindVDB]),
		"entries":   len(w.index.Entries),
	})
	return w, nil
}

func (w *World) openIndex(ctx context.Context) error {
	var data []byte
	var err error
	for _, name := range []string{NewIndexFile, IndexFile} {
		data, err = readFile(filepath.Join(w.dir(primitive.KindCDB), name))
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(ErrNoIndex, "in %s", w.dir(primitive.KindCDB))
	}
	if err != nil {
		return err
	}

	ix, ws, err := archive.OpenIndex(ctx, data, w.cfg.archiveOpts...)
	if err != nil {
		return errors.Wrap(err, "decode index")
	}
	w.index = ix
	w.warnings = append(w.warnings, ws...)
	return nil
}

func scanSlots(dir string, kind primitive.Kind) ([]int, error) {
	entries, err := readDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var slots []int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := slotPattern.FindStringSubmatch(e.Name())
		if m == nil || m[2] != kind.String() {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slots = append(slots, n)
	}
	sort.Ints(slots)
	return slots, nil
}

func (w *World) dir(kind primitive.Kind) string {
	return filepath.Join(w.root, DBDir, kind.String())
}

// SlotPath returns the file holding a slot archive.
func (w *World) SlotPath(kind primitive.Kind, slot int) string {
	return filepath.Join(w.dir(kind), fmt.Sprintf("slt%d.%s", slot, kind))
}

func (w *World) Root() string {
	return w.root
}

// Name is the LevelName stored in level.dat, or empty.
func (w *World) Name() string {
	return w.name
}

func (w *World) Index() *index.Index {
	return w.index
}

// Slots lists the slot numbers present on disk, ascending.
func (w *World) Slots(kind primitive.Kind) []int {
	return w.slots[kind]
}

func (w *World) HasSlot(kind primitive.Kind, slot int) bool {
	slots := w.slots[kind]
	i := sort.SearchInts(slots, slot)
	return i < len(slots) && slots[i] == slot
}

// Warnings returns the findings collected while decoding the index.
func (w *World) Warnings() []formaterr.Warning {
	return w.warnings
}

// Archive returns a decoded slot archive, reading it on a cache miss.
func (w *World) Archive(ctx context.Context, kind primitive.Kind, slot int) (*archive.Archive, error) {
	key := cacheKey{kind: kind, slot: slot}
	if v, ok := w.cache.Get(key); ok {
		metrics.SlotCacheCounterVec.WithLabelValues(metrics.LabelValueHit).Inc()
		return v.(*archive.Archive), nil
	}
	metrics.SlotCacheCounterVec.WithLabelValues(metrics.LabelValueMiss).Inc()

	path := w.SlotPath(kind, slot)
	data, err := readFile(path)
	if err == nil {
		var a *archive.Archive
		if a, err = archive.Open(ctx, data, kind, w.cfg.archiveOpts...); err == nil {
			metrics.SlotLoadCounterVec.WithLabelValues(kind.String(), metrics.LabelValueSuccess).Inc()
			w.cache.Add(key, a)
			return a, nil
		}
	}
	metrics.SlotLoadCounterVec.WithLabelValues(kind.String(), metrics.LabelValueFail).Inc()
	log.Error(ctx, "load slot archive failed", map[string]interface{}{
		log.KeyPath:  path,
		log.KeyError: err,
	})
	return nil, errors.Wrapf(err, "slot %d (%s)", slot, path)
}

// LoadAll decodes every slot archive of kind, several at a time.
func (w *World) LoadAll(ctx context.Context, kind primitive.Kind) (map[int]*archive.Archive, error) {
	slots := w.slots[kind]
	results := make([]*archive.Archive, len(slots))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(w.cfg.concurrency)
	for i, slot := range slots {
		i, slot := i, slot
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			a, err := w.Archive(egCtx, kind, slot)
			results[i] = a
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	m := make(map[int]*archive.Archive, len(slots))
	for i, slot := range slots {
		m[slot] = results[i]
	}
	return m, nil
}
