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
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/format/index"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/observability/log"
)

// OpenIndex decodes a CDB index file. WithRevision restricts the entry layouts
// tried; the default tries packed, then legacy.
func OpenIndex(ctx context.Context, data []byte, opts ...Option) (*index.Index, []formaterr.Warning, error) {
	cfg := makeConfig(opts...)
	ix, ws, err := index.Decode(data, cfg.revision)
	if err != nil {
		log.Debug(ctx, "open index failed", map[string]interface{}{
			log.KeyError: err,
		})
		return nil, nil, err
	}
	logWarnings(ctx, primitive.KindCDB, ws)
	log.Debug(ctx, "index opened", map[string]interface{}{
		log.KeyRevision: ix.Revision.String(),
		"entries":       len(ix.Entries),
		"pointers":      len(ix.Pointers),
	})
	return ix, ws, nil
}

// FlushIndex encodes ix; counts and the entry size are derived.
func FlushIndex(ix *index.Index) ([]byte, error) {
	return index.Encode(ix)
}
