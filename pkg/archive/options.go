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
	// this project.
	"github.com/linkall-labs/mc3ds/internal/format/compress"
	"github.com/linkall-labs/mc3ds/internal/primitive"
)

type config struct {
	revision     primitive.Revision
	codec        compress.Codec
	decodeBlocks bool
}

func defaultConfig() config {
	return config{
		revision:     primitive.RevisionAuto,
		codec:        compress.NewZlib(),
		decodeBlocks: true,
	}
}

func makeConfig(opts ...Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type Option func(*config)

// WithRevision forces a format revision instead of detecting it.
func WithRevision(rev primitive.Revision) Option {
	return func(cfg *config) {
		cfg.revision = rev
	}
}

func WithCompressor(codec compress.Codec) Option {
	return func(cfg *config) {
		cfg.codec = codec
	}
}

// WithBlockDecoding controls whether terrain sections are decoded into
// BlockData or kept as inflated bytes.
func WithBlockDecoding(enabled bool) Option {
	return func(cfg *config) {
		cfg.decodeBlocks = enabled
	}
}
