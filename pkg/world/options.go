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
	// this project.
	"github.com/linkall-labs/mc3ds/pkg/archive"
)

const (
	DefaultCacheSize   = 16
	DefaultConcurrency = 4
)

type config struct {
	cacheSize   int
	concurrency int
	archiveOpts []archive.Option
}

func makeConfig(opts ...Option) config {
	cfg := config{
		cacheSize:   DefaultCacheSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cacheSize <= 0 {
		cfg.cacheSize = DefaultCacheSize
	}
	if cfg.concurrency <= 0 {
		cfg.concurrency = 1
	}
	return cfg
}

type Option func(*config)

// WithCacheSize sets how many decoded slot archives are kept in memory.
func WithCacheSize(n int) Option {
	return func(cfg *config) {
		cfg.cacheSize = n
	}
}

// WithConcurrency bounds the number of slot archives decoded at once.
func WithConcurrency(n int) Option {
	return func(cfg *config) {
		cfg.concurrency = n
	}
}

// WithArchiveOptions passes options to every archive and index decode.
func WithArchiveOptions(opts ...archive.Option) Option {
	return func(cfg *config) {
		cfg.archiveOpts = append(cfg.archiveOpts, opts...)
	}
}
