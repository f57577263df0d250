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

//go:generate mockgen -source=codec.go -destination=testing/mock_codec.go -package=testing
package compress

import (
	// standard libraries.
	stdbytes "bytes"
	"io"

	// third-party libraries.
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
)

// DefaultLevel is fixed so that Deflate output is reproducible.
const DefaultLevel = zlib.DefaultCompression

// Codec is the compression layer between section tables and payloads.
type Codec interface {
	// Inflate decompresses src, which must hold exactly one zlib stream that
	// inflates to exactly expected bytes.
	Inflate(src []byte, expected int) ([]byte, error)
	Deflate(src []byte) ([]byte, error)
}

type Option func(*zlibCodec)

func WithLevel(level int) Option {
	return func(c *zlibCodec) {
		c.level = level
	}
}

type zlibCodec struct {
	level int
}

// Make sure zlibCodec implements Codec.
var _ Codec = (*zlibCodec)(nil)

func NewZlib(opts ...Option) Codec {
	c := &zlibCodec{level: DefaultLevel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *zlibCodec) Inflate(src []byte, expected int) ([]byte, error) {
	if expected < 0 {
		return nil, errors.Wrapf(formaterr.ErrSizeMismatch, "negative expected size %d", expected)
	}

	br := stdbytes.NewReader(src)
	zr, err := zlib.NewReader(br)
	if err != nil {
		return nil, errors.Wrapf(formaterr.ErrDecompression, "zlib header: %v", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	var out stdbytes.Buffer
	out.Grow(expected)
	// One byte of slack is enough to notice an oversized stream.
	if _, err = io.Copy(&out, io.LimitReader(zr, int64(expected)+1)); err != nil {
		return nil, errors.Wrapf(formaterr.ErrDecompression, "zlib stream: %v", err)
	}
	if out.Len() != expected {
		return nil, errors.Wrapf(formaterr.ErrSizeMismatch, "inflated %d bytes, expected %d", out.Len(), expected)
	}
	if br.Len() != 0 {
		return nil, errors.Wrapf(formaterr.ErrSizeMismatch,
			"zlib stream ends %d bytes before the declared compressed size", br.Len())
	}
	return out.Bytes(), nil
}

func (c *zlibCodec) Deflate(src []byte) ([]byte, error) {
	var out stdbytes.Buffer
	zw, err := zlib.NewWriterLevel(&out, c.level)
	if err != nil {
		return nil, err
	}
	if _, err = zw.Write(src); err != nil {
		return nil, err
	}
	if err = zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
