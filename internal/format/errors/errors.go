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

// Package errors defines the error kinds shared by the format codecs.
//
// Fatal kinds abort decoding of the current archive and reach the caller
// wrapped with a Located record. Warning kinds never abort; they are collected
// as Warning values next to the decoded model.
package errors

import (
	// standard libraries.
	"fmt"

	// third-party libraries.
	"github.com/pkg/errors"

	// this project.
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

// Fatal kinds.
var (
	ErrOutOfBounds              = bytes.ErrOutOfBounds
	ErrInvalidMagic             = errors.New("mc3ds: invalid magic")
	ErrTruncatedArchive         = errors.New("mc3ds: truncated archive")
	ErrTruncatedBlockData       = errors.New("mc3ds: truncated block data")
	ErrUnsupportedIndexRevision = errors.New("mc3ds: unsupported index revision")
	ErrSizeMismatch             = errors.New("mc3ds: size mismatch")
	ErrDecompression            = errors.New("mc3ds: decompression failed")
	ErrInvalidModel             = errors.New("mc3ds: invalid model")
)

// Warning kinds.
var (
	ErrInconsistentSectionSentinel = errors.New("mc3ds: inconsistent section sentinel")
	ErrUnexpectedConstant          = errors.New("mc3ds: unexpected constant")
	ErrPositionMismatch            = errors.New("mc3ds: position mismatch")
)

// NoSubfile marks locations outside any subfile, such as the index file.
const NoSubfile = -1

// Located records where in an archive a fatal error was detected.
type Located struct {
	Subfile int
	Offset  int64
	err     error
}

func (e *Located) Error() string {
	if e.Subfile == NoSubfile {
		return fmt.Sprintf("at offset %#x: %v", e.Offset, e.err)
	}
	return fmt.Sprintf("subfile %d, offset %#x: %v", e.Subfile, e.Offset, e.err)
}

func (e *Located) Unwrap() error {
	return e.err
}

func (e *Located) Cause() error {
	return e.err
}

// Locate attaches a location to err. The innermost location wins, so an error
// that is already located is returned unchanged.
func Locate(err error, subfile int, offset int64) error {
	if err == nil {
		return nil
	}
	var l *Located
	if errors.As(err, &l) {
		return err
	}
	return &Located{Subfile: subfile, Offset: offset, err: err}
}

// Location returns the recorded location of err, if any.
func Location(err error) (subfile int, offset int64, ok bool) {
	var l *Located
	if !errors.As(err, &l) {
		return NoSubfile, 0, false
	}
	return l.Subfile, l.Offset, true
}

// RevisionError reports an index whose entry size matches no known layout.
type RevisionError struct {
	EntrySize uint32
}

func (e *RevisionError) Error() string {
	return fmt.Sprintf("%v: entry size %d", ErrUnsupportedIndexRevision, e.EntrySize)
}

func (e *RevisionError) Is(target error) bool {
	return target == ErrUnsupportedIndexRevision //nolint:errorlint // sentinel comparison
}

// Warning is a non-fatal finding. Parsing continues and the offending data is
// preserved as read.
type Warning struct {
	Kind    error
	Subfile int
	Offset  int64
	Detail  string
}

func (w Warning) String() string {
	if w.Subfile == NoSubfile {
		return fmt.Sprintf("%v at offset %#x: %s", w.Kind, w.Offset, w.Detail)
	}
	return fmt.Sprintf("%v in subfile %d at offset %#x: %s", w.Kind, w.Subfile, w.Offset, w.Detail)
}

// Relocate returns copies of ws with subfile set and base added to every
// offset.
func Relocate(ws []Warning, subfile int, base int64) []Warning {
	out := make([]Warning, len(ws))
	for i, w := range ws {
		w.Subfile = subfile
		w.Offset += base
		out[i] = w
	}
	return out
}
