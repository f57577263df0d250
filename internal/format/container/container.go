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

package container

import (
	// standard libraries.
	"encoding/binary"

	// third-party libraries.
	"github.com/pkg/errors"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/lib/bytes"
)

// Subfile is one fixed-size segment of an archive.
type Subfile struct {
	// Prefix holds the legacy bytes in front of the magic. It is nil for
	// subfile 0, whose prefix is the file header, and for packed archives.
	Prefix []byte
	// Data runs from the magic to the end of the subfile. After Read it
	// aliases the input buffer.
	Data []byte
}

func (s *Subfile) Magic() uint32 {
	if len(s.Data) < MagicSize {
		return 0
	}
	return binary.LittleEndian.Uint32(s.Data)
}

// Filler reports a subfile whose header is zeroed. Such subfiles hold no chunk
// and are carried verbatim.
func (s *Subfile) Filler() bool {
	return s.Magic() == 0
}

type File struct {
	Kind     primitive.Kind
	Revision primitive.Revision
	Header   FileHeader
	Subfiles []Subfile
	Footer   []byte
}

// Offset returns the absolute offset of subfile i's magic.
func (f *File) Offset(i int) int64 {
	return int64(archiveBase(f.Revision)) + int64(i)*int64(f.Header.SubfileSize) + int64(PrefixSize(f.Revision))
}

// Read frames data as an archive of the given kind.
func Read(data []byte, kind primitive.Kind, hint primitive.Revision) (*File, error) {
	if !kind.Valid() {
		return nil, errors.Wrapf(formaterr.ErrInvalidModel, "unknown archive %s", kind)
	}
	if len(data) < FileHeaderSize {
		return nil, formaterr.Locate(errors.Wrapf(formaterr.ErrTruncatedArchive,
			"%d bytes cannot hold a file header", len(data)), formaterr.NoSubfile, 0)
	}

	h, err := ReadFileHeader(bytes.NewReader(data))
	if err != nil {
		return nil, formaterr.Locate(err, formaterr.NoSubfile, 0)
	}
	rev := ResolveRevision(h, kind, hint)
	base, prefix := archiveBase(rev), PrefixSize(rev)
	count, size := int64(h.SubfileCount), int64(h.SubfileSize)

	if count == 0 {
		return nil, formaterr.Locate(errors.Wrap(formaterr.ErrTruncatedArchive, "archive declares no subfiles"),
			formaterr.NoSubfile, 4)
	}
	if size < int64(prefix+SubfileHeaderSize(rev)) {
		return nil, formaterr.Locate(errors.Wrapf(formaterr.ErrTruncatedArchive,
			"subfile size %d cannot hold a %s subfile header", size, rev), formaterr.NoSubfile, 12)
	}
	required := int64(base) + count*size
	if int64(len(data)) < required {
		return nil, formaterr.Locate(errors.Wrapf(formaterr.ErrTruncatedArchive,
			"%d subfiles of %d bytes need %d bytes, have %d", count, size, required, len(data)),
			formaterr.NoSubfile, int64(len(data)))
	}

	f := &File{
		Kind:     kind,
		Revision: rev,
		Header:   h,
		Subfiles: make([]Subfile, count),
		Footer:   data[required:],
	}
	for i := range f.Subfiles {
		start := int64(base) + int64(i)*size
		raw := data[start : start+size]
		sf := &f.Subfiles[i]
		if prefix > 0 && i > 0 {
			sf.Prefix = raw[:prefix]
		}
		sf.Data = raw[prefix:]

		switch magic := sf.Magic(); {
		case magic == kind.Magic():
		case magic == 0 && i > 0:
		default:
			return nil, formaterr.Locate(errors.Wrapf(formaterr.ErrInvalidMagic,
				"magic %#08x, expected %#08x for %s", magic, kind.Magic(), kind), i, start+int64(prefix))
		}
	}
	return f, nil
}

// Write assembles f. The subfile count is taken from the model. The stored
// subfile size is kept while every subfile fits and grows to the largest
// subfile otherwise.
func Write(f *File) ([]byte, error) {
	if len(f.Subfiles) == 0 {
		return nil, errors.Wrap(formaterr.ErrInvalidModel, "archive has no subfiles")
	}
	rev := f.Revision
	if rev == primitive.RevisionAuto {
		rev = primitive.RevisionPacked
	}
	base, prefix := archiveBase(rev), PrefixSize(rev)

	need := 0
	for i := range f.Subfiles {
		if n := prefix + len(f.Subfiles[i].Data); n > need {
			need = n
		}
	}

	h := f.Header
	h.SubfileCount = uint32(len(f.Subfiles))
	size := int(h.SubfileSize)
	if size < need {
		size = need
	}
	h.SubfileSize = uint32(size)
	if rev == primitive.RevisionPacked && h.FormatTag == 0 {
		h.FormatTag = f.Kind.FormatTag()
	}

	w := bytes.NewWriter(base + len(f.Subfiles)*size + len(f.Footer))
	if rev == primitive.RevisionPacked {
		h.WriteTo(w)
	}
	for i := range f.Subfiles {
		sf := &f.Subfiles[i]
		end := w.Len() + size
		if rev == primitive.RevisionLegacy {
			if i == 0 {
				h.WriteTo(w)
			} else {
				p := sf.Prefix
				if len(p) > LegacyPrefixSize {
					p = p[:LegacyPrefixSize]
				}
				w.Write(p)
				w.Zero(LegacyPrefixSize - len(p))
			}
		}
		w.Write(sf.Data)
		w.Zero(end - w.Len())
	}
	w.Write(f.Footer)
	return w.Bytes(), nil
}
