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

package primitive

import (
	// standard libraries.
	"fmt"
	"strings"
)

const (
	MagicCDB uint32 = 0xABCDEF98
	MagicVDB uint32 = 0xABCDEF99

	FormatTagCDB uint32 = 0x4
	FormatTagVDB uint32 = 0x100
)

// Kind is the container kind of a save archive.
type Kind uint8

const (
	KindCDB Kind = iota + 1
	KindVDB
)

func (k Kind) Magic() uint32 {
	switch k {
	case KindCDB:
		return MagicCDB
	case KindVDB:
		return MagicVDB
	default:
		return 0
	}
}

// FormatTag is the FileHeader tag the packed revision stores for this kind.
func (k Kind) FormatTag() uint32 {
	switch k {
	case KindCDB:
		return FormatTagCDB
	case KindVDB:
		return FormatTagVDB
	default:
		return 0
	}
}

func (k Kind) Valid() bool {
	return k == KindCDB || k == KindVDB
}

func (k Kind) String() string {
	switch k {
	case KindCDB:
		return "cdb"
	case KindVDB:
		return "vdb"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "cdb":
		return KindCDB, nil
	case "vdb":
		return KindVDB, nil
	default:
		return 0, fmt.Errorf("unknown archive kind %q", s)
	}
}

// Revision selects one of the two on-disk layouts.
type Revision uint8

const (
	// RevisionAuto lets the codec resolve the layout from authoritative
	// header fields.
	RevisionAuto Revision = iota
	// RevisionLegacy is the older layout: a 20-byte prefix and 8 opaque
	// bytes around every subfile magic, and no positions in chunk headers.
	RevisionLegacy
	// RevisionPacked is the newer layout with bit-packed positions.
	RevisionPacked
)

func (r Revision) String() string {
	switch r {
	case RevisionAuto:
		return "auto"
	case RevisionLegacy:
		return "legacy"
	case RevisionPacked:
		return "packed"
	default:
		return fmt.Sprintf("revision(%d)", uint8(r))
	}
}

func ParseRevision(s string) (Revision, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return RevisionAuto, nil
	case "legacy", "old":
		return RevisionLegacy, nil
	case "packed", "new":
		return RevisionPacked, nil
	default:
		return 0, fmt.Errorf("unknown format revision %q", s)
	}
}

func (r *Revision) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseRevision(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
