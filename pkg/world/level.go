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
	// third-party libraries.
	"github.com/pkg/errors"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
)

// level.dat starts with a storage version and the payload length, both u32.
const levelHeaderSize = 8

func readLevelName(data []byte) (string, error) {
	if len(data) < levelHeaderSize {
		return "", errors.Errorf("level data is %d bytes, shorter than its header", len(data))
	}
	var m map[string]interface{}
	if err := nbt.UnmarshalEncoding(data[levelHeaderSize:], &m, nbt.LittleEndian); err != nil {
		return "", errors.Wrap(err, "decode level data")
	}
	name, _ := m["LevelName"].(string)
	return name, nil
}
