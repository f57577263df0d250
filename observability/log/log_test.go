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

package log

import (
	// standard libraries.
	stdbytes "bytes"
	"context"
	"os"
	"testing"

	// third-party libraries.
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("level filtering", t, func() {
		buf := &stdbytes.Buffer{}
		SetLogWriter(buf)
		defer SetLogWriter(os.Stderr)
		defer SetLogLevel("info")

		SetLogLevel("warn")
		Info(context.Background(), "hidden", map[string]interface{}{KeySlot: 1})
		So(buf.Len(), ShouldEqual, 0)

		Warning(context.Background(), "shown", map[string]interface{}{KeySlot: 1})
		So(buf.String(), ShouldContainSubstring, "shown")
		So(buf.String(), ShouldContainSubstring, "slot=1")

		buf.Reset()
		Info(context.Background(), "", nil)
		So(buf.Len(), ShouldEqual, 0)
	})
}
