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

package command

import (
	// standard libraries.
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	// third-party libraries.
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	// this project.
	formaterr "github.com/linkall-labs/mc3ds/internal/format/errors"
	"github.com/linkall-labs/mc3ds/internal/primitive"
)

func cmdFailedf(cmd *cobra.Command, format string, a ...interface{}) {
	errStr := format
	if a != nil {
		errStr = fmt.Sprintf(format, a...)
	}
	if IsFormatJSON(cmd) {
		m := map[string]string{"ERROR": errStr}
		data, _ := json.Marshal(m)
		color.Red(string(data))
	} else {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"ERROR"})
		t.AppendRow(table.Row{errStr})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, VAlign: text.VAlignMiddle, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
		})
		t.SetOutputMirror(os.Stdout)
		t.Render()
	}

	os.Exit(-1)
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	color.Green(string(data))
}

func render(t table.Writer) {
	t.SetOutputMirror(os.Stdout)
	t.Render()
}

// archiveKind takes the kind from --kind, falling back to the file extension.
func archiveKind(flag, path string) (primitive.Kind, error) {
	if flag != "" {
		return primitive.ParseKind(flag)
	}
	return primitive.ParseKind(filepath.Ext(path))
}

func mustReadFile(cmd *cobra.Command, path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		cmdFailedf(cmd, "read %s failed: %s", path, err)
	}
	return data
}

func printWarnings(cmd *cobra.Command, warnings []formaterr.Warning) {
	if len(warnings) == 0 || IsFormatJSON(cmd) {
		return
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Warning", "Subfile", "Offset", "Detail"})
	for _, w := range warnings {
		t.AppendRow(table.Row{w.Kind, subfileCell(w.Subfile), fmt.Sprintf("0x%X", w.Offset), w.Detail})
	}
	color.Yellow("%d warning(s)", len(warnings))
	render(t)
}

func warningsJSON(warnings []formaterr.Warning) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, map[string]interface{}{
			"Kind":    w.Kind.Error(),
			"Subfile": w.Subfile,
			"Offset":  w.Offset,
			"Detail":  w.Detail,
		})
	}
	return out
}

func subfileCell(i int) string {
	if i == formaterr.NoSubfile {
		return "-"
	}
	return fmt.Sprint(i)
}
