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
	"context"

	// third-party libraries.
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	// this project.
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/pkg/archive"
)

func NewIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index sub-command",
		Short: "sub-commands for index.cdb and newindex.cdb",
	}
	cmd.AddCommand(listIndexCommand())
	return cmd
}

func listIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <file>",
		Short: "list index entries",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data := mustReadFile(cmd, args[0])
			ix, warnings, err := archive.OpenIndex(context.Background(), data, cfg.archiveOptions()...)
			if err != nil {
				cmdFailedf(cmd, "decode index failed: %s", err)
			}

			if IsFormatJSON(cmd) {
				printJSON(map[string]interface{}{
					"Revision": ix.Revision.String(),
					"Pointers": ix.Pointers,
					"Entries":  ix.Entries,
					"Warnings": warningsJSON(warnings),
				})
				return
			}

			packed := ix.Revision == primitive.RevisionPacked
			t := table.NewWriter()
			if packed {
				t.AppendHeader(table.Row{"#", "Slot", "Subfile", "Position", "Parameters"})
			} else {
				t.AppendHeader(table.Row{"#", "Slot", "Subfile", "Unknown0", "Unknown1", "Unknown4"})
			}
			for i, e := range ix.Entries {
				if packed {
					t.AppendRow(table.Row{i, e.Slot, e.Subfile, e.Position, e.Parameters})
				} else {
					t.AppendRow(table.Row{i, e.Slot, e.Subfile, e.Unknown0, e.Unknown1, e.Unknown4})
				}
			}
			t.AppendFooter(table.Row{"", "", "", ix.Revision, len(ix.Entries)})
			render(t)
			printWarnings(cmd, warnings)
		},
	}
	return cmd
}
