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
	"strconv"
	"strings"

	// third-party libraries.
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	// this project.
	"github.com/linkall-labs/mc3ds/internal/primitive"
	"github.com/linkall-labs/mc3ds/pkg/archive"
	"github.com/linkall-labs/mc3ds/pkg/world"
)

func NewWorldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "world sub-command",
		Short: "sub-commands for world save directories",
	}
	cmd.AddCommand(listWorldCommand())
	cmd.AddCommand(blockCommand())
	return cmd
}

func mustOpenWorld(cmd *cobra.Command, dir string) *world.World {
	w, err := world.Open(context.Background(), dir, cfg.worldOptions()...)
	if err != nil {
		cmdFailedf(cmd, "open world failed: %s", err)
	}
	return w
}

func listWorldCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls <dir>",
		Short: "list the slots and chunk columns of a world",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			w := mustOpenWorld(cmd, args[0])

			var columns map[primitive.Position]*world.Column
			warnings := w.Warnings()
			if showAll {
				cols, ws, err := w.Columns(ctx)
				if err != nil {
					cmdFailedf(cmd, "join index to chunks failed: %s", err)
				}
				columns, warnings = cols, append(warnings, ws...)
			}

			if IsFormatJSON(cmd) {
				printJSON(map[string]interface{}{
					"Name":     w.Name(),
					"CDBSlots": w.Slots(primitive.KindCDB),
					"VDBSlots": w.Slots(primitive.KindVDB),
					"Entries":  len(w.Index().Entries),
					"Columns":  len(columns),
					"Warnings": warningsJSON(warnings),
				})
				return
			}

			t := table.NewWriter()
			t.AppendHeader(table.Row{"Name", "Index", "Entries", "CDB Slots", "VDB Slots"})
			t.AppendRow(table.Row{w.Name(), w.Index().Revision, len(w.Index().Entries),
				slotList(w.Slots(primitive.KindCDB)), slotList(w.Slots(primitive.KindVDB))})
			render(t)

			if showAll {
				t = table.NewWriter()
				t.AppendHeader(table.Row{"Position", "Slot", "Subfile", "Sections", "Terrain"})
				for _, c := range world.Ordered(columns) {
					populated := 0
					for _, s := range c.Chunk.Sections {
						if s != nil {
							populated++
						}
					}
					t.AppendRow(table.Row{c.Entry.Position, c.Entry.Slot, c.Entry.Subfile, populated,
						c.Chunk.Section(archive.TerrainSection) != nil})
				}
				render(t)
			}
			printWarnings(cmd, warnings)
		},
	}
	cmd.Flags().BoolVar(&showAll, "columns", false, "decode every slot and list chunk columns")
	return cmd
}

func blockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "block <dir> <x> <y> <z>",
		Short: "look up the block at world coordinates",
		Args:  cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			var xyz [3]int
			for i := range xyz {
				v, err := strconv.Atoi(args[i+1])
				if err != nil {
					cmdFailedf(cmd, "invalid coordinate %q", args[i+1])
				}
				xyz[i] = v
			}
			w := mustOpenWorld(cmd, args[0])
			id, data, err := w.Block(context.Background(), xyz[0], xyz[1], xyz[2], dimension)
			if err != nil {
				cmdFailedf(cmd, "look up block failed: %s", err)
			}
			if IsFormatJSON(cmd) {
				printJSON(map[string]interface{}{"X": xyz[0], "Y": xyz[1], "Z": xyz[2], "ID": id, "Data": data})
				return
			}
			color.Green("block (%d, %d, %d) dim %d: id %d data %d", xyz[0], xyz[1], xyz[2], dimension, id, data)
		},
	}
	cmd.Flags().Uint8Var(&dimension, "dim", primitive.Overworld, "dimension, 0 overworld, 1 nether, 2 end")
	return cmd
}

func slotList(slots []int) string {
	s := make([]string, len(slots))
	for i, n := range slots {
		s[i] = strconv.Itoa(n)
	}
	return strings.Join(s, ",")
}
