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
	"fmt"
	"os"
	"path/filepath"

	// third-party libraries.
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	// this project.
	"github.com/linkall-labs/mc3ds/observability/log"
	"github.com/linkall-labs/mc3ds/pkg/archive"
)

func NewExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "write the inflated section payloads of an archive to a directory",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			k, err := archiveKind(kind, args[0])
			if err != nil {
				cmdFailedf(cmd, "%s", err)
			}
			data := mustReadFile(cmd, args[0])
			ctx := context.Background()
			opts := append(cfg.archiveOptions(), archive.WithBlockDecoding(false))
			a, err := archive.Open(ctx, data, k, opts...)
			if err != nil {
				cmdFailedf(cmd, "open archive failed: %s", err)
			}

			dir := outputDir
			if dir == "" {
				dir = filepath.Base(args[0]) + ".d"
			}
			n, err := extractArchive(ctx, a, dir)
			if err != nil {
				cmdFailedf(cmd, "extract failed: %s", err)
			}
			if IsFormatJSON(cmd) {
				printJSON(map[string]interface{}{"Directory": dir, "Files": n})
				return
			}
			color.Green("%d file(s) written to %s", n, dir)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "archive kind, cdb or vdb, defaults to the file extension")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory, defaults to <file>.d")
	return cmd
}

// extractArchive writes one file per section payload, named
// <subfile>/<slot>_<index>.bin, and one <subfile>.bin per VDB record.
func extractArchive(ctx context.Context, a *archive.Archive, dir string) (int, error) {
	n := 0
	for i := range a.Subfiles {
		s := &a.Subfiles[i]
		switch {
		case s.Record != nil:
			if err := writePayload(filepath.Join(dir, fmt.Sprintf("%d.bin", i)), s.Record.Payload); err != nil {
				return n, err
			}
			n++
		case s.Chunk != nil:
			for slot, sec := range s.Chunk.Sections {
				if sec == nil || sec.Raw != nil {
					continue
				}
				payload, err := sec.Bytes()
				if err != nil {
					return n, errors.Wrapf(err, "subfile %d slot %d", i, slot)
				}
				name := filepath.Join(dir, fmt.Sprint(i), fmt.Sprintf("%d_%d.bin", slot, sec.Index))
				if err = writePayload(name, payload); err != nil {
					return n, err
				}
				n++
			}
		}
	}
	log.Info(ctx, "archive extracted", map[string]interface{}{
		log.KeyPath: dir,
		"files":     n,
	})
	return n, nil
}

func writePayload(name string, payload []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return os.WriteFile(name, payload, 0o644)
}
