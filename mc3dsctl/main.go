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

// mc3dsctl is a command line application that reads and checks the world
// saves of the Minecraft 3DS edition.
package main

import (
	// standard libraries.
	"fmt"
	"os"

	// third-party libraries.
	"github.com/spf13/cobra"

	// this project.
	"github.com/linkall-labs/mc3ds/mc3dsctl/command"
)

const (
	cliName        = "mc3dsctl"
	cliDescription = "the command-line tool for Minecraft 3DS world saves"
)

var rootCmd = &cobra.Command{
	Use:        cliName,
	Short:      cliDescription,
	SuggestFor: []string{"mc3ds"},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		command.InitGlobal(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		command.FinishGlobal(cmd)
	},
}

func init() {
	cobra.EnablePrefixMatching = true

	command.AddGlobalFlags(rootCmd)
	rootCmd.AddCommand(
		command.NewArchiveCommand(),
		command.NewIndexCommand(),
		command.NewWorldCommand(),
		command.NewExtractCommand(),
		newVersionCommand(),
	)
}

func main() {
	MustStart()
}

func Start() error {
	return rootCmd.Execute()
}

func MustStart() {
	if err := Start(); err != nil {
		fmt.Printf("mc3dsctl error: %s\n", err)
		os.Exit(-1)
	}
}
