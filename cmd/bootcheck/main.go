// Copyright 2026 The Zeta Authors.
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

// The bootcheck tool inspects kernel images the way the boot sequence
// consumes them: it parses program headers, lists relocations, and dry-runs
// the load and address-space construction against simulated memory. It is
// intended for debugging kernel link scripts without a reboot cycle.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"zeta.dev/boot/cmd/bootcheck/cmd"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(new(cmd.Segments), "")
	subcommands.Register(new(cmd.Relocs), "")
	subcommands.Register(new(cmd.Layout), "")
	subcommands.Register(new(cmd.CheckConfig), "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
