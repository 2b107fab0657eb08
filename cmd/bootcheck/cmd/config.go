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

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"zeta.dev/boot/pkg/bootcfg"
)

// CheckConfig implements subcommands.Command for the "config" command.
type CheckConfig struct{}

// Name implements subcommands.Command.Name.
func (*CheckConfig) Name() string {
	return "config"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*CheckConfig) Synopsis() string {
	return "validate a boot configuration file"
}

// Usage implements subcommands.Command.Usage.
func (*CheckConfig) Usage() string {
	return `config <boot.toml>

Parses the boot configuration and prints the resolved logging levels,
kernel path and modules.

`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*CheckConfig) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*CheckConfig) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	b, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return fail("reading %s: %v", f.Arg(0), err)
	}
	cfg, err := bootcfg.Parse(b)
	if err != nil {
		return fail("parsing %s: %v", f.Arg(0), err)
	}
	global, serial, fb, err := cfg.Levels()
	if err != nil {
		return fail("resolving log levels: %v", err)
	}

	fmt.Printf("log:     global=%v serial=%v framebuffer=%v\n", global, serial, fb)
	fmt.Printf("kernel:  %s\n", cfg.Kernel.Path)
	for _, m := range cfg.Modules {
		fmt.Printf("module:  %s (%s)\n", m.Name, m.Path)
	}
	return subcommands.ExitSuccess
}
