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
	"debug/elf"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// Relocs implements subcommands.Command for the "relocs" command.
type Relocs struct {
	all bool
}

// Name implements subcommands.Command.Name.
func (*Relocs) Name() string {
	return "relocs"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Relocs) Synopsis() string {
	return "list the base-relative relocations of a kernel image"
}

// Usage implements subcommands.Command.Usage.
func (*Relocs) Usage() string {
	return `relocs <image>

Lists the relocation entries the boot sequence would apply. Entries of any
kind other than R_X86_64_RELATIVE are flagged: the sequence refuses to boot
such an image.

OPTIONS:
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (r *Relocs) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.all, "all", false, "print every entry instead of only the summary and unsupported kinds")
}

// Execute implements subcommands.Command.Execute.
func (r *Relocs) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	img, err := parseImage(f.Arg(0))
	if err != nil {
		return fail("parsing %s: %v", f.Arg(0), err)
	}
	rels, err := img.Relocations()
	if err != nil {
		return fail("reading relocations: %v", err)
	}

	unsupported := 0
	for _, e := range rels {
		if e.Kind != elf.R_X86_64_RELATIVE {
			unsupported++
			fmt.Printf("off=%#x kind=%v addend=%#x UNSUPPORTED\n", uintptr(e.Off), e.Kind, e.Addend)
		} else if r.all {
			fmt.Printf("off=%#x kind=%v addend=%#x\n", uintptr(e.Off), e.Kind, e.Addend)
		}
	}
	fmt.Printf("%d relocations, %d unsupported\n", len(rels), unsupported)
	if unsupported > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
