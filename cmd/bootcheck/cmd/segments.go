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

	"github.com/google/subcommands"
)

// Segments implements subcommands.Command for the "segments" command.
type Segments struct{}

// Name implements subcommands.Command.Name.
func (*Segments) Name() string {
	return "segments"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Segments) Synopsis() string {
	return "print the loadable segments of a kernel image"
}

// Usage implements subcommands.Command.Usage.
func (*Segments) Usage() string {
	return `segments <image>

Parses the kernel image and prints its entry point, link base, and the
program headers the loader would place, with their page-rounded ranges.

`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Segments) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (*Segments) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	img, err := parseImage(f.Arg(0))
	if err != nil {
		return fail("parsing %s: %v", f.Arg(0), err)
	}

	fmt.Printf("entry:     %#x\n", uintptr(img.Entry))
	fmt.Printf("link base: %#x\n", uintptr(img.LinkBase))
	for _, seg := range img.Segments {
		r, _ := seg.PageRange()
		fmt.Printf("%-10v vaddr=%#x off=%#x filesz=%#x memsz=%#x %v pages=%v\n",
			seg.Type, uintptr(seg.Vaddr), seg.Off, seg.Filesz, seg.Memsz, seg.Access, r)
	}
	if img.Dynamic != nil {
		fmt.Printf("%-10v vaddr=%#x off=%#x filesz=%#x\n",
			img.Dynamic.Type, uintptr(img.Dynamic.Vaddr), img.Dynamic.Off, img.Dynamic.Filesz)
	}
	return subcommands.ExitSuccess
}
