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

// Package cmd holds the bootcheck subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/google/subcommands"
	"zeta.dev/boot/pkg/loader"
)

// fail prints an error and returns a failing exit status.
func fail(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "bootcheck: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// parseImage reads and parses the kernel image at path.
func parseImage(path string) (*loader.Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return loader.Parse(b)
}
