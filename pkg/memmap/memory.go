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

package memmap

import (
	"fmt"

	"zeta.dev/boot/pkg/arch"
)

// SimMemory is a Memory backed by an ordinary byte slice standing in for the
// physical range [base, base+len(buf)). It is what tests and host-side
// tooling load kernels into.
type SimMemory struct {
	BumpAllocator
	base uintptr
	buf  []byte
}

// NewSimMemory simulates size bytes of conventional memory starting at the
// physical address base. base and size must be page-aligned.
func NewSimMemory(base uintptr, size int) *SimMemory {
	if !arch.Addr(base).IsPageAligned() || size%arch.PageSize != 0 {
		panic(fmt.Sprintf("simulated memory [%#x, +%#x) is not page-aligned", base, size))
	}
	m := &SimMemory{base: base, buf: make([]byte, size)}
	m.BumpAllocator = *NewBumpAllocator(Map{{Start: base, End: base + uintptr(size), Type: Conventional}})
	return m
}

// Slice implements Memory.Slice. Out-of-range access is a caller bug, not an
// input error, and panics.
func (m *SimMemory) Slice(base uintptr, length int) []byte {
	off := base - m.base
	if base < m.base || int(off)+length > len(m.buf) {
		panic(fmt.Sprintf("physical access [%#x, +%#x) outside simulated memory [%#x, +%#x)",
			base, length, m.base, len(m.buf)))
	}
	return m.buf[off : int(off)+length]
}
