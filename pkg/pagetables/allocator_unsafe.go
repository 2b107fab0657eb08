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

package pagetables

import (
	"unsafe"

	"zeta.dev/boot/pkg/arch"
	"zeta.dev/boot/pkg/memmap"
)

// FrameAllocator draws table nodes from the boot attempt's physical frame
// supply, so that on real hardware every node lives at exactly the physical
// address the parent entry names, reachable through the identity mapping.
type FrameAllocator struct {
	mem   memmap.Memory
	index map[uintptr]*PTEs
	phys  map[*PTEs]uintptr
}

// NewFrameAllocator returns an allocator drawing nodes from mem.
func NewFrameAllocator(mem memmap.Memory) *FrameAllocator {
	return &FrameAllocator{
		mem:   mem,
		index: make(map[uintptr]*PTEs),
		phys:  make(map[*PTEs]uintptr),
	}
}

// NewPTEs implements Allocator.NewPTEs.
func (a *FrameAllocator) NewPTEs() *PTEs {
	base, err := a.mem.AllocFrames(1)
	if err != nil {
		return nil
	}
	b := a.mem.Slice(base, arch.PageSize)
	clear(b)
	ptes := (*PTEs)(unsafe.Pointer(&b[0]))
	a.index[base] = ptes
	a.phys[ptes] = base
	return ptes
}

// PhysicalFor implements Allocator.PhysicalFor.
func (a *FrameAllocator) PhysicalFor(ptes *PTEs) uintptr {
	base, ok := a.phys[ptes]
	if !ok {
		panic("node not allocated from this frame supply")
	}
	return base
}

// LookupPTEs implements Allocator.LookupPTEs.
func (a *FrameAllocator) LookupPTEs(phys uintptr) *PTEs {
	ptes, ok := a.index[phys]
	if !ok {
		panic("no table node at the given physical address")
	}
	return ptes
}
