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
	"fmt"

	"zeta.dev/boot/pkg/arch"
)

// Allocator supplies table nodes. Nodes are addressed by physical frame
// address rather than pointer identity, so entries written into the tables
// and the Go views of those nodes can never alias ambiguously.
type Allocator interface {
	// NewPTEs returns a new, zeroed table node, or nil if the supply is
	// exhausted.
	NewPTEs() *PTEs

	// PhysicalFor returns the physical address of a node obtained from
	// NewPTEs.
	PhysicalFor(ptes *PTEs) uintptr

	// LookupPTEs resolves a physical address written into a table entry
	// back to its node.
	LookupPTEs(phys uintptr) *PTEs
}

// ArenaAllocator hands out table nodes from a fixed-size arena, assigning
// each node a physical frame address counting up from a base. It backs
// hosted use: tests and the dry-run tooling.
type ArenaAllocator struct {
	base  uintptr
	nodes []PTEs
	used  int
	index map[uintptr]*PTEs
	phys  map[*PTEs]uintptr
}

// NewArenaAllocator returns an arena of count nodes occupying the simulated
// physical range [base, base+count*PageSize).
func NewArenaAllocator(base uintptr, count int) *ArenaAllocator {
	if !arch.Addr(base).IsPageAligned() {
		panic(fmt.Sprintf("arena base %#x is not page-aligned", base))
	}
	return &ArenaAllocator{
		base:  base,
		nodes: make([]PTEs, count),
		index: make(map[uintptr]*PTEs, count),
		phys:  make(map[*PTEs]uintptr, count),
	}
}

// NewPTEs implements Allocator.NewPTEs.
func (a *ArenaAllocator) NewPTEs() *PTEs {
	if a.used == len(a.nodes) {
		return nil
	}
	ptes := &a.nodes[a.used]
	addr := a.base + uintptr(a.used)*arch.PageSize
	a.index[addr] = ptes
	a.phys[ptes] = addr
	a.used++
	return ptes
}

// PhysicalFor implements Allocator.PhysicalFor.
func (a *ArenaAllocator) PhysicalFor(ptes *PTEs) uintptr {
	addr, ok := a.phys[ptes]
	if !ok {
		panic("node not allocated from this arena")
	}
	return addr
}

// LookupPTEs implements Allocator.LookupPTEs.
func (a *ArenaAllocator) LookupPTEs(phys uintptr) *PTEs {
	ptes, ok := a.index[phys]
	if !ok {
		panic(fmt.Sprintf("no table node at %#x", phys))
	}
	return ptes
}

// Used returns the number of nodes handed out.
func (a *ArenaAllocator) Used() int {
	return a.used
}
