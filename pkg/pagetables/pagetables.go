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

// Package pagetables builds the four-level x86-64 address space the kernel
// is entered under: the boot-identity region mapped 1:1 and the higher-half
// kernel region at its fixed virtual base.
//
// The builder owns every table node it creates until Activate is called.
// Activation is a one-way transfer: the hardware takes the tree, and no
// further mutation through this package is permitted.
package pagetables

import (
	"errors"
	"fmt"

	"zeta.dev/boot/pkg/arch"
	"zeta.dev/boot/pkg/memmap"
)

// Construction errors.
var (
	// ErrMappingConflict indicates a request intersecting an
	// already-registered virtual range. The conflict is detected before
	// any table node is mutated.
	ErrMappingConflict = errors.New("mapping conflict")

	// ErrActivated indicates mutation after the one-way activation.
	ErrActivated = errors.New("address space already activated")
)

// PageTables is an address space under construction: a root table node and
// the tree hanging off it, plus the registry of ranges mapped so far.
type PageTables struct {
	// Allocator supplies table nodes.
	Allocator Allocator

	root      *PTEs
	rootPhys  uintptr
	ranges    []mappedRange
	activated bool
}

type mappedRange struct {
	vr     arch.AddrRange
	phys   uintptr
	access arch.AccessType
}

// New allocates the root node and returns an empty address space.
func New(a Allocator) (*PageTables, error) {
	root := a.NewPTEs()
	if root == nil {
		return nil, fmt.Errorf("%w: page-table root", memmap.ErrOutOfFrames)
	}
	return &PageTables{
		Allocator: a,
		root:      root,
		rootPhys:  a.PhysicalFor(root),
	}, nil
}

// RootPhysical returns the physical address of the root node, the value
// activation installs into CR3.
func (p *PageTables) RootPhysical() uintptr {
	return p.rootPhys
}

// Map installs a mapping of [addr, addr+length) to [phys, phys+length) with
// the given permissions. The request is rejected with ErrMappingConflict,
// before any node is touched, if it intersects an already-registered range.
func (p *PageTables) Map(addr arch.Addr, length uint64, at arch.AccessType, phys uintptr) error {
	if p.activated {
		return ErrActivated
	}
	if length == 0 {
		return nil
	}
	if !addr.IsPageAligned() || !arch.Addr(phys).IsPageAligned() || length%arch.PageSize != 0 {
		return fmt.Errorf("misaligned mapping %#x -> %#x (+%#x)", uintptr(addr), phys, length)
	}
	vr, ok := addr.ToRange(length)
	if !ok {
		return fmt.Errorf("mapping at %#x (+%#x) wraps the address space", uintptr(addr), length)
	}
	for _, m := range p.ranges {
		if m.vr.Overlaps(vr) {
			return fmt.Errorf("%w: %s intersects %s", ErrMappingConflict, vr, m.vr)
		}
	}

	for off := uint64(0); off < length; off += arch.PageSize {
		pte, err := p.walk(addr+arch.Addr(off), true)
		if err != nil {
			return err
		}
		pte.Set(phys+uintptr(off), at.Effective())
	}
	p.ranges = append(p.ranges, mappedRange{vr: vr, phys: phys, access: at.Effective()})
	return nil
}

// walk returns the leaf entry for va, creating intermediate nodes when
// create is set.
func (p *PageTables) walk(va arch.Addr, create bool) (*PTE, error) {
	entries := p.root
	for _, shift := range [...]uint{pgdShift, pudShift, pmdShift} {
		entry := &entries[tableIndex(va, shift)]
		if !entry.Valid() {
			if !create {
				return nil, nil
			}
			next := p.Allocator.NewPTEs()
			if next == nil {
				return nil, fmt.Errorf("%w: page-table node", memmap.ErrOutOfFrames)
			}
			entry.setPageTable(p.Allocator.PhysicalFor(next))
		}
		entries = p.Allocator.LookupPTEs(entry.Address())
	}
	return &entries[tableIndex(va, pteShift)], nil
}

// Lookup walks the constructed tree (not the registry) and returns the
// physical address and permissions va maps to.
func (p *PageTables) Lookup(va arch.Addr) (phys uintptr, at arch.AccessType, ok bool) {
	pte, _ := p.walk(va.RoundDown(), false)
	if pte == nil || !pte.Valid() {
		return 0, arch.NoAccess, false
	}
	return pte.Address() + uintptr(va.PageOffset()), pte.Opts(), true
}

// Mapped returns a snapshot of the registered virtual ranges, in mapping
// order.
func (p *PageTables) Mapped() []arch.AddrRange {
	out := make([]arch.AddrRange, len(p.ranges))
	for i, m := range p.ranges {
		out[i] = m.vr
	}
	return out
}

// IdentityRegion is one physical range to map 1:1 for the bootloader's own
// use: its text, rodata and data, each with its own permissions.
type IdentityRegion struct {
	Start  uintptr
	Length uint64
	Access arch.AccessType
}

// MapIdentity installs the boot-identity regions.
func (p *PageTables) MapIdentity(regions []IdentityRegion) error {
	for _, r := range regions {
		if err := p.Map(arch.Addr(r.Start), r.Length, r.Access, r.Start); err != nil {
			return err
		}
	}
	return nil
}

// Activate consumes the address space: the install callback receives the
// root's physical address to load into the processor's paging state, and
// every later Map call fails with ErrActivated. There is no deactivation.
func (p *PageTables) Activate(install func(rootPhys uintptr)) error {
	if p.activated {
		return ErrActivated
	}
	p.activated = true
	if install != nil {
		install(p.rootPhys)
	}
	return nil
}

// Activated returns whether the one-way activation has happened.
func (p *PageTables) Activated() bool {
	return p.activated
}
