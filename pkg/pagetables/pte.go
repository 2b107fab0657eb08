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

import "zeta.dev/boot/pkg/arch"

// Page table entry bits, x86-64 long mode.
const (
	present        = 0x001
	writable       = 0x002
	user           = 0x004
	accessed       = 0x020
	dirty          = 0x040
	global         = 0x100
	executeDisable = 1 << 63

	// physMask extracts the physical address from an entry.
	physMask = 0x000ffffffffff000

	// entriesPerPage is the number of entries in a table node.
	entriesPerPage = 512
)

// Level index shifts for the four-level walk.
const (
	pteShift = 12
	pmdShift = 21
	pudShift = 30
	pgdShift = 39
)

func tableIndex(va arch.Addr, shift uint) uint16 {
	return uint16((uint64(va) >> shift) & (entriesPerPage - 1))
}

// PTE is a page table entry.
type PTE uint64

// PTEs is a single table node of 512 entries.
type PTEs [entriesPerPage]PTE

// Valid returns true iff the entry is present.
func (p *PTE) Valid() bool {
	return *p&present != 0
}

// Address extracts the physical address the entry points at.
func (p *PTE) Address() uintptr {
	return uintptr(*p & physMask)
}

// Opts returns the access type a leaf entry grants.
func (p *PTE) Opts() arch.AccessType {
	v := *p
	return arch.AccessType{
		Read:    v&present != 0,
		Write:   v&writable != 0,
		Execute: v&executeDisable == 0,
	}
}

// Set installs a leaf entry mapping the given physical address with the
// given permissions. Execute absent sets the no-execute bit, relying on EFER
// NXE being enabled before activation.
func (p *PTE) Set(phys uintptr, at arch.AccessType) {
	v := PTE(phys&physMask) | present | accessed | global
	if at.Write {
		v |= writable | dirty
	}
	if !at.Execute {
		v |= executeDisable
	}
	*p = v
}

// setPageTable installs an intermediate entry pointing at the next-level
// node. Intermediate entries are maximally permissive; leaves carry the real
// permissions.
func (p *PTE) setPageTable(phys uintptr) {
	*p = PTE(phys&physMask) | present | writable | accessed | dirty
}

// Clear invalidates the entry.
func (p *PTE) Clear() {
	*p = 0
}
