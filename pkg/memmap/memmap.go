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

// Package memmap models the firmware-provided physical memory map and owns
// the pool of physical pages for the duration of a boot attempt. Pages are
// handed out, never returned; on failure the whole pool is abandoned with
// the rest of the machine state.
package memmap

import (
	"fmt"
	"sort"

	"zeta.dev/boot/pkg/arch"
)

// RegionType classifies a physical memory region, collapsing the firmware's
// many types into the classes the kernel cares about.
type RegionType uint32

// Region classes. Custom region types keep their raw firmware value above
// CustomBase.
const (
	Conventional RegionType = iota
	Runtime
	ACPIReclaimable
	ACPINonVolatile

	// CustomBase offsets raw firmware types that have no dedicated class.
	CustomBase RegionType = 0x80000000
)

// String implements fmt.Stringer.
func (t RegionType) String() string {
	switch t {
	case Conventional:
		return "conventional"
	case Runtime:
		return "runtime"
	case ACPIReclaimable:
		return "acpi-reclaimable"
	case ACPINonVolatile:
		return "acpi-nonvolatile"
	default:
		if t >= CustomBase {
			return fmt.Sprintf("custom(%#x)", uint32(t-CustomBase))
		}
		return fmt.Sprintf("RegionType(%d)", uint32(t))
	}
}

// Region is one physical range, [Start, End).
type Region struct {
	Start uintptr
	End   uintptr
	Type  RegionType
}

// Size returns the region length in bytes.
func (r Region) Size() uint64 {
	return uint64(r.End - r.Start)
}

// Map is an ordered physical memory map.
type Map []Region

// Sort orders the map by start address.
func (m Map) Sort() {
	sort.Slice(m, func(i, j int) bool { return m[i].Start < m[j].Start })
}

// Merge sorts the map and coalesces physically adjacent regions of the same
// type, the same normalization the firmware map gets before it is handed to
// the kernel.
func (m Map) Merge() Map {
	if len(m) == 0 {
		return nil
	}
	m.Sort()
	out := Map{m[0]}
	for _, r := range m[1:] {
		last := &out[len(out)-1]
		if r.Type == last.Type && r.Start == last.End {
			last.End = r.End
			continue
		}
		out = append(out, r)
	}
	return out
}

// Clone returns a snapshot of the map, safe to embed in the boot information
// block.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	copy(out, m)
	return out
}

// Conventional returns the page-aligned conventional regions, the only ones
// the frame allocator may draw from.
func (m Map) Conventional() Map {
	var out Map
	for _, r := range m {
		if r.Type != Conventional {
			continue
		}
		start, _ := arch.Addr(r.Start).RoundUp()
		end := arch.Addr(r.End).RoundDown()
		if start >= end {
			continue
		}
		out = append(out, Region{Start: uintptr(start), End: uintptr(end), Type: Conventional})
	}
	out.Sort()
	return out
}
