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

package loader

import (
	"fmt"

	"zeta.dev/boot/pkg/arch"
	"zeta.dev/boot/pkg/memmap"
)

// Mapping records where one loadable segment landed: the page-rounded
// virtual range it must be visible at, the physical frames backing it, and
// the permissions the page tables must grant. Mapping requests are derived
// one-to-one from loadable segments and never overlap.
type Mapping struct {
	Range  arch.AddrRange
	Phys   uintptr
	Access arch.AccessType
}

// Loaded is a kernel image placed into physical memory, ready for
// relocation and mapping.
type Loaded struct {
	// Image is the parsed image this was loaded from.
	Image *Image

	// Entry is the actual entry point address, the image's link-time entry
	// shifted by Bias.
	Entry arch.Addr

	// Bias is the difference between the chosen load address and the
	// image's link-time base. Zero when the image is loaded exactly where
	// it was linked.
	Bias int64

	// Mappings are the mapping requests, one per loadable segment.
	Mappings []Mapping

	mem       memmap.Memory
	relocated bool
}

// Load places every loadable segment of img into physical frames drawn from
// mem: pages are allocated, zero-filled, and the segment's file contents
// copied in, leaving the zero tail as the image's uninitialized data. base
// selects the virtual load address; zero means the link-time base.
//
// On failure no partial state is usable and the caller abandons the attempt;
// frames already drawn are not returned.
func Load(img *Image, mem memmap.Memory, base arch.Addr) (*Loaded, error) {
	if base == 0 {
		base = img.LinkBase
	}
	if !base.IsPageAligned() {
		return nil, fmt.Errorf("%w: load base %#x is not page-aligned", ErrBadLayout, uintptr(base))
	}
	bias := int64(base) - int64(img.LinkBase)

	l := &Loaded{
		Image: img,
		Entry: shift(img.Entry, bias),
		Bias:  bias,
		mem:   mem,
	}
	for _, seg := range img.Segments {
		r, _ := seg.PageRange() // validated at parse
		pages := int(r.Length() / arch.PageSize)
		phys, err := mem.AllocFrames(pages)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", r, err)
		}
		b := mem.Slice(phys, int(r.Length()))
		clear(b)
		copy(b[seg.Vaddr-r.Start:], img.raw[seg.Off:seg.Off+seg.Filesz])

		l.Mappings = append(l.Mappings, Mapping{
			Range:  arch.AddrRange{Start: shift(r.Start, bias), End: shift(r.End, bias)},
			Phys:   phys,
			Access: seg.Access,
		})
	}
	return l, nil
}

// EntryMapping returns the mapping containing the entry point, if any.
func (l *Loaded) EntryMapping() (Mapping, bool) {
	for _, m := range l.Mappings {
		if m.Range.Contains(l.Entry) {
			return m, true
		}
	}
	return Mapping{}, false
}

// bytesAt returns a writable view of the loaded bytes backing the actual
// virtual range [va, va+length), addressed through the identity mapping.
func (l *Loaded) bytesAt(va arch.Addr, length uint64) ([]byte, bool) {
	end, ok := va.AddLength(length)
	if !ok {
		return nil, false
	}
	for _, m := range l.Mappings {
		if m.Range.Contains(va) && end <= m.Range.End {
			off := va - m.Range.Start
			return l.mem.Slice(m.Phys+uintptr(off), int(length)), true
		}
	}
	return nil, false
}

func shift(v arch.Addr, bias int64) arch.Addr {
	return arch.Addr(int64(v) + bias)
}
