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

// Package loader parses and loads the kernel image: ELF64 validation,
// program header parsing, physical page placement of loadable segments, and
// base-relative relocation of the mapped image.
//
// The loader accepts exactly the class of images the companion linker script
// produces: little-endian x86-64 executables whose loadable segments are
// pairwise disjoint and whose optional dynamic segment is contained in a
// loadable one. Everything else is rejected before a single physical page is
// allocated.
package loader

import (
	"debug/elf"
	"errors"
	"fmt"

	"zeta.dev/boot/pkg/arch"
	"zeta.dev/boot/pkg/binary"
)

// Error classes. Every failure wraps exactly one of these; all are terminal
// for the boot attempt.
var (
	// ErrBadImage indicates a malformed image: bad magic, wrong class or
	// endianness, or a truncated header/table.
	ErrBadImage = errors.New("malformed kernel image")

	// ErrBadLayout indicates segments that cannot be mapped: overlapping
	// or misaligned ranges, a stray dynamic segment, or an entry point
	// outside an executable region.
	ErrBadLayout = errors.New("invalid segment layout")

	// ErrBadRelocation indicates an unsupported relocation kind, an
	// out-of-range target, or a malformed relocation table.
	ErrBadRelocation = errors.New("relocation failure")
)

// elfMagic is the four identification bytes opening every ELF image.
const elfMagic = "\x7fELF"

// Segment is one program header entry of interest: Load or Dynamic.
type Segment struct {
	Type   elf.ProgType
	Vaddr  arch.Addr
	Off    uint64
	Filesz uint64
	Memsz  uint64
	Access arch.AccessType
}

// vaddrRange returns the exact (unrounded) virtual range the segment
// occupies in memory.
func (s Segment) vaddrRange() (arch.AddrRange, bool) {
	return s.Vaddr.ToRange(s.Memsz)
}

// PageRange returns the segment's virtual range rounded out to page
// boundaries, the unit of mapping. ok is false if the range wraps.
func (s Segment) PageRange() (arch.AddrRange, bool) {
	r, ok := s.vaddrRange()
	if !ok {
		return arch.AddrRange{}, false
	}
	end, ok := r.End.RoundUp()
	if !ok {
		return arch.AddrRange{}, false
	}
	return arch.AddrRange{Start: r.Start.RoundDown(), End: end}, true
}

// Image is a parsed kernel image. It is immutable once parsed; loading works
// from it without modifying it.
type Image struct {
	raw []byte

	// Entry is the link-time entry point virtual address.
	Entry arch.Addr

	// Segments are the loadable segments in file order.
	Segments []Segment

	// Dynamic is the dynamic segment, or nil if the image has none.
	Dynamic *Segment

	// LinkBase is the lowest page-rounded virtual address of any loadable
	// segment, the image's link-time base.
	LinkBase arch.Addr
}

// Parse validates b as a kernel image and extracts its program headers.
// Format violations fail with ErrBadImage, impossible layouts with
// ErrBadLayout; in both cases no physical memory has been touched.
func Parse(b []byte) (*Image, error) {
	var hdr elf.Header64
	hdrSize := binary.Size(&hdr)
	if len(b) < hdrSize {
		return nil, fmt.Errorf("%w: %d bytes is too small for an ELF header", ErrBadImage, len(b))
	}
	if string(b[:len(elfMagic)]) != elfMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrBadImage, b[:len(elfMagic)])
	}
	if c := elf.Class(b[elf.EI_CLASS]); c != elf.ELFCLASS64 {
		return nil, fmt.Errorf("%w: class %v, want %v", ErrBadImage, c, elf.ELFCLASS64)
	}
	if d := elf.Data(b[elf.EI_DATA]); d != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("%w: data encoding %v, want %v", ErrBadImage, d, elf.ELFDATA2LSB)
	}
	if v := elf.Version(b[elf.EI_VERSION]); v != elf.EV_CURRENT {
		return nil, fmt.Errorf("%w: version %v, want %v", ErrBadImage, v, elf.EV_CURRENT)
	}
	binary.Unmarshal(b[:hdrSize], binary.LittleEndian, &hdr)

	if t := elf.Type(hdr.Type); t != elf.ET_EXEC && t != elf.ET_DYN {
		return nil, fmt.Errorf("%w: object type %v is not bootable", ErrBadImage, t)
	}
	if m := elf.Machine(hdr.Machine); m != elf.EM_X86_64 {
		return nil, fmt.Errorf("%w: machine %v, want %v", ErrBadImage, m, elf.EM_X86_64)
	}
	if hdr.Version != uint32(elf.EV_CURRENT) {
		return nil, fmt.Errorf("%w: header version %d", ErrBadImage, hdr.Version)
	}

	var phdr elf.Prog64
	phentSize := binary.Size(&phdr)
	if int(hdr.Phentsize) != phentSize {
		return nil, fmt.Errorf("%w: program header entry size %d, want %d", ErrBadImage, hdr.Phentsize, phentSize)
	}
	phTable := uint64(hdr.Phnum) * uint64(phentSize)
	if hdr.Phoff > uint64(len(b)) || phTable > uint64(len(b))-hdr.Phoff {
		return nil, fmt.Errorf("%w: program header table [%#x, +%#x) outside %d-byte image",
			ErrBadImage, hdr.Phoff, phTable, len(b))
	}

	img := &Image{raw: b, Entry: arch.Addr(hdr.Entry)}
	for i := 0; i < int(hdr.Phnum); i++ {
		off := hdr.Phoff + uint64(i)*uint64(phentSize)
		binary.Unmarshal(b[off:off+uint64(phentSize)], binary.LittleEndian, &phdr)

		switch elf.ProgType(phdr.Type) {
		case elf.PT_LOAD, elf.PT_DYNAMIC:
		default:
			continue
		}
		if phdr.Memsz < phdr.Filesz {
			return nil, fmt.Errorf("%w: segment %d has memsz %#x < filesz %#x", ErrBadImage, i, phdr.Memsz, phdr.Filesz)
		}
		if phdr.Off > uint64(len(b)) || phdr.Filesz > uint64(len(b))-phdr.Off {
			return nil, fmt.Errorf("%w: segment %d contents [%#x, +%#x) outside %d-byte image",
				ErrBadImage, i, phdr.Off, phdr.Filesz, len(b))
		}
		seg := Segment{
			Type:   elf.ProgType(phdr.Type),
			Vaddr:  arch.Addr(phdr.Vaddr),
			Off:    phdr.Off,
			Filesz: phdr.Filesz,
			Memsz:  phdr.Memsz,
			Access: progAccess(elf.ProgFlag(phdr.Flags)),
		}
		if seg.Type == elf.PT_DYNAMIC {
			if img.Dynamic != nil {
				return nil, fmt.Errorf("%w: multiple dynamic segments", ErrBadImage)
			}
			d := seg
			img.Dynamic = &d
			continue
		}
		img.Segments = append(img.Segments, seg)
	}

	if err := img.checkLayout(); err != nil {
		return nil, err
	}
	return img, nil
}

// checkLayout validates the segment set against the fixed virtual memory
// layout contract.
func (img *Image) checkLayout() error {
	if len(img.Segments) == 0 {
		return fmt.Errorf("%w: no loadable segments", ErrBadLayout)
	}

	ranges := make([]arch.AddrRange, len(img.Segments))
	for i, seg := range img.Segments {
		r, ok := seg.PageRange()
		if !ok {
			return fmt.Errorf("%w: segment at %#x wraps the address space", ErrBadLayout, uintptr(seg.Vaddr))
		}
		ranges[i] = r
	}
	for i := range ranges {
		for j := i + 1; j < len(ranges); j++ {
			if ranges[i].Overlaps(ranges[j]) {
				return fmt.Errorf("%w: segments %s and %s overlap", ErrBadLayout, ranges[i], ranges[j])
			}
		}
	}

	img.LinkBase = ranges[0].Start
	for _, r := range ranges[1:] {
		if r.Start < img.LinkBase {
			img.LinkBase = r.Start
		}
	}

	if dyn := img.Dynamic; dyn != nil {
		dr, ok := dyn.vaddrRange()
		if !ok {
			return fmt.Errorf("%w: dynamic segment wraps the address space", ErrBadLayout)
		}
		contained := false
		for _, seg := range img.Segments {
			sr, _ := seg.vaddrRange()
			if sr.IsSupersetOf(dr) {
				contained = true
				break
			}
		}
		if !contained {
			return fmt.Errorf("%w: dynamic segment %s not contained in any loadable segment", ErrBadLayout, dr)
		}
	}
	return nil
}

func progAccess(f elf.ProgFlag) arch.AccessType {
	return arch.AccessType{
		Read:    f&elf.PF_R != 0,
		Write:   f&elf.PF_W != 0,
		Execute: f&elf.PF_X != 0,
	}
}
