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
	"debug/elf"
	"fmt"

	"zeta.dev/boot/pkg/arch"
	"zeta.dev/boot/pkg/binary"
)

// Rela is one parsed relocation entry.
type Rela struct {
	// Off is the link-time virtual address of the location to patch.
	Off arch.Addr

	// Kind is the relocation kind.
	Kind elf.R_X86_64

	// Addend is the constant the load bias is added to.
	Addend int64
}

// Relocations locates the relocation table through the dynamic segment's
// metadata and parses it. A missing dynamic segment, or a dynamic segment
// without a table, yields no entries. Malformed metadata fails with
// ErrBadRelocation.
func (img *Image) Relocations() ([]Rela, error) {
	dyn := img.Dynamic
	if dyn == nil {
		return nil, nil
	}
	table := img.raw[dyn.Off : dyn.Off+dyn.Filesz] // bounds validated at parse

	var relaVaddr, relaSize uint64
	relaEnt := uint64(binary.Size(&elf.Rela64{}))
	var d elf.Dyn64
	dynSize := uint64(binary.Size(&d))
scan:
	for off := uint64(0); off+dynSize <= uint64(len(table)); off += dynSize {
		binary.Unmarshal(table[off:off+dynSize], binary.LittleEndian, &d)
		switch elf.DynTag(d.Tag) {
		case elf.DT_NULL:
			break scan
		case elf.DT_RELA:
			relaVaddr = d.Val
		case elf.DT_RELASZ:
			relaSize = d.Val
		case elf.DT_RELAENT:
			if d.Val != relaEnt {
				return nil, fmt.Errorf("%w: relocation entry size %d, want %d", ErrBadRelocation, d.Val, relaEnt)
			}
		}
	}
	if relaVaddr == 0 {
		return nil, nil
	}
	if relaSize%relaEnt != 0 {
		return nil, fmt.Errorf("%w: relocation table size %#x is not a multiple of %d", ErrBadRelocation, relaSize, relaEnt)
	}

	rela, err := img.fileBytes(arch.Addr(relaVaddr), relaSize)
	if err != nil {
		return nil, err
	}
	out := make([]Rela, 0, relaSize/relaEnt)
	var e elf.Rela64
	for off := uint64(0); off < relaSize; off += relaEnt {
		binary.Unmarshal(rela[off:off+relaEnt], binary.LittleEndian, &e)
		out = append(out, Rela{
			Off:    arch.Addr(e.Off),
			Kind:   elf.R_X86_64(elf.R_TYPE64(e.Info)),
			Addend: e.Addend,
		})
	}
	return out, nil
}

// fileBytes resolves a link-time virtual range to the image bytes backing
// it.
func (img *Image) fileBytes(va arch.Addr, length uint64) ([]byte, error) {
	for _, seg := range img.Segments {
		if va >= seg.Vaddr && uint64(va-seg.Vaddr)+length <= seg.Filesz {
			off := seg.Off + uint64(va-seg.Vaddr)
			return img.raw[off : off+length], nil
		}
	}
	return nil, fmt.Errorf("%w: range [%#x, +%#x) has no file backing", ErrBadRelocation, uintptr(va), length)
}

// Relocate applies the image's base-relative relocations to the loaded
// copy, exactly once, through the identity-addressable backing frames. It
// must run before the new address space is activated.
//
// Only R_X86_64_RELATIVE is supported: the kernel is statically linked and
// position-independent, so every relocation is load bias plus a stored
// addend. Any other kind is a hard error rather than a silent skip; this is
// not a dynamic linker.
func (l *Loaded) Relocate() error {
	if l.relocated {
		return fmt.Errorf("%w: relocations already applied", ErrBadRelocation)
	}
	l.relocated = true

	rels, err := l.Image.Relocations()
	if err != nil {
		return err
	}
	for _, r := range rels {
		if r.Kind != elf.R_X86_64_RELATIVE {
			return fmt.Errorf("%w: unsupported relocation kind %v", ErrBadRelocation, r.Kind)
		}
		target := shift(r.Off, l.Bias)
		b, ok := l.bytesAt(target, 8)
		if !ok {
			return fmt.Errorf("%w: target %#x outside loaded image", ErrBadRelocation, uintptr(target))
		}
		binary.LittleEndian.PutUint64(b, uint64(l.Bias+r.Addend))
	}
	return nil
}
