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

package boot

import (
	"zeta.dev/boot/pkg/arch"
	"zeta.dev/boot/pkg/binary"
	"zeta.dev/boot/pkg/framebuffer"
	"zeta.dev/boot/pkg/memmap"
)

// FramebufferDescriptor locates the firmware framebuffer for the kernel.
type FramebufferDescriptor struct {
	Base uintptr
	Info framebuffer.Info
}

// Module is one auxiliary file loaded alongside the kernel.
type Module struct {
	Name string
	Base uintptr
	Size uint64
}

// BootInfo is the information block handed to the kernel at entry.
// Constructed once by the sequencer and never mutated afterward.
type BootInfo struct {
	Entry       arch.Addr
	MemoryMap   memmap.Map
	Framebuffer *FramebufferDescriptor
	Modules     []Module
}

// bootInfoMagic opens the packed block so the kernel can sanity-check what
// it was handed.
const bootInfoMagic = 0x544f4f4254455a00 // "\0ZETBOOT", little-endian

// moduleNameLen is the fixed size of a packed module name.
const moduleNameLen = 32

// The packed wire format, fixed once and held stable across boots: a header,
// then RegionCount regions, then ModuleCount modules, all little-endian.
type packedHeader struct {
	Magic       uint64
	Entry       uint64
	RegionCount uint64
	ModuleCount uint64
	FBBase      uint64
	FBWidth     uint32
	FBHeight    uint32
	FBStride    uint32
	FBFormat    uint32
}

type packedRegion struct {
	Start uint64
	End   uint64
	Type  uint32
	Pad   uint32
}

type packedModule struct {
	Base uint64
	Size uint64
	Name [moduleNameLen]byte
}

// Pack serializes the block into the stable wire format the kernel expects.
func (bi *BootInfo) Pack() []byte {
	hdr := packedHeader{
		Magic:       bootInfoMagic,
		Entry:       uint64(bi.Entry),
		RegionCount: uint64(len(bi.MemoryMap)),
		ModuleCount: uint64(len(bi.Modules)),
	}
	if fb := bi.Framebuffer; fb != nil {
		hdr.FBBase = uint64(fb.Base)
		hdr.FBWidth = uint32(fb.Info.Width)
		hdr.FBHeight = uint32(fb.Info.Height)
		hdr.FBStride = uint32(fb.Info.Stride)
		hdr.FBFormat = uint32(fb.Info.Format)
	}
	b := binary.Marshal(nil, binary.LittleEndian, &hdr)
	for _, r := range bi.MemoryMap {
		b = binary.Marshal(b, binary.LittleEndian, &packedRegion{
			Start: uint64(r.Start),
			End:   uint64(r.End),
			Type:  uint32(r.Type),
		})
	}
	for _, m := range bi.Modules {
		pm := packedModule{Base: uint64(m.Base), Size: m.Size}
		copy(pm.Name[:], m.Name)
		b = binary.Marshal(b, binary.LittleEndian, &pm)
	}
	return b
}
