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
	"testing"

	"zeta.dev/boot/pkg/arch"
	"zeta.dev/boot/pkg/binary"
	"zeta.dev/boot/pkg/framebuffer"
	"zeta.dev/boot/pkg/memmap"
)

func TestPack(t *testing.T) {
	bi := &BootInfo{
		Entry: arch.KernelBase + 0x40,
		MemoryMap: memmap.Map{
			{Start: 0x1000, End: 0x9f000, Type: memmap.Conventional},
			{Start: 0x100000, End: 0x200000, Type: memmap.Runtime},
		},
		Framebuffer: &FramebufferDescriptor{
			Base: 0xe0000000,
			Info: framebuffer.Info{Width: 1024, Height: 768, Stride: 1024, Format: framebuffer.BGR},
		},
		Modules: []Module{
			{Name: "initrd", Base: 0x300000, Size: 0x42000},
		},
	}

	b := bi.Pack()
	hdrSize := binary.Size(&packedHeader{})
	regSize := binary.Size(&packedRegion{})
	modSize := binary.Size(&packedModule{})
	if want := hdrSize + 2*regSize + modSize; len(b) != want {
		t.Fatalf("packed length = %d, want %d", len(b), want)
	}

	var hdr packedHeader
	binary.Unmarshal(b[:hdrSize], binary.LittleEndian, &hdr)
	if hdr.Magic != bootInfoMagic {
		t.Errorf("magic = %#x, want %#x", hdr.Magic, uint64(bootInfoMagic))
	}
	if hdr.Entry != uint64(arch.KernelBase)+0x40 {
		t.Errorf("entry = %#x", hdr.Entry)
	}
	if hdr.RegionCount != 2 || hdr.ModuleCount != 1 {
		t.Errorf("counts = %d regions, %d modules, want 2 and 1", hdr.RegionCount, hdr.ModuleCount)
	}
	if hdr.FBBase != 0xe0000000 || hdr.FBWidth != 1024 || hdr.FBHeight != 768 || hdr.FBFormat != uint32(framebuffer.BGR) {
		t.Errorf("framebuffer fields = %+v", hdr)
	}

	var reg packedRegion
	binary.Unmarshal(b[hdrSize:hdrSize+regSize], binary.LittleEndian, &reg)
	if reg.Start != 0x1000 || reg.End != 0x9f000 || reg.Type != uint32(memmap.Conventional) {
		t.Errorf("first region = %+v", reg)
	}

	var mod packedModule
	binary.Unmarshal(b[hdrSize+2*regSize:], binary.LittleEndian, &mod)
	if mod.Base != 0x300000 || mod.Size != 0x42000 {
		t.Errorf("module = %+v", mod)
	}
	if got := string(mod.Name[:6]); got != "initrd" {
		t.Errorf("module name = %q", got)
	}
	for _, c := range mod.Name[6:] {
		if c != 0 {
			t.Errorf("module name not zero-padded: %v", mod.Name)
			break
		}
	}
}

func TestPackNoFramebuffer(t *testing.T) {
	bi := &BootInfo{Entry: arch.KernelBase}
	b := bi.Pack()

	var hdr packedHeader
	binary.Unmarshal(b, binary.LittleEndian, &hdr)
	if hdr.FBBase != 0 || hdr.FBWidth != 0 {
		t.Errorf("absent framebuffer packed as %+v", hdr)
	}
	if hdr.RegionCount != 0 || hdr.ModuleCount != 0 {
		t.Errorf("empty block packed counts %d/%d", hdr.RegionCount, hdr.ModuleCount)
	}
}

func TestPackLongModuleName(t *testing.T) {
	long := "a-module-name-well-beyond-the-fixed-field-width"
	bi := &BootInfo{Modules: []Module{{Name: long}}}
	b := bi.Pack()

	var mod packedModule
	hdrSize := binary.Size(&packedHeader{})
	binary.Unmarshal(b[hdrSize:], binary.LittleEndian, &mod)
	if got, want := string(mod.Name[:]), long[:moduleNameLen]; got != want {
		t.Errorf("packed name = %q, want truncation %q", got, want)
	}
}
