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
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"strings"
	"testing"

	"zeta.dev/boot/pkg/arch"
	"zeta.dev/boot/pkg/binary"
	"zeta.dev/boot/pkg/loader"
	"zeta.dev/boot/pkg/log"
	"zeta.dev/boot/pkg/memmap"
	"zeta.dev/boot/pkg/pagetables"
)

const kb = uint64(arch.KernelBase)

// fakePlatform records the hardware operations the sequencer requests.
type fakePlatform struct {
	rootPhys uintptr
	entry    arch.Addr
	infoBase uintptr
	jumped   bool
	halts    int
}

func (p *fakePlatform) Activate(rootPhys uintptr) { p.rootPhys = rootPhys }

func (p *fakePlatform) Jump(entry arch.Addr, infoBase uintptr) {
	p.entry = entry
	p.infoBase = infoBase
	p.jumped = true
}

func (p *fakePlatform) Halt() { p.halts++ }

// recordSink captures formatted log lines.
type recordSink struct {
	lines []string
}

func (s *recordSink) WriteLine(level log.Level, text string) {
	s.lines = append(s.lines, fmt.Sprintf("[%v] %s", level, text))
}

// testKernel builds a two-segment executable: code (r-x) at the kernel
// base, data (rw-) one page up with a zero tail.
func testKernel(entry uint64) []byte {
	const hdrSize, phSize = 64, 56
	code := bytes.Repeat([]byte{0x90}, 0x200)
	data := bytes.Repeat([]byte{0xdb}, 0x100)
	off := uint64(hdrSize + 2*phSize)

	hdr := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     entry,
		Phoff:     hdrSize,
		Ehsize:    hdrSize,
		Phentsize: phSize,
		Phnum:     2,
	}
	copy(hdr.Ident[:], "\x7fELF")
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	b := binary.Marshal(nil, binary.LittleEndian, &hdr)
	for _, p := range []elf.Prog64{
		{Type: uint32(elf.PT_LOAD), Flags: uint32(elf.PF_R | elf.PF_X), Off: off, Vaddr: kb, Filesz: 0x200, Memsz: 0x200, Align: 0x1000},
		{Type: uint32(elf.PT_LOAD), Flags: uint32(elf.PF_R | elf.PF_W), Off: off + 0x200, Vaddr: kb + 0x1000, Filesz: 0x100, Memsz: 0x1800, Align: 0x1000},
	} {
		b = binary.Marshal(b, binary.LittleEndian, &p)
	}
	b = append(b, code...)
	return append(b, data...)
}

// testConfig wires a hosted boot environment: simulated memory, frame-backed
// page-table nodes, a recording platform, and trace logging into sink.
func testConfig(sink log.Sink) (Config, *fakePlatform, *memmap.SimMemory) {
	mem := memmap.NewSimMemory(0x100000, 1<<20)
	platform := &fakePlatform{}
	lg := log.New()
	if sink != nil {
		lg.RegisterSink(log.TargetSerial, sink, log.Trace)
		lg.SetGlobal(log.Trace)
	}
	cfg := Config{
		Log:       lg,
		Memory:    mem,
		Allocator: pagetables.NewFrameAllocator(mem),
		Platform:  platform,
		Identity: []pagetables.IdentityRegion{
			{Start: 0x100000, Length: 0x100000, Access: arch.ReadExecute},
		},
		MemoryMap: memmap.Map{
			{Start: 0x2000, End: 0x5000, Type: memmap.Conventional},
			{Start: 0x1000, End: 0x2000, Type: memmap.Conventional},
		},
	}
	return cfg, platform, mem
}

func TestRun(t *testing.T) {
	sink := &recordSink{}
	cfg, platform, mem := testConfig(sink)
	cfg.Framebuffer = &FramebufferDescriptor{Base: 0xe0000000}
	cfg.Modules = []Module{{Name: "initrd", Base: 0x300000, Size: 0x1000}}
	s := NewSequencer(cfg)

	if err := s.Run(testKernel(kb + 0x40)); err != nil {
		t.Fatalf("Run failed: %v\nlog:\n%v", err, sink.lines)
	}
	if got := s.Stage(); got != StageHandoffComplete {
		t.Errorf("Stage() = %v, want HandoffComplete", got)
	}

	if !platform.jumped {
		t.Fatalf("platform never received the jump")
	}
	if got := uint64(platform.entry); got != kb+0x40 {
		t.Errorf("jump entry = %#x, want %#x", got, kb+0x40)
	}
	if platform.rootPhys == 0 {
		t.Errorf("activation never installed a root")
	}
	if platform.halts != 0 {
		t.Errorf("platform halted %d times on a successful boot", platform.halts)
	}

	// The packed information block is in allocated frames and opens with
	// the magic.
	if got := binary.LittleEndian.Uint64(mem.Slice(platform.infoBase, 8)); got != bootInfoMagic {
		t.Errorf("info block magic = %#x, want %#x", got, uint64(bootInfoMagic))
	}

	// The snapshotted memory map was merged.
	info := s.Info()
	if len(info.MemoryMap) != 1 || info.MemoryMap[0].Start != 0x1000 || info.MemoryMap[0].End != 0x5000 {
		t.Errorf("Info memory map = %v, want one merged region", info.MemoryMap)
	}
}

func TestRunBadImage(t *testing.T) {
	serial := &recordSink{}
	fb := &recordSink{}
	cfg, platform, mem := testConfig(nil)
	// Both sinks fully muted: the failure must still be reported.
	cfg.Log = log.New()
	cfg.Log.RegisterSink(log.TargetSerial, serial, log.Off)
	cfg.Log.RegisterSink(log.TargetFramebuffer, fb, log.Off)
	cfg.Log.SetGlobal(log.Off)
	s := NewSequencer(cfg)

	err := s.Run([]byte("not a kernel at all, sorry"))
	if !errors.Is(err, loader.ErrBadImage) {
		t.Fatalf("Run error = %v, want ErrBadImage", err)
	}
	if got := s.Stage(); got != StageFailed {
		t.Errorf("Stage() = %v, want Failed", got)
	}
	if platform.halts != 1 {
		t.Errorf("platform halted %d times, want 1", platform.halts)
	}
	if platform.jumped {
		t.Errorf("platform jumped on a failed boot")
	}
	if got := mem.Allocated(); got != 0 {
		t.Errorf("rejected image allocated %d frames, want 0", got)
	}
	for _, snk := range []*recordSink{serial, fb} {
		if len(snk.lines) != 1 {
			t.Fatalf("sink got %d lines, want exactly the failure record: %v", len(snk.lines), snk.lines)
		}
		if want := "[ERROR] boot failed: "; !strings.HasPrefix(snk.lines[0], want) {
			t.Errorf("failure record = %q, want prefix %q", snk.lines[0], want)
		}
	}
}

func TestRunEntryUnmapped(t *testing.T) {
	cfg, platform, _ := testConfig(nil)
	s := NewSequencer(cfg)

	err := s.Run(testKernel(kb + 0x100000))
	if !errors.Is(err, loader.ErrBadLayout) {
		t.Fatalf("Run error = %v, want ErrBadLayout", err)
	}
	if s.Stage() != StageFailed || platform.halts != 1 || platform.jumped {
		t.Errorf("failure not terminal: stage=%v halts=%d jumped=%t", s.Stage(), platform.halts, platform.jumped)
	}
}

func TestRunEntryNotExecutable(t *testing.T) {
	cfg, platform, _ := testConfig(nil)
	s := NewSequencer(cfg)

	// Entry lands in the writable data segment.
	err := s.Run(testKernel(kb + 0x1040))
	if !errors.Is(err, loader.ErrBadLayout) {
		t.Fatalf("Run error = %v, want ErrBadLayout", err)
	}
	if s.Stage() != StageFailed || platform.halts != 1 {
		t.Errorf("failure not terminal: stage=%v halts=%d", s.Stage(), platform.halts)
	}
}

func TestRunIdentityConflict(t *testing.T) {
	// Loading the kernel into the identity-mapped window conflicts in the
	// new address space unless the identity mappings are omitted.
	cfg, _, _ := testConfig(nil)
	cfg.LoadBase = 0x100000
	s := NewSequencer(cfg)
	if err := s.Run(testKernel(kb + 0x40)); !errors.Is(err, pagetables.ErrMappingConflict) {
		t.Fatalf("Run error = %v, want ErrMappingConflict", err)
	}

	cfg, platform, _ := testConfig(nil)
	cfg.LoadBase = 0x100000
	cfg.OmitIdentity = true
	s = NewSequencer(cfg)
	if err := s.Run(testKernel(kb + 0x40)); err != nil {
		t.Fatalf("Run with identity omitted failed: %v", err)
	}
	if got := uint64(platform.entry); got != 0x100040 {
		t.Errorf("biased entry = %#x, want 0x100040", got)
	}
}

func TestRunIsOneShot(t *testing.T) {
	cfg, platform, _ := testConfig(nil)
	s := NewSequencer(cfg)
	if err := s.Run(testKernel(kb + 0x40)); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if err := s.Run(testKernel(kb + 0x40)); err == nil {
		t.Fatalf("second Run succeeded, want stage error")
	}
	if s.Stage() != StageFailed || platform.halts != 1 {
		t.Errorf("second Run not terminal: stage=%v halts=%d", s.Stage(), platform.halts)
	}
}

func TestStageString(t *testing.T) {
	for _, tc := range []struct {
		s    Stage
		want string
	}{
		{StageInit, "Init"},
		{StageAddressSpaceBuilt, "AddressSpaceBuilt"},
		{StageFailed, "Failed"},
		{Stage(42), "unknown"},
	} {
		if got := tc.s.String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", int(tc.s), got, tc.want)
		}
	}
}
