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

// Package boot sequences a single boot attempt: image loading, relocation,
// address-space construction, and the non-returning handoff to the kernel.
//
// The sequence is a forward-only state machine with no retry loop. Every
// component reports a specific failure kind; the sequencer collapses them
// all into one terminal path: a fatal log emission that bypasses filtering,
// then a halt.
package boot

import (
	"fmt"

	"zeta.dev/boot/pkg/arch"
	"zeta.dev/boot/pkg/loader"
	"zeta.dev/boot/pkg/log"
	"zeta.dev/boot/pkg/memmap"
	"zeta.dev/boot/pkg/pagetables"
)

// Config assembles the sequencer's collaborators. Logging must already be
// initialized: constructing the Logger (the Init to LoggingReady transition)
// happens before anything else, so failures from here on are reportable.
type Config struct {
	// Log is the initialized boot logger.
	Log *log.Logger

	// Memory supplies and addresses physical frames.
	Memory memmap.Memory

	// Allocator supplies page-table nodes.
	Allocator pagetables.Allocator

	// Platform performs activation, handoff and halt.
	Platform Platform

	// Identity is the boot-identity region set: the bootloader's own
	// text, rodata and data, mapped 1:1. Retained for the kernel after
	// handoff unless OmitIdentity is set.
	Identity []pagetables.IdentityRegion

	// OmitIdentity drops the boot-identity mappings from the new address
	// space. The default retains them, pending the kernel-side contract.
	OmitIdentity bool

	// MemoryMap is the firmware-provided physical memory map, snapshotted
	// into the boot information block.
	MemoryMap memmap.Map

	// Framebuffer describes the display, if any.
	Framebuffer *FramebufferDescriptor

	// Modules are the auxiliary files already loaded by the filesystem
	// collaborator.
	Modules []Module

	// LoadBase overrides the kernel's virtual load address. Zero loads at
	// the link-time base with zero bias.
	LoadBase arch.Addr
}

// Sequencer drives one boot attempt.
type Sequencer struct {
	cfg   Config
	stage Stage
	info  *BootInfo
}

// NewSequencer returns a sequencer in the LoggingReady stage.
func NewSequencer(cfg Config) *Sequencer {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	return &Sequencer{cfg: cfg, stage: StageLoggingReady}
}

// Stage returns the current stage.
func (s *Sequencer) Stage() Stage {
	return s.stage
}

// Info returns the boot information block, once assembled.
func (s *Sequencer) Info() *BootInfo {
	return s.info
}

// Run executes the boot sequence over the raw kernel image. On hardware a
// successful run does not return: control belongs to the kernel. A returned
// error means the attempt failed, was fatally logged, and the platform was
// halted; the error is surfaced for hosted callers only.
func (s *Sequencer) Run(kernel []byte) error {
	if s.stage != StageLoggingReady {
		return s.fail(fmt.Errorf("boot attempt started in stage %v", s.stage))
	}
	lg := s.cfg.Log

	lg.Infof("parsing kernel image (%d bytes)", len(kernel))
	img, err := loader.Parse(kernel)
	if err != nil {
		return s.fail(err)
	}
	loaded, err := loader.Load(img, s.cfg.Memory, s.cfg.LoadBase)
	if err != nil {
		return s.fail(err)
	}
	s.stage = StageImageLoaded
	lg.Infof("kernel loaded: %d segments, entry %#x, bias %#x", len(loaded.Mappings), uintptr(loaded.Entry), loaded.Bias)
	for _, m := range loaded.Mappings {
		lg.Debugf("segment %s %s at phys %#x", m.Range, m.Access, m.Phys)
	}

	if err := loaded.Relocate(); err != nil {
		return s.fail(err)
	}
	s.stage = StageRelocated

	pt, err := pagetables.New(s.cfg.Allocator)
	if err != nil {
		return s.fail(err)
	}
	if !s.cfg.OmitIdentity {
		if err := pt.MapIdentity(s.cfg.Identity); err != nil {
			return s.fail(err)
		}
	}
	for _, m := range loaded.Mappings {
		if err := pt.Map(m.Range.Start, m.Range.Length(), m.Access, m.Phys); err != nil {
			return s.fail(err)
		}
	}
	s.stage = StageAddressSpaceBuilt
	lg.Infof("address space built: root %#x, %d ranges", pt.RootPhysical(), len(pt.Mapped()))

	// The entry point must land in a mapped, executable loadable segment.
	// This is deliberately checked here, at the handoff stage, not during
	// parsing: the layout is only final once every mapping is known.
	em, ok := loaded.EntryMapping()
	if !ok {
		return s.fail(fmt.Errorf("%w: entry point %#x is unmapped", loader.ErrBadLayout, uintptr(loaded.Entry)))
	}
	if !em.Access.Execute {
		return s.fail(fmt.Errorf("%w: entry point %#x lies in non-executable segment %s", loader.ErrBadLayout, uintptr(loaded.Entry), em.Range))
	}

	s.info = &BootInfo{
		Entry:       loaded.Entry,
		MemoryMap:   s.cfg.MemoryMap.Merge(),
		Framebuffer: s.cfg.Framebuffer,
		Modules:     s.cfg.Modules,
	}
	infoBase, err := s.packInfo()
	if err != nil {
		return s.fail(err)
	}

	lg.Infof("handing off to kernel at %#x", uintptr(loaded.Entry))
	if err := pt.Activate(s.cfg.Platform.Activate); err != nil {
		return s.fail(err)
	}
	s.cfg.Platform.Jump(loaded.Entry, infoBase)

	// Reached only under a platform whose Jump returns (hosted runs).
	s.stage = StageHandoffComplete
	return nil
}

// packInfo serializes the boot information block into fresh frames, where
// it stays addressable for the kernel through the physical map.
func (s *Sequencer) packInfo() (uintptr, error) {
	packed := s.info.Pack()
	pages := (len(packed) + arch.PageSize - 1) / arch.PageSize
	base, err := s.cfg.Memory.AllocFrames(pages)
	if err != nil {
		return 0, err
	}
	b := s.cfg.Memory.Slice(base, len(packed))
	copy(b, packed)
	return base, nil
}

// fail is the single terminal error path: fatal emission on every sink,
// filters bypassed, then halt. It does not roll anything back.
func (s *Sequencer) fail(err error) error {
	s.stage = StageFailed
	s.cfg.Log.Fatalf("boot failed: %v", err)
	s.cfg.Platform.Halt()
	return err
}
