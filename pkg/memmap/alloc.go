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

package memmap

import (
	"errors"
	"fmt"

	"zeta.dev/boot/pkg/arch"
)

// ErrOutOfFrames is returned when the physical page supply is exhausted.
// There is no reclamation; a boot attempt that runs out of pages halts.
var ErrOutOfFrames = errors.New("out of physical frames")

// FrameAllocator supplies runs of contiguous physical pages.
type FrameAllocator interface {
	// AllocFrames returns the base address of a contiguous, page-aligned
	// run of count pages. Contents are unspecified; callers that need
	// zeroed pages clear them.
	AllocFrames(count int) (uintptr, error)

	// Allocated returns the number of frames handed out so far.
	Allocated() int
}

// Memory is a frame supply whose frames the caller can also address, via the
// bootloader's identity mapping or a simulated equivalent.
type Memory interface {
	FrameAllocator

	// Slice returns a writable view of [base, base+length). base must lie
	// within memory previously returned by AllocFrames.
	Slice(base uintptr, length int) []byte
}

// BumpAllocator hands out frames front-to-back from the conventional regions
// of a memory map. It never frees.
type BumpAllocator struct {
	regions   Map
	region    int
	next      uintptr
	allocated int
}

// NewBumpAllocator returns an allocator drawing from the conventional
// regions of m.
func NewBumpAllocator(m Map) *BumpAllocator {
	a := &BumpAllocator{regions: m.Conventional()}
	if len(a.regions) > 0 {
		a.next = a.regions[0].Start
	}
	return a
}

// AllocFrames implements FrameAllocator.AllocFrames.
func (a *BumpAllocator) AllocFrames(count int) (uintptr, error) {
	if count <= 0 {
		return 0, fmt.Errorf("%w: requested %d frames", ErrOutOfFrames, count)
	}
	need := uintptr(count) * arch.PageSize
	for a.region < len(a.regions) {
		r := a.regions[a.region]
		if a.next < r.Start {
			a.next = r.Start
		}
		if r.End-a.next >= need {
			base := a.next
			a.next += need
			a.allocated += count
			return base, nil
		}
		a.region++
		if a.region < len(a.regions) {
			a.next = a.regions[a.region].Start
		}
	}
	return 0, fmt.Errorf("%w: requested %d contiguous frames", ErrOutOfFrames, count)
}

// Allocated implements FrameAllocator.Allocated.
func (a *BumpAllocator) Allocated() int {
	return a.allocated
}
