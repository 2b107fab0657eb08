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
	"testing"

	"github.com/google/go-cmp/cmp"
	"zeta.dev/boot/pkg/arch"
)

const page = arch.PageSize

func TestMerge(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   Map
		want Map
	}{
		{
			name: "empty",
			in:   nil,
			want: nil,
		},
		{
			name: "adjacent same type",
			in: Map{
				{0x1000, 0x2000, Conventional},
				{0x2000, 0x5000, Conventional},
			},
			want: Map{{0x1000, 0x5000, Conventional}},
		},
		{
			name: "adjacent different type",
			in: Map{
				{0x1000, 0x2000, Conventional},
				{0x2000, 0x5000, Runtime},
			},
			want: Map{
				{0x1000, 0x2000, Conventional},
				{0x2000, 0x5000, Runtime},
			},
		},
		{
			name: "gap",
			in: Map{
				{0x1000, 0x2000, Conventional},
				{0x3000, 0x5000, Conventional},
			},
			want: Map{
				{0x1000, 0x2000, Conventional},
				{0x3000, 0x5000, Conventional},
			},
		},
		{
			name: "unsorted chain",
			in: Map{
				{0x5000, 0x6000, Conventional},
				{0x1000, 0x2000, Conventional},
				{0x2000, 0x5000, Conventional},
			},
			want: Map{{0x1000, 0x6000, Conventional}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Merge()
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConventional(t *testing.T) {
	m := Map{
		{0x1000, 0x3000, Runtime},                      // wrong type
		{0x4800, 0x8800, Conventional},                 // unaligned both ends
		{0x100000, 0x100800, Conventional},             // rounds to empty
		{0x200000, 0x300000, Conventional},             // aligned
		{0x400000, 0x400800, ACPIReclaimable},          // wrong type
		{0x500000, 0x501000, CustomBase + RegionType(7)}, // wrong type
	}
	want := Map{
		{0x5000, 0x8000, Conventional},
		{0x200000, 0x300000, Conventional},
	}
	if diff := cmp.Diff(want, m.Conventional()); diff != "" {
		t.Errorf("Conventional() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionTypeString(t *testing.T) {
	for _, tc := range []struct {
		t    RegionType
		want string
	}{
		{Conventional, "conventional"},
		{ACPINonVolatile, "acpi-nonvolatile"},
		{CustomBase + 3, "custom(0x3)"},
	} {
		if got := tc.t.String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", uint32(tc.t), got, tc.want)
		}
	}
}

func TestBumpAllocator(t *testing.T) {
	// Two conventional regions of 2 and 1 pages.
	m := Map{
		{0x1000, 0x3000, Conventional},
		{0x10000, 0x11000, Conventional},
	}
	a := NewBumpAllocator(m)

	base, err := a.AllocFrames(1)
	if err != nil || base != 0x1000 {
		t.Fatalf("AllocFrames(1) = %#x, %v, want 0x1000", base, err)
	}
	base, err = a.AllocFrames(1)
	if err != nil || base != 0x2000 {
		t.Fatalf("AllocFrames(1) = %#x, %v, want 0x2000", base, err)
	}
	// Next page comes from the second region, never spanning the gap.
	base, err = a.AllocFrames(1)
	if err != nil || base != 0x10000 {
		t.Fatalf("AllocFrames(1) = %#x, %v, want 0x10000", base, err)
	}
	if _, err := a.AllocFrames(1); !errors.Is(err, ErrOutOfFrames) {
		t.Fatalf("AllocFrames on empty pool = %v, want ErrOutOfFrames", err)
	}
	if got := a.Allocated(); got != 3 {
		t.Errorf("Allocated() = %d, want 3", got)
	}
}

func TestBumpAllocatorContiguity(t *testing.T) {
	// A 2-page request must not straddle two regions.
	m := Map{
		{0x1000, 0x2000, Conventional},
		{0x2000, 0x3000, Runtime},
		{0x3000, 0x5000, Conventional},
	}
	a := NewBumpAllocator(m)

	base, err := a.AllocFrames(2)
	if err != nil {
		t.Fatalf("AllocFrames(2) failed: %v", err)
	}
	if base != 0x3000 {
		t.Errorf("AllocFrames(2) = %#x, want 0x3000", base)
	}
}

func TestBumpAllocatorBadCount(t *testing.T) {
	a := NewBumpAllocator(Map{{0x1000, 0x10000, Conventional}})
	if _, err := a.AllocFrames(0); !errors.Is(err, ErrOutOfFrames) {
		t.Errorf("AllocFrames(0) = %v, want ErrOutOfFrames", err)
	}
}

func TestSimMemory(t *testing.T) {
	mem := NewSimMemory(0x100000, 4*page)
	base, err := mem.AllocFrames(2)
	if err != nil {
		t.Fatalf("AllocFrames(2) failed: %v", err)
	}
	if base != 0x100000 {
		t.Fatalf("AllocFrames(2) = %#x, want 0x100000", base)
	}

	b := mem.Slice(base+page, page)
	b[0] = 0xaa
	// The same physical byte is visible through an overlapping view.
	if got := mem.Slice(base, 2*page)[page]; got != 0xaa {
		t.Errorf("overlapping views disagree: %#x", got)
	}
}
