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

package binary

import (
	"debug/elf"
	"reflect"
	"testing"
)

func TestSize(t *testing.T) {
	// The ELF64 structure sizes are fixed by the ABI.
	for _, tc := range []struct {
		v    any
		want int
	}{
		{elf.Header64{}, 64},
		{elf.Prog64{}, 56},
		{elf.Dyn64{}, 16},
		{elf.Rela64{}, 24},
	} {
		if got := Size(tc.v); got != tc.want {
			t.Errorf("Size(%T) = %d, want %d", tc.v, got, tc.want)
		}
	}
}

func TestMarshalLayout(t *testing.T) {
	type entry struct {
		A uint16
		B uint32
		C [2]uint8
	}
	buf := Marshal(nil, LittleEndian, entry{A: 0x1234, B: 0x56789abc, C: [2]uint8{0xde, 0xf0}})
	want := []byte{0x34, 0x12, 0xbc, 0x9a, 0x78, 0x56, 0xde, 0xf0}
	if !reflect.DeepEqual(buf, want) {
		t.Errorf("Marshal = %x, want %x", buf, want)
	}
}

func TestRoundTrip(t *testing.T) {
	in := elf.Prog64{
		Type:   uint32(elf.PT_LOAD),
		Flags:  uint32(elf.PF_R | elf.PF_X),
		Off:    0x1000,
		Vaddr:  0xffffffff80000000,
		Paddr:  0x100000,
		Filesz: 0x2000,
		Memsz:  0x3000,
		Align:  0x1000,
	}
	buf := Marshal(nil, LittleEndian, &in)
	if len(buf) != Size(&in) {
		t.Fatalf("Marshal produced %d bytes, Size says %d", len(buf), Size(&in))
	}

	var out elf.Prog64
	Unmarshal(buf, LittleEndian, &out)
	if in != out {
		t.Errorf("round trip changed value: %+v != %+v", in, out)
	}
}

func TestNegativeAddend(t *testing.T) {
	in := elf.Rela64{Off: 0x10, Info: uint64(elf.R_X86_64_RELATIVE), Addend: -8}
	buf := Marshal(nil, LittleEndian, &in)
	var out elf.Rela64
	Unmarshal(buf, LittleEndian, &out)
	if out.Addend != -8 {
		t.Errorf("Addend = %d, want -8", out.Addend)
	}
}

func TestUnmarshalWrongLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Unmarshal with an oversized buffer did not panic")
		}
	}()
	var v struct{ A uint32 }
	Unmarshal(make([]byte, 8), LittleEndian, &v)
}
