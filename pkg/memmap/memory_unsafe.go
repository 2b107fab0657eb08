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

import "unsafe"

// IdentityMemory is the real-hardware Memory: physical frames come from the
// firmware map and are addressed 1:1 through the bootloader's identity
// mapping.
type IdentityMemory struct {
	BumpAllocator
}

// NewIdentityMemory returns a Memory drawing from the conventional regions
// of m. Only valid while the identity mapping covers those regions.
func NewIdentityMemory(m Map) *IdentityMemory {
	return &IdentityMemory{BumpAllocator: *NewBumpAllocator(m)}
}

// Slice implements Memory.Slice.
func (m *IdentityMemory) Slice(base uintptr, length int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(base)), length)
}
