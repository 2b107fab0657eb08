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

//go:build amd64
// +build amd64

package boot

import "zeta.dev/boot/pkg/arch"

// Implemented in platform_amd64.s.
func writeCR3(rootPhys uintptr)
func jumpKernel(entry, infoBase uintptr)
func halt()

// NativePlatform drives the real processor. Only meaningful when running as
// the firmware-loaded bootloader; on a hosted OS these operations fault.
type NativePlatform struct{}

// Activate implements Platform.Activate.
func (NativePlatform) Activate(rootPhys uintptr) {
	writeCR3(rootPhys)
}

// Jump implements Platform.Jump. The boot information block address travels
// in RDI per the SysV calling convention.
func (NativePlatform) Jump(entry arch.Addr, infoBase uintptr) {
	jumpKernel(uintptr(entry), infoBase)
}

// Halt implements Platform.Halt.
func (NativePlatform) Halt() {
	halt()
}
