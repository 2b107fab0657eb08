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

import "zeta.dev/boot/pkg/arch"

// Platform is the processor-level mechanism under the sequencer: installing
// the new root table and transferring control. The real implementation
// touches CR3 and jumps; tests inject a recording fake.
type Platform interface {
	// Activate installs rootPhys as the active paging root. Code running
	// after this must already be reachable through the new mapping.
	Activate(rootPhys uintptr)

	// Jump transfers control to entry with the packed boot information
	// block at infoBase in the entry register dictated by the calling
	// convention. On hardware it does not return.
	Jump(entry arch.Addr, infoBase uintptr)

	// Halt stops the machine. On hardware it does not return.
	Halt()
}
