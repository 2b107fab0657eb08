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

// Stage is a point in the forward-only boot sequence. Any stage can fall to
// StageFailed; nothing leads back out of it.
type Stage int

// The boot stages, in order.
const (
	StageInit Stage = iota
	StageLoggingReady
	StageImageLoaded
	StageRelocated
	StageAddressSpaceBuilt
	StageHandoffComplete

	StageFailed Stage = -1
)

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageInit:
		return "Init"
	case StageLoggingReady:
		return "LoggingReady"
	case StageImageLoaded:
		return "ImageLoaded"
	case StageRelocated:
		return "Relocated"
	case StageAddressSpaceBuilt:
		return "AddressSpaceBuilt"
	case StageHandoffComplete:
		return "HandoffComplete"
	case StageFailed:
		return "Failed"
	default:
		return "unknown"
	}
}
