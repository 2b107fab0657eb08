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

package framebuffer

import "zeta.dev/boot/pkg/log"

// Sink adapts a Terminal to the logging sink contract, rendering each record
// as a "[LEVEL] text" glyph line.
type Sink struct {
	t *Terminal
}

// NewSink returns a log sink rendering into t.
func NewSink(t *Terminal) *Sink {
	return &Sink{t: t}
}

// WriteLine implements log.Sink.WriteLine.
func (s *Sink) WriteLine(level log.Level, text string) {
	s.t.WriteString("[" + level.String() + "] " + text + "\n")
}
