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

package log

import "io"

// SerialSink writes one "[LEVEL] text" record per line to a byte stream,
// typically a UART. Write errors are dropped: there is nowhere to report
// them.
type SerialSink struct {
	w io.Writer

	// line is reused between records to avoid churn on the boot path.
	line []byte
}

// NewSerialSink returns a SerialSink writing to w.
func NewSerialSink(w io.Writer) *SerialSink {
	return &SerialSink{w: w}
}

// WriteLine implements Sink.WriteLine.
func (s *SerialSink) WriteLine(level Level, text string) {
	s.line = s.line[:0]
	s.line = append(s.line, '[')
	s.line = append(s.line, level.String()...)
	s.line = append(s.line, ']', ' ')
	s.line = append(s.line, text...)
	s.line = append(s.line, '\n')
	s.w.Write(s.line) //nolint:errcheck
}
