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

// Package log provides severity-filtered diagnostic output for the boot
// sequence, available from the first instruction, before any allocator or
// configuration system exists.
//
// Messages pass through two gates: a global threshold and a per-sink
// threshold. A message is emitted on a sink iff its severity passes both.
// Filters are mutated exactly twice over a boot attempt: once from the
// preconfig overrides, and once more when the configuration file becomes
// available. There is no history buffer; the cut-over only affects messages
// emitted after it.
package log

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Level is a severity threshold. Lower values are more urgent; Off suppresses
// everything.
type Level int32

// The enumerated severity levels, ordered Off < Error < Warn < Info < Debug
// < Trace.
const (
	Off Level = iota
	Error
	Warn
	Info
	Debug
	Trace
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case Off:
		return "OFF"
	case Error:
		return "ERROR"
	case Warn:
		return "WARN"
	case Info:
		return "INFO"
	case Debug:
		return "DEBUG"
	case Trace:
		return "TRACE"
	default:
		return fmt.Sprintf("Level(%d)", int32(l))
	}
}

// ErrInvalidLevel is returned when a level name is outside the enumerated
// set. Logging correctness is a prerequisite for diagnosing everything
// downstream, so an invalid override fails initialization rather than being
// silently replaced.
var ErrInvalidLevel = fmt.Errorf("invalid logging level")

// ParseLevel parses a level name, case-insensitively. The accepted set is
// exactly {off, error, warn, info, debug, trace}.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off":
		return Off, nil
	case "error":
		return Error, nil
	case "warn":
		return Warn, nil
	case "info":
		return Info, nil
	case "debug":
		return Debug, nil
	case "trace":
		return Trace, nil
	default:
		return Off, fmt.Errorf("%w: %q (must be one of off, error, warn, info, debug, trace)", ErrInvalidLevel, s)
	}
}

// Sink receives fully formatted log lines. Implementations write directly to
// a serial port, pixel memory, or nothing at all; they never filter.
type Sink interface {
	// WriteLine writes one record. level is informational only; filtering
	// has already happened by the time WriteLine is called.
	WriteLine(level Level, text string)
}

// Target selects which sinks an emission is eligible for.
type Target uint32

// Sink targets. A sink compiled out of the build is simply never registered;
// emissions targeting it are no-ops.
const (
	TargetSerial Target = 1 << iota
	TargetFramebuffer

	TargetAll Target = ^Target(0)
)

type registeredSink struct {
	target Target
	sink   Sink
	level  atomic.Int32
}

// Logger is the process-wide filter state plus the fixed sink list. It is
// created once at startup and passed by explicit reference into every
// component; there is no ambient global.
type Logger struct {
	global atomic.Int32
	sinks  []*registeredSink
}

// New returns a Logger with no sinks and every threshold at the hard-coded
// Error fallback.
func New() *Logger {
	l := &Logger{}
	l.global.Store(int32(Error))
	return l
}

// RegisterSink adds a sink under the given target with an initial threshold.
// The sink list is fixed once the boot sequence starts emitting; there is no
// deregistration.
func (l *Logger) RegisterSink(target Target, s Sink, level Level) {
	rs := &registeredSink{target: target, sink: s}
	rs.level.Store(int32(level))
	l.sinks = append(l.sinks, rs)
}

// SetGlobal replaces the global threshold.
func (l *Logger) SetGlobal(level Level) {
	l.global.Store(int32(level))
}

// Global returns the current global threshold.
func (l *Logger) Global() Level {
	return Level(l.global.Load())
}

// SetSinkLevel replaces the threshold of every sink registered under target.
func (l *Logger) SetSinkLevel(target Target, level Level) {
	for _, rs := range l.sinks {
		if rs.target&target != 0 {
			rs.level.Store(int32(level))
		}
	}
}

// SinkLevel returns the threshold of the first sink registered under target,
// or Off if none is registered.
func (l *Logger) SinkLevel(target Target) Level {
	for _, rs := range l.sinks {
		if rs.target&target != 0 {
			return Level(rs.level.Load())
		}
	}
	return Off
}

// Reconfigure replaces all filters wholesale. This is the single atomic
// cut-over performed when the configuration file becomes available; messages
// already emitted are not retroactively affected.
func (l *Logger) Reconfigure(global, serial, framebuffer Level) {
	l.SetGlobal(global)
	l.SetSinkLevel(TargetSerial, serial)
	l.SetSinkLevel(TargetFramebuffer, framebuffer)
}

// passes returns whether a message of severity level clears threshold.
func passes(level, threshold Level) bool {
	return threshold != Off && level <= threshold
}

// IsLogging returns whether any sink would emit a message at level. Useful
// to elide expensive formatting.
func (l *Logger) IsLogging(level Level, target Target) bool {
	if level == Off || !passes(level, l.Global()) {
		return false
	}
	for _, rs := range l.sinks {
		if rs.target&target != 0 && passes(level, Level(rs.level.Load())) {
			return true
		}
	}
	return false
}

// Emit formats the message once and writes it to every sink selected by
// target whose filter, together with the global filter, admits level.
func (l *Logger) Emit(level Level, target Target, format string, v ...any) {
	if !l.IsLogging(level, target) {
		return
	}
	text := fmt.Sprintf(format, v...)
	for _, rs := range l.sinks {
		if rs.target&target != 0 && passes(level, Level(rs.level.Load())) {
			rs.sink.WriteLine(level, text)
		}
	}
}

// Errorf emits an Error message to all sinks.
func (l *Logger) Errorf(format string, v ...any) {
	l.Emit(Error, TargetAll, format, v...)
}

// Warnf emits a Warn message to all sinks.
func (l *Logger) Warnf(format string, v ...any) {
	l.Emit(Warn, TargetAll, format, v...)
}

// Infof emits an Info message to all sinks.
func (l *Logger) Infof(format string, v ...any) {
	l.Emit(Info, TargetAll, format, v...)
}

// Debugf emits a Debug message to all sinks.
func (l *Logger) Debugf(format string, v ...any) {
	l.Emit(Debug, TargetAll, format, v...)
}

// Tracef emits a Trace message to all sinks.
func (l *Logger) Tracef(format string, v ...any) {
	l.Emit(Trace, TargetAll, format, v...)
}

// Fatalf writes an Error record to every registered sink, bypassing both the
// global and the per-sink filters, so that the message announcing a failed
// boot is never silently dropped. It does not halt; the sequencer owns the
// halt.
func (l *Logger) Fatalf(format string, v ...any) {
	text := fmt.Sprintf(format, v...)
	for _, rs := range l.sinks {
		rs.sink.WriteLine(Error, text)
	}
}
