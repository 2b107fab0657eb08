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

// DefaultLevel is the threshold used for any preconfig override that is
// absent.
const DefaultLevel = Error

// Preconfig carries the three optional overrides consulted before the
// configuration file is available. Values are the raw externally supplied
// strings (PRECONFIG_GLOBAL, PRECONFIG_SERIAL, PRECONFIG_FRAMEBUFFER); an
// empty string means the override is unset.
type Preconfig struct {
	Global      string
	Serial      string
	Framebuffer string
}

// Levels resolves the overrides. Absent overrides default to DefaultLevel;
// a present override outside the enumerated set fails with ErrInvalidLevel.
func (p Preconfig) Levels() (global, serial, framebuffer Level, err error) {
	if global, err = resolve(p.Global); err != nil {
		return
	}
	if serial, err = resolve(p.Serial); err != nil {
		return
	}
	framebuffer, err = resolve(p.Framebuffer)
	return
}

func resolve(s string) (Level, error) {
	if s == "" {
		return DefaultLevel, nil
	}
	return ParseLevel(s)
}

// ApplyPreconfig performs the first of the two filter mutations. On error no
// filter is changed, so a fail-fast caller halts with the fallback defaults
// still in place.
func (l *Logger) ApplyPreconfig(p Preconfig) error {
	global, serial, framebuffer, err := p.Levels()
	if err != nil {
		return err
	}
	l.SetGlobal(global)
	l.SetSinkLevel(TargetSerial, serial)
	l.SetSinkLevel(TargetFramebuffer, framebuffer)
	return nil
}

// Setup builds the boot Logger: registers whichever sinks exist (nil means
// the sink is compiled out) and applies the preconfig overrides. A bad
// override fails deterministically before anything downstream runs.
func Setup(p Preconfig, serial, framebuffer Sink) (*Logger, error) {
	l := New()
	if serial != nil {
		l.RegisterSink(TargetSerial, serial, DefaultLevel)
	}
	if framebuffer != nil {
		l.RegisterSink(TargetFramebuffer, framebuffer, DefaultLevel)
	}
	if err := l.ApplyPreconfig(p); err != nil {
		return nil, err
	}
	return l, nil
}
