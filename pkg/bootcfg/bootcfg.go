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

// Package bootcfg decodes the bootloader configuration file. It sits
// outside the loading core: the core only ever sees the resolved values,
// never the file. Once a configuration is decoded, ApplyLogging performs
// the second and final logging filter cut-over.
package bootcfg

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"zeta.dev/boot/pkg/log"
)

// Config is the decoded configuration file.
type Config struct {
	Logging LoggingConfig  `toml:"logging"`
	Kernel  KernelConfig   `toml:"kernel"`
	Modules []ModuleConfig `toml:"modules"`
}

// LoggingConfig carries the final filter levels. Empty values fall back to
// info, the default verbosity once a configuration file exists at all.
type LoggingConfig struct {
	Global      string `toml:"global"`
	Serial      string `toml:"serial"`
	Framebuffer string `toml:"framebuffer"`
}

// KernelConfig locates the kernel image.
type KernelConfig struct {
	Path string `toml:"path"`
}

// ModuleConfig locates one auxiliary module.
type ModuleConfig struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// configDefaultLevel is the level an omitted logging key resolves to.
const configDefaultLevel = log.Info

// Parse decodes a configuration file.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	if cfg.Kernel.Path == "" {
		return nil, fmt.Errorf("parsing configuration: kernel.path is required")
	}
	return &cfg, nil
}

// Levels resolves the logging section to concrete levels. An invalid level
// name is a hard error, matching the preconfig policy.
func (c *Config) Levels() (global, serial, framebuffer log.Level, err error) {
	if global, err = resolve(c.Logging.Global); err != nil {
		return
	}
	if serial, err = resolve(c.Logging.Serial); err != nil {
		return
	}
	framebuffer, err = resolve(c.Logging.Framebuffer)
	return
}

func resolve(s string) (log.Level, error) {
	if s == "" {
		return configDefaultLevel, nil
	}
	return log.ParseLevel(s)
}

// ApplyLogging replaces the boot logger's filters wholesale with the
// configured levels.
func (c *Config) ApplyLogging(l *log.Logger) error {
	global, serial, framebuffer, err := c.Levels()
	if err != nil {
		return err
	}
	l.Reconfigure(global, serial, framebuffer)
	return nil
}
