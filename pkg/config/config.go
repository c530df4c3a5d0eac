// Copyright 2025 the ignorecopy authors
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

// Package config loads the optional ignorecopy config file, which supplies
// default values for the CLI flags. Flags always override the file.
package config

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 📄 DefaultFileName is the config file looked up in the working directory
// when no --config flag is given.
const DefaultFileName = ".ignorecopy.yaml"

// 📚 Config represents the complete configuration.
type Config struct {
	Source        string `yaml:"source,omitempty"`         // default source directory
	Destination   string `yaml:"destination,omitempty"`    // default destination directory
	Verbose       bool   `yaml:"verbose,omitempty"`        // detailed per-file output
	IgnoreFilters bool   `yaml:"ignore_filters,omitempty"` // bypass .ignorecopy filtering
}

// 🎯 Load loads the configuration from a YAML file.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// 🎯 LoadOptional loads the configuration from path if it exists. A missing
// file yields an empty config; any other failure is an error.
func LoadOptional(ctx context.Context, path string) (*Config, error) {
	cfg, err := Load(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}
