// --------------------------------------------------------------------------------
// Author: Thomas F McGeehan V
//
// This file is part of a software project developed by Thomas F McGeehan V.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
// For more information about the MIT License, please visit:
// https://opensource.org/licenses/MIT
//
// Acknowledgment appreciated but not required.
// --------------------------------------------------------------------------------

// Package config provides configuration utilities for the virtual-graph
// query engine.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arrowarc/icebergraph/vgerr"
)

// EngineConfig carries the recognized engine-level options.
type EngineConfig struct {
	WarehousePath         string `yaml:"warehouse_path"`
	BlockSize             uint32 `yaml:"block_size"`
	CacheMaxBytes         uint64 `yaml:"cache_max_bytes"`
	CacheTTLMinutes       uint32 `yaml:"cache_ttl_minutes"`
	TransitiveDepthLimit  uint32 `yaml:"transitive_depth_limit"`
	DefaultBatchSize      uint32 `yaml:"default_batch_size"`
	CopyBatches           bool   `yaml:"copy_batches"`
	TrackClassStats       bool   `yaml:"track_class_stats"`
	RejectUnknownPreds    bool   `yaml:"reject_unknown_predicates"`
	AllowCartesianJoins   bool   `yaml:"allow_cartesian_joins"`
	TableSourceCacheSize  int    `yaml:"table_source_cache_size"`
}

// Default returns the configuration with every recognized option set to
// its documented default.
func Default() EngineConfig {
	return EngineConfig{
		WarehousePath:        "",
		BlockSize:            4 * 1024 * 1024,
		CacheMaxBytes:        256 * 1024 * 1024,
		CacheTTLMinutes:      5,
		TransitiveDepthLimit: 100,
		DefaultBatchSize:     4096,
		CopyBatches:          true,
		TrackClassStats:      true,
		RejectUnknownPreds:   false,
		AllowCartesianJoins:  false,
		TableSourceCacheSize: 64,
	}
}

// Load reads a YAML document at path and merges it over Default().
func Load(path string) (EngineConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, vgerr.Wrap(vgerr.ConfigError, fmt.Sprintf("read config %s", path), err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, vgerr.Wrap(vgerr.ConfigError, fmt.Sprintf("parse config %s", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the recognized options for obviously invalid values.
func (c EngineConfig) Validate() error {
	if c.BlockSize == 0 {
		return vgerr.New(vgerr.ConfigError, "block_size must be positive")
	}
	if c.DefaultBatchSize == 0 {
		return vgerr.New(vgerr.ConfigError, "default_batch_size must be positive")
	}
	if c.TransitiveDepthLimit == 0 {
		return vgerr.New(vgerr.ConfigError, "transitive_depth_limit must be positive")
	}
	return nil
}
