// Package config loads the YAML configuration a fileset scan runs from,
// with a settings-table overlay for values a running process may adjust
// without a restart.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/snapsift/fileset/internal/model"
)

// Config holds everything loaded from config.yaml. One scan root per
// fileset artifact — see SPEC_FULL.md §1 — so this carries a single Root,
// not a list.
type Config struct {
	Root         string   `yaml:"root"          json:"root"`
	RootKind     string   `yaml:"root_kind"      json:"root_kind"`
	ExcludePaths []string `yaml:"exclude_paths"  json:"exclude_paths"`

	// HashFiles, PerceptualHashes, CaptureSnapshots and ConcurrentProcessing
	// are opt-in: a config file that omits them leaves them disabled, same
	// as every other feature toggle in this block.
	HashFiles            bool `yaml:"hash_files"            json:"hash_files"`
	PerceptualHashes     bool `yaml:"perceptual_hashes"     json:"perceptual_hashes"`
	CaptureSnapshots     bool `yaml:"capture_snapshots"     json:"capture_snapshots"`
	SnapshotsPerVideo    int  `yaml:"snapshots_per_video"   json:"snapshots_per_video"`
	SnapshotMaxDim       int  `yaml:"snapshot_max_dim"      json:"snapshot_max_dim"`
	ConcurrentProcessing bool `yaml:"concurrent_processing" json:"concurrent_processing"`

	FilesetPath string `yaml:"fileset_path" json:"-"`
	Workers     int    `yaml:"workers"      json:"workers"`
	Schedule    string `yaml:"schedule"     json:"schedule"`
	LogLevel    string `yaml:"log_level"    json:"-"`
}

// applyDefaults fills zero/empty fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.RootKind == "" {
		c.RootKind = string(model.RootKindFolder)
	}
	if c.SnapshotsPerVideo == 0 {
		c.SnapshotsPerVideo = 3
	}
	if c.SnapshotMaxDim == 0 {
		c.SnapshotMaxDim = 1024
	}
	if c.FilesetPath == "" {
		c.FilesetPath = "/data/fileset.db"
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
		if c.Workers > 8 {
			c.Workers = 8
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// clamp enforces the bounds SPEC_FULL.md §6 places on operator-tunable
// knobs — a config or settings overlay outside these ranges is coerced
// rather than rejected, since a bad value here should degrade gracefully,
// not crash a scheduled scan.
func (c *Config) clamp() {
	if c.SnapshotsPerVideo < 1 {
		c.SnapshotsPerVideo = 1
	}
	if c.SnapshotsPerVideo > 10 {
		c.SnapshotsPerVideo = 10
	}
	if c.SnapshotMaxDim < 128 {
		c.SnapshotMaxDim = 128
	}
	if c.SnapshotMaxDim > 4096 {
		c.SnapshotMaxDim = 4096
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
}

// Load reads and parses the YAML config file at path. A missing file
// returns a default Config rather than an error, so a bare run without a
// mounted config file still starts.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		var cfg Config
		cfg.applyDefaults()
		cfg.clamp()
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg.applyDefaults()
	cfg.clamp()
	return &cfg, nil
}

// MergeSettings overlays values from the fileset's settings table on top of
// cfg. Unknown keys and unparseable values are silently ignored — the
// settings table is a best-effort runtime override, not a second schema to
// validate against.
func MergeSettings(cfg *Config, settings map[string]string) {
	if v, ok := settings["exclude_paths"]; ok && v != "" {
		cfg.ExcludePaths = splitNonEmpty(v)
	}
	if v, ok := settings["schedule"]; ok && v != "" {
		cfg.Schedule = v
	}
	if v, ok := settings["hash_files"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.HashFiles = b
		}
	}
	if v, ok := settings["perceptual_hashes"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.PerceptualHashes = b
		}
	}
	if v, ok := settings["capture_snapshots"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.CaptureSnapshots = b
		}
	}
	if v, ok := settings["concurrent_processing"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ConcurrentProcessing = b
		}
	}
	if v, ok := settings["snapshots_per_video"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SnapshotsPerVideo = n
		}
	}
	if v, ok := settings["snapshot_max_dim"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SnapshotMaxDim = n
		}
	}
	if v, ok := settings["workers"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	cfg.clamp()
}

func splitNonEmpty(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
