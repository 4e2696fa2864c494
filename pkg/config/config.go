// Package config loads cptree settings from a TOML file.
//
// The file is looked up at the path given with --config, then at
// $XDG_CONFIG_HOME/cptree/cptree.toml, then at ~/.config/cptree/cptree.toml.
// A missing file is not an error; every setting has a default.
//
//	[layout]
//	minimal_separation = 10
//	label_char_width = 9
//
//	[diff]
//	label_sensitive = true
//	ignore_implied = false
//
//	[analysis]
//	min_height = 2
//	min_count = 2
//	labels = "ignore"     # ignore | full | vars
//	sort = "size"         # size | count | height
//	keep_subsumed = false
//
//	[cache]
//	dir = "~/.cache/cptree"
//	ttl = "168h"
//	redis_url = ""        # redis://host:6379/0 enables the shared cache
//
//	[builder]
//	cooldown = "10ms"
//	max_retries = 3
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cptree/pkg/analysis"
	"github.com/matzehuels/cptree/pkg/builder"
	"github.com/matzehuels/cptree/pkg/diff"
	"github.com/matzehuels/cptree/pkg/errors"
	"github.com/matzehuels/cptree/pkg/layout"
)

// FileName is the name of the configuration file.
const FileName = "cptree.toml"

// Duration is a time.Duration read from a TOML string such as "10ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Diff     DiffConfig     `toml:"diff"`
	Analysis AnalysisConfig `toml:"analysis"`
	Cache    CacheConfig    `toml:"cache"`
	Builder  BuilderConfig  `toml:"builder"`
}

type LayoutConfig struct {
	MinimalSeparation int `toml:"minimal_separation"`
	LabelCharWidth    int `toml:"label_char_width"`
}

type DiffConfig struct {
	LabelSensitive bool `toml:"label_sensitive"`
	IgnoreImplied  bool `toml:"ignore_implied"`
}

type AnalysisConfig struct {
	MinHeight    int    `toml:"min_height"`
	MinCount     int    `toml:"min_count"`
	Labels       string `toml:"labels"`
	Sort         string `toml:"sort"`
	KeepSubsumed bool   `toml:"keep_subsumed"`
}

type CacheConfig struct {
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

type BuilderConfig struct {
	Cooldown   Duration `toml:"cooldown"`
	MaxRetries int      `toml:"max_retries"`
}

// Default returns the built-in settings.
func Default() Config {
	lo := layout.DefaultOptions()
	f := analysis.DefaultFilter()
	b := builder.DefaultOptions()
	return Config{
		Layout: LayoutConfig{
			MinimalSeparation: lo.MinimalSeparation,
			LabelCharWidth:    lo.LabelCharWidth,
		},
		Diff: DiffConfig{LabelSensitive: true},
		Analysis: AnalysisConfig{
			MinHeight: f.MinHeight,
			MinCount:  f.MinCount,
			Labels:    analysis.LabelsIgnore.String(),
			Sort:      f.SortBy.String(),
		},
		Cache: CacheConfig{TTL: Duration{7 * 24 * time.Hour}},
		Builder: BuilderConfig{
			Cooldown:   Duration{b.Cooldown},
			MaxRetries: b.MaxRetries,
		},
	}
}

// DefaultPath returns the configuration file path used when none is given.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "cptree", FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cptree", FileName)
}

// Load reads the configuration at path, or at [DefaultPath] when path is
// empty, on top of [Default]. It returns the path actually read, which is
// empty when no file was found. An explicit path that does not exist is an
// error.
func Load(path string) (Config, string, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, "", nil
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, "", nil
		}
		return cfg, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	return cfg, path, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Layout.MinimalSeparation < 0 || c.Layout.LabelCharWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout values must not be negative")
	}
	if c.Analysis.MinHeight < 0 || c.Analysis.MinCount < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "analysis filters must not be negative")
	}
	if _, err := analysis.ParseLabelMode(c.Analysis.Labels); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "analysis.labels")
	}
	if _, err := analysis.ParseSortKey(c.Analysis.Sort); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "analysis.sort")
	}
	if c.Cache.TTL.Duration < 0 || c.Builder.Cooldown.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "durations must not be negative")
	}
	return nil
}

// LayoutOptions returns the layout settings.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		MinimalSeparation: c.Layout.MinimalSeparation,
		LabelCharWidth:    c.Layout.LabelCharWidth,
	}
}

// DiffOptions returns the comparison settings.
func (c Config) DiffOptions() diff.Options {
	return diff.Options{
		LabelSensitive: c.Diff.LabelSensitive,
		IgnoreImplied:  c.Diff.IgnoreImplied,
	}
}

// BuilderOptions returns the builder settings.
func (c Config) BuilderOptions() builder.Options {
	return builder.Options{
		Cooldown:   c.Builder.Cooldown.Duration,
		MaxRetries: c.Builder.MaxRetries,
	}
}

// Filter returns the analysis filter. Call Validate first.
func (c Config) Filter() analysis.Filter {
	key, _ := analysis.ParseSortKey(c.Analysis.Sort)
	return analysis.Filter{
		MinHeight: c.Analysis.MinHeight,
		MinCount:  c.Analysis.MinCount,
		SortBy:    key,
	}
}

// LabelMode returns the identical-subtree label mode. Call Validate first.
func (c Config) LabelMode() analysis.LabelMode {
	m, _ := analysis.ParseLabelMode(c.Analysis.Labels)
	return m
}
