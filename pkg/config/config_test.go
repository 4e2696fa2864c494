package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/cptree/pkg/analysis"
	"github.com/matzehuels/cptree/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.LayoutOptions().MinimalSeparation != 10 || !cfg.DiffOptions().LabelSensitive {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Filter() != analysis.DefaultFilter() {
		t.Errorf("Filter() = %+v", cfg.Filter())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[layout]
minimal_separation = 16

[diff]
label_sensitive = false

[analysis]
labels = "vars"
sort = "count"
min_height = 3

[cache]
ttl = "1h"
redis_url = "redis://localhost:6379/0"

[builder]
cooldown = "50ms"
`)
	cfg, used, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if used != path {
		t.Errorf("used = %q", used)
	}
	tests := []struct {
		name string
		ok   bool
	}{
		{"separation", cfg.Layout.MinimalSeparation == 16},
		{"char width default kept", cfg.Layout.LabelCharWidth == 9},
		{"diff", !cfg.Diff.LabelSensitive},
		{"labels", cfg.LabelMode() == analysis.LabelsVars},
		{"sort", cfg.Filter().SortBy == analysis.SortByCount},
		{"min height", cfg.Filter().MinHeight == 3},
		{"ttl", cfg.Cache.TTL.Duration == time.Hour},
		{"redis", cfg.Cache.RedisURL != ""},
		{"cooldown", cfg.BuilderOptions().Cooldown == 50*time.Millisecond},
	}
	for _, tt := range tests {
		if !tt.ok {
			t.Errorf("%s not applied: %+v", tt.name, cfg)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing explicit", filepath.Join(t.TempDir(), "nope.toml"), errors.ErrCodeFileNotFound},
		{"bad toml", writeConfig(t, "[layout\n"), errors.ErrCodeInvalidConfig},
		{"bad mode", writeConfig(t, "[analysis]\nlabels = \"some\"\n"), errors.ErrCodeInvalidConfig},
		{"bad duration", writeConfig(t, "[cache]\nttl = \"soon\"\n"), errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Load(tt.path); !errors.Is(err, tt.code) {
				t.Errorf("Load = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, used, err := Load("")
	if err != nil || used != "" {
		t.Fatalf("Load(\"\") = %q, %v", used, err)
	}
	if cfg.Analysis.Labels != "ignore" {
		t.Errorf("defaults not returned: %+v", cfg)
	}
}

func TestLoadDefaultPathFound(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "cptree"), 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "cptree", FileName)
	if err := os.WriteFile(want, []byte("[builder]\nmax_retries = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, used, err := Load("")
	if err != nil || used != want || cfg.Builder.MaxRetries != 7 {
		t.Errorf("Load(\"\") = %+v, %q, %v", cfg.Builder, used, err)
	}
}
