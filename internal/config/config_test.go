package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/errors"
)

func newStubFS() afero.Fs {
	return afero.NewMemMapFs()
}

func writeConfig(t *testing.T, fsys afero.Fs, content string) {
	t.Helper()
	if err := afero.WriteFile(fsys, cfgPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const cfgPath = "/cfg/curator/config.yaml"

func TestLoadUserConfig_MissingFile(t *testing.T) {
	cfg, found, err := LoadUserConfig(newStubFS(), cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected found=false for missing config")
	}
	if !reflect.DeepEqual(cfg, DefaultUserConfig()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadUserConfig_Valid(t *testing.T) {
	stub := newStubFS()
	writeConfig(t, stub, `version: 1
defaults:
  sort_by: size
  sort_order: desc
  recursive: true
rules_file: /home/me/rules.json
ignore:
  - "*.tmp"
  - " build/** "
log_level: debug
`)
	cfg, found, err := LoadUserConfig(stub, cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Error("expected found=true")
	}
	want := UserConfig{
		Version:   1,
		Defaults:  UserDefaults{SortBy: "size", SortOrder: "desc", Recursive: true},
		RulesFile: "/home/me/rules.json",
		Ignore:    []string{"*.tmp", "build/**"},
		LogLevel:  "debug",
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("cfg = %+v\nwant %+v", cfg, want)
	}
}

func TestLoadUserConfig_PartialKeepsDefaults(t *testing.T) {
	stub := newStubFS()
	writeConfig(t, stub, "defaults:\n  recursive: true\n")
	cfg, _, err := LoadUserConfig(stub, cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.SortBy != "name" || cfg.Defaults.SortOrder != "asc" || !cfg.Defaults.Recursive {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadUserConfig_EmptyFile(t *testing.T) {
	stub := newStubFS()
	writeConfig(t, stub, "")
	cfg, found, err := LoadUserConfig(stub, cfgPath)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(cfg, DefaultUserConfig()) {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadUserConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unknown top-level key", "version: 1\ncolour: blue\n", "colour"},
		{"unknown nested key", "defaults:\n  sort: name\n", "sort"},
		{"malformed yaml", "defaults: [\n", "invalid config"},
		{"wrong type", "defaults:\n  recursive: maybe\n", "invalid config"},
		{"bad version", "version: 2\n", "version must be 1"},
		{"bad sort_by", "defaults:\n  sort_by: color\n", "defaults.sort_by"},
		{"bad sort_order", "defaults:\n  sort_order: up\n", "defaults.sort_order"},
		{"bad log level", "log_level: loud\n", "log_level"},
		{"blank ignore", "ignore: ['  ']\n", "ignore entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStubFS()
			writeConfig(t, stub, tt.content)
			_, found, err := LoadUserConfig(stub, cfgPath)
			if err == nil {
				t.Fatal("expected error")
			}
			if found {
				t.Error("found should be false on error")
			}
			if errors.GetCode(err) != errors.EInvalidConfig {
				t.Errorf("code = %s, want E_INVALID_CONFIG", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
			ce, _ := errors.AsCuratorError(err)
			if ce.Details["config"] != cfgPath {
				t.Errorf("details = %v", ce.Details)
			}
		})
	}
}

func TestLoadUserConfig_RealFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, found, err := LoadUserConfig(afero.NewOsFs(), path)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		xdg, home, want string
	}{
		{"/x", "/h", filepath.Join("/x", "curator", "config.yaml")},
		{"", "/h", filepath.Join("/h", ".config", "curator", "config.yaml")},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := configPath(tt.xdg, tt.home); got != tt.want {
			t.Errorf("configPath(%q, %q) = %q, want %q", tt.xdg, tt.home, got, tt.want)
		}
	}
}
