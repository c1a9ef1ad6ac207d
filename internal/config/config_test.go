package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/tsgonest/tsflatten/internal/errors"
	"github.com/tsgonest/tsflatten/internal/flatten"
	"github.com/tsgonest/tsflatten/internal/format"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.RootNames) != 2 || cfg.RootNames[0] != "appRouter" || cfg.RootNames[1] != "api" {
		t.Fatalf("unexpected default root names: %v", cfg.RootNames)
	}
	if cfg.Flatten.ErasedType != "any" {
		t.Fatalf("expected erased type 'any', got %q", cfg.Flatten.ErasedType)
	}
	if cfg.Flatten.Cycles != flatten.CycleReference {
		t.Fatalf("expected reference cycles, got %q", cfg.Flatten.Cycles)
	}
	if len(cfg.Flatten.Erase) != 3 {
		t.Fatalf("expected 3 default erase rules, got %d", len(cfg.Flatten.Erase))
	}
	if cfg.Emit.ReuseThreshold != 2 || cfg.Emit.MinHoistSize != 150 {
		t.Fatalf("unexpected emit defaults: %+v", cfg.Emit)
	}
	if cfg.Format.Engine != format.EngineBuiltin || !cfg.Format.SingleQuote || cfg.Format.PrintWidth != 120 {
		t.Fatalf("unexpected format defaults: %+v", cfg.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `{
		"rootNames": ["router"],
		"exportName": "Api",
		"flatten": {
			"erase": [{"match": "prefix", "pattern": "Internal"}],
			"cycles": "erase"
		},
		"emit": {"minHoistSize": 80},
		"format": {"printWidth": 80, "singleQuote": false}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.RootNames) != 1 || cfg.RootNames[0] != "router" {
		t.Fatalf("unexpected root names: %v", cfg.RootNames)
	}
	if cfg.ExportName != "Api" {
		t.Fatalf("unexpected export name %q", cfg.ExportName)
	}
	if len(cfg.Flatten.Erase) != 1 || cfg.Flatten.Erase[0].Pattern != "Internal" {
		t.Fatalf("erase rules should be replaced, got %v", cfg.Flatten.Erase)
	}
	if cfg.Flatten.Cycles != flatten.CycleErase {
		t.Fatalf("unexpected cycles %q", cfg.Flatten.Cycles)
	}
	// Omitted members keep their defaults.
	if cfg.Flatten.ErasedType != "any" {
		t.Fatalf("expected default erased type, got %q", cfg.Flatten.ErasedType)
	}
	if cfg.Emit.ReuseThreshold != 2 || cfg.Emit.MinHoistSize != 80 {
		t.Fatalf("unexpected emit config: %+v", cfg.Emit)
	}
	if cfg.Format.PrintWidth != 80 || cfg.Format.SingleQuote || cfg.Format.TabWidth != 2 {
		t.Fatalf("unexpected format config: %+v", cfg.Format)
	}
}

func TestLoadRejectsUnknownMembers(t *testing.T) {
	path := writeConfig(t, `{"rootNames": ["appRouter"], "outDir": "dist"}`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unknown member")
	}
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"rootNames": [`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	path := writeConfig(t, `{"flatten": {"cycles": "ignore"}}`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "flatten.cycles") {
		t.Fatalf("error should name the field: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatal("a missing file is not an invalid config")
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if got := Find("", dir); got != "" {
		t.Fatalf("expected no config, got %q", got)
	}
	if got := Find("custom.json", dir); got != "custom.json" {
		t.Fatalf("explicit path should win, got %q", got)
	}
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find("", dir); got != path {
		t.Fatalf("expected %q, got %q", path, got)
	}
}

func TestEmitOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Emit.MinHoistSize = 10

	opts := cfg.EmitOptions("api")
	if opts.ExportName != "Api" {
		t.Fatalf("expected derived export name Api, got %q", opts.ExportName)
	}
	if opts.MinHoistSize != 10 || opts.ReuseThreshold != 2 {
		t.Fatalf("unexpected thresholds: %+v", opts)
	}

	cfg.ExportName = "Routes"
	if got := cfg.EmitOptions("api").ExportName; got != "Routes" {
		t.Fatalf("configured export name should win, got %q", got)
	}

	reserved := cfg.EmitOptions("api").Reserved
	for _, name := range []string{"ReadonlyMap", "WeakMap", "PromiseLike"} {
		if !slices.Contains(reserved, name) {
			t.Errorf("wrapper %s should be reserved, got %v", name, reserved)
		}
	}
}

func TestFlattenAndGraphOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Flatten.PassThrough = []string{"Decimal"}
	cfg.Flatten.KeyedGenerics = []string{"Map"}

	fo := cfg.FlattenOptions()
	if len(fo.PassThrough) != 1 || fo.ErasedType != "any" || len(fo.Erase) != 3 {
		t.Fatalf("unexpected flatten options: %+v", fo)
	}
	gopts := cfg.GraphOptions()
	if len(gopts.KeyedGenerics) != 1 || len(gopts.DeferredWrappers) != 2 || gopts.KeyCacheSize != 4096 {
		t.Fatalf("unexpected graph options: %+v", gopts)
	}
}
