package config

import (
	"strings"
	"testing"

	"github.com/tsgonest/tsflatten/internal/flatten"
	"github.com/tsgonest/tsflatten/internal/format"
)

func TestValidateDetailed_Valid(t *testing.T) {
	cfg := DefaultConfig()
	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		t.Errorf("expected valid config, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestValidateDetailed_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no root names", func(c *Config) { c.RootNames = nil }, "rootNames"},
		{"bad root name", func(c *Config) { c.RootNames = []string{"app-router"} }, "rootNames"},
		{"reserved export name", func(c *Config) { c.ExportName = "string" }, "exportName"},
		{"bad erase match", func(c *Config) {
			c.Flatten.Erase = []flatten.EraseRule{{Match: "regex", Pattern: "x"}}
		}, "flatten.erase[0].match"},
		{"empty erase pattern", func(c *Config) {
			c.Flatten.Erase = []flatten.EraseRule{{Match: flatten.MatchExact}}
		}, "flatten.erase[0].pattern"},
		{"empty erased type", func(c *Config) { c.Flatten.ErasedType = " " }, "flatten.erasedType"},
		{"bad cycles", func(c *Config) { c.Flatten.Cycles = "skip" }, "flatten.cycles"},
		{"overlapping wrappers", func(c *Config) {
			c.Flatten.DeferredWrappers = append(c.Flatten.DeferredWrappers, "Map")
		}, `"Map"`},
		{"negative threshold", func(c *Config) { c.Emit.ReuseThreshold = -1 }, "emit.reuseThreshold"},
		{"bad engine", func(c *Config) { c.Format.Engine = "dprint" }, "format.engine"},
		{"bad trailing comma", func(c *Config) { c.Format.TrailingComma = "always" }, "format.trailingComma"},
		{"bad end of line", func(c *Config) { c.Format.EndOfLine = "cr" }, "format.endOfLine"},
		{"huge tab width", func(c *Config) { c.Format.TabWidth = 40 }, "format.tabWidth"},
		{"prettier without command", func(c *Config) {
			c.Format.Engine = format.EnginePrettier
			c.Format.Command = ""
		}, "format.command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			result := cfg.ValidateDetailed()
			if result.IsValid() {
				t.Fatal("expected invalid config")
			}
			if !strings.Contains(strings.Join(result.Errors, "\n"), tt.field) {
				t.Errorf("expected an error about %s, got %v", tt.field, result.Errors)
			}
			if cfg.Validate() == nil {
				t.Error("Validate should fail too")
			}
		})
	}
}

func TestValidateDetailed_Warnings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Flatten.PassThrough = []string{"Date"}
	cfg.Emit.ReuseThreshold = 0
	cfg.Emit.MinHoistSize = 0
	cfg.Format.PrintWidth = 10
	cfg.Format.Parser = "babel-ts"

	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		t.Fatalf("warnings only, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 4 {
		t.Errorf("expected 4 warnings, got %v", result.Warnings)
	}
}

func TestValidate_ReportsExtraProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RootNames = nil
	cfg.Flatten.Cycles = "skip"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "rootNames") {
		t.Errorf("expected first error to be reported, got %v", err)
	}
}
