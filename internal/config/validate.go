package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tsgonest/tsflatten/internal/flatten"
	"github.com/tsgonest/tsflatten/internal/format"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) errorf(msg string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(msg, args...))
}

func (r *ValidationResult) warnf(msg string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(msg, args...))
}

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	// Root lookup
	if len(c.RootNames) == 0 {
		result.errorf("rootNames: at least one name required")
	}
	for _, name := range c.RootNames {
		if !isIdentifier(name) {
			result.errorf("rootNames: %q is not a valid identifier", name)
		}
	}
	if c.ExportName != "" && !flatten.IsValidTypeName(c.ExportName) {
		result.errorf("exportName: %q cannot name a type", c.ExportName)
	}

	// Flatten
	for i, rule := range c.Flatten.Erase {
		switch rule.Match {
		case flatten.MatchExact, flatten.MatchPrefix, flatten.MatchSuffix, flatten.MatchContains:
		default:
			result.errorf("flatten.erase[%d].match: invalid value %q, must be exact, prefix, suffix or contains", i, rule.Match)
		}
		if rule.Pattern == "" {
			result.errorf("flatten.erase[%d].pattern: must not be empty", i)
		}
	}
	if strings.TrimSpace(c.Flatten.ErasedType) == "" {
		result.errorf("flatten.erasedType: must not be empty")
	}
	switch c.Flatten.Cycles {
	case flatten.CycleReference, flatten.CycleErase:
	default:
		result.errorf("flatten.cycles: invalid value %q, must be reference or erase", c.Flatten.Cycles)
	}
	for _, key := range c.Flatten.PassThrough {
		if slices.Contains(flatten.DefaultPassThrough, key) {
			result.warnf("flatten.passThrough: %q is always passed through", key)
		}
	}
	for _, name := range c.Flatten.KeyedGenerics {
		if slices.Contains(c.Flatten.DeferredWrappers, name) {
			result.errorf("flatten: %q is listed in both keyedGenerics and deferredWrappers", name)
		}
	}
	if c.Flatten.KeyCacheSize < 0 {
		result.errorf("flatten.keyCacheSize: must not be negative")
	}

	// Emit
	if c.Emit.ReuseThreshold < 0 {
		result.errorf("emit.reuseThreshold: must not be negative")
	}
	if c.Emit.MinHoistSize < 0 {
		result.errorf("emit.minHoistSize: must not be negative")
	}
	if c.Emit.ReuseThreshold == 0 && c.Emit.MinHoistSize == 0 {
		result.warnf("emit: reuseThreshold and minHoistSize are both 0, every repeated type becomes a declaration")
	}

	// Format
	f := c.Format
	switch f.Engine {
	case format.EngineBuiltin, format.EnginePrettier, format.EngineNone, "":
	default:
		result.errorf("format.engine: invalid value %q, must be builtin, prettier or none", f.Engine)
	}
	switch f.TrailingComma {
	case format.TrailingCommaAll, format.TrailingCommaES5, format.TrailingCommaNone, "":
	default:
		result.errorf("format.trailingComma: invalid value %q, must be all, es5 or none", f.TrailingComma)
	}
	switch f.EndOfLine {
	case format.EndOfLineLF, format.EndOfLineCRLF, "":
	default:
		result.errorf("format.endOfLine: invalid value %q, must be lf or crlf", f.EndOfLine)
	}
	if f.TabWidth < 0 || f.TabWidth > 16 {
		result.errorf("format.tabWidth: %d is out of range 0..16", f.TabWidth)
	}
	if f.PrintWidth < 0 {
		result.errorf("format.printWidth: must not be negative")
	} else if f.PrintWidth > 0 && f.PrintWidth < 20 {
		result.warnf("format.printWidth: %d is very narrow", f.PrintWidth)
	}
	if f.Engine == format.EnginePrettier && strings.TrimSpace(f.Command) == "" {
		result.errorf("format.command: required for the prettier engine")
	}
	if f.Engine != format.EnginePrettier && f.Parser != "" && f.Parser != "typescript" {
		result.warnf("format.parser: %q is only used by the prettier engine", f.Parser)
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
