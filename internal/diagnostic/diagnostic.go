// Package diagnostic collects the non-fatal findings of a flattening run.
package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Category classifies diagnostics for filtering.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryFormat     Category = "format"
	CategoryCycle      Category = "cycle"
	CategoryHoisted    Category = "hoisted"
	CategoryUnresolved Category = "unresolved"
)

// Diagnostic represents a structured diagnostic message.
type Diagnostic struct {
	Severity Severity
	Category Category
	Message  string
	Hint     string // optional suggestion for fixing the issue
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	if d.Category != "" {
		sb.WriteString("[")
		sb.WriteString(string(d.Category))
		sb.WriteString("] ")
	}
	sb.WriteString(d.Message)
	if d.Hint != "" {
		sb.WriteString("\n  hint: ")
		sb.WriteString(d.Hint)
	}
	return sb.String()
}

// Collector collects diagnostics during a run. A nil Collector discards
// everything.
type Collector struct {
	diagnostics []Diagnostic
	quiet       bool // if true, suppress info entries
}

// NewCollector creates a new diagnostic collector.
func NewCollector(quiet bool) *Collector {
	return &Collector{quiet: quiet}
}

// Warn adds a warning diagnostic.
func (c *Collector) Warn(category Category, message string) {
	c.WarnWithHint(category, message, "")
}

// WarnWithHint adds a warning with a suggestion.
func (c *Collector) WarnWithHint(category Category, message, hint string) {
	if c == nil {
		return
	}
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Severity: SeverityWarning,
		Category: category,
		Message:  message,
		Hint:     hint,
	})
}

// Infof adds an informational diagnostic.
func (c *Collector) Infof(category Category, format string, args ...any) {
	if c == nil || c.quiet {
		return
	}
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Severity: SeverityInfo,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Diagnostics returns all collected diagnostics.
func (c *Collector) Diagnostics() []Diagnostic {
	if c == nil {
		return nil
	}
	return c.diagnostics
}

// WarningCount returns the number of warning diagnostics.
func (c *Collector) WarningCount() int {
	if c == nil {
		return 0
	}
	count := 0
	for _, d := range c.diagnostics {
		if d.Severity == SeverityWarning {
			count++
		}
	}
	return count
}

// FormatAll formats all diagnostics as a multi-line string.
func (c *Collector) FormatAll() string {
	if c == nil || len(c.diagnostics) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, d := range c.diagnostics {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Summary returns a summary line like "2 warning(s)".
func (c *Collector) Summary() string {
	if n := c.WarningCount(); n > 0 {
		return fmt.Sprintf("%d warning(s)", n)
	}
	return "no issues"
}
