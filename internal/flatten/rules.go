package flatten

import (
	"strings"
)

// DefaultPassThrough lists type keys emitted verbatim without introspection.
var DefaultPassThrough = []string{
	"Date",
	"boolean",
	"string",
	"number",
	"bigint",
	"symbol",
	"undefined",
	"null",
	"void",
	"never",
	"unknown",
	"any",
	"object",
	"SharedArrayBuffer",
	"ArrayBuffer",
	"ArrayBufferView",
	"Uint8Array",
	"Blob",
	"Event",
	"EventTarget",
	"AbortSignal",
}

// MatchKind selects how an EraseRule pattern is compared with a type key.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchPrefix   MatchKind = "prefix"
	MatchSuffix   MatchKind = "suffix"
	MatchContains MatchKind = "contains"
)

// EraseRule replaces every type whose key matches Pattern with Replacement
// (or the flattener's erased type when Replacement is empty).
type EraseRule struct {
	Match       MatchKind `json:"match"`
	Pattern     string    `json:"pattern"`
	Replacement string    `json:"replacement,omitzero"`
}

// Matches reports whether key is covered by the rule.
func (r EraseRule) Matches(key string) bool {
	switch r.Match {
	case MatchExact:
		return key == r.Pattern
	case MatchPrefix:
		return strings.HasPrefix(key, r.Pattern)
	case MatchSuffix:
		return strings.HasSuffix(key, r.Pattern)
	case MatchContains:
		return strings.Contains(key, r.Pattern)
	}
	return false
}

// DefaultEraseRules erases tRPC internals that are huge and meaningless to a
// client: router layers, response wrappers and procedure option helpers.
func DefaultEraseRules() []EraseRule {
	return []EraseRule{
		{Match: MatchSuffix, Pattern: "ILayer"},
		{Match: MatchContains, Pattern: "Response<"},
		{Match: MatchContains, Pattern: "ProcedureOptions<"},
	}
}

// CycleMode decides what a re-entered, still-expanding type becomes.
type CycleMode string

const (
	// CycleReference keeps a reference, later emitted as a named
	// self-referencing declaration.
	CycleReference CycleMode = "reference"
	// CycleErase replaces the re-entry with the erased type.
	CycleErase CycleMode = "erase"
)

// Options configures a Flattener.
type Options struct {
	// PassThrough adds keys to DefaultPassThrough.
	PassThrough []string
	// Erase rules are checked in order; the first match wins.
	Erase []EraseRule
	// ErasedType is the text substituted for erased types.
	ErasedType string
	// Cycles selects cycle handling.
	Cycles CycleMode
}

// DefaultOptions returns the historical tRPC-oriented settings.
func DefaultOptions() Options {
	return Options{
		Erase:      DefaultEraseRules(),
		ErasedType: "any",
		Cycles:     CycleReference,
	}
}
