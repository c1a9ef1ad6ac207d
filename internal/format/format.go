// Package format pretty-prints the emitted TypeScript declarations.
package format

import (
	"context"
	"strings"

	"github.com/tsgonest/tsflatten/internal/errors"
)

// Engine selects the formatter implementation.
type Engine string

const (
	EngineBuiltin  Engine = "builtin"
	EnginePrettier Engine = "prettier"
	EngineNone     Engine = "none"
)

// Trailing comma styles, as in prettier.
const (
	TrailingCommaAll  = "all"
	TrailingCommaES5  = "es5"
	TrailingCommaNone = "none"
)

// Line ending styles.
const (
	EndOfLineLF   = "lf"
	EndOfLineCRLF = "crlf"
)

// Options mirror the prettier options the output is formatted with.
type Options struct {
	Engine Engine `json:"engine,omitzero"`
	// Command is the prettier executable for EnginePrettier.
	Command        string `json:"command,omitzero"`
	Parser         string `json:"parser,omitzero"`
	TabWidth       int    `json:"tabWidth,omitzero"`
	SingleQuote    bool   `json:"singleQuote"`
	PrintWidth     int    `json:"printWidth,omitzero"`
	BracketSpacing bool   `json:"bracketSpacing"`
	TrailingComma  string `json:"trailingComma,omitzero"`
	EndOfLine      string `json:"endOfLine,omitzero"`
}

// DefaultOptions returns the builtin engine with the historical prettier
// settings.
func DefaultOptions() Options {
	return Options{
		Engine:         EngineBuiltin,
		Command:        "prettier",
		Parser:         "typescript",
		TabWidth:       2,
		SingleQuote:    true,
		PrintWidth:     120,
		BracketSpacing: true,
		TrailingComma:  TrailingCommaAll,
		EndOfLine:      EndOfLineLF,
	}
}

// Formatter rewrites TypeScript source text.
type Formatter interface {
	Format(ctx context.Context, src string) (string, error)
}

// New returns the formatter selected by opts.Engine.
func New(opts Options, workDir string) (Formatter, error) {
	switch opts.Engine {
	case EngineBuiltin, "":
		return NewBuiltin(opts), nil
	case EnginePrettier:
		return NewPrettier(opts, workDir), nil
	case EngineNone:
		return Identity{}, nil
	}
	return nil, errors.WithHint(
		errors.Newf("unknown formatter %q", opts.Engine),
		"use builtin, prettier or none")
}

// Identity returns its input unchanged.
type Identity struct{}

func (Identity) Format(_ context.Context, src string) (string, error) {
	return src, nil
}

// applyEndOfLine normalizes line endings to the configured style.
func applyEndOfLine(s, eol string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if eol == EndOfLineCRLF {
		return strings.ReplaceAll(s, "\n", "\r\n")
	}
	return s
}
