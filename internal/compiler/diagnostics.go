package compiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/microsoft/typescript-go/shim/ast"
	shimscanner "github.com/microsoft/typescript-go/shim/scanner"
)

// DiagnosticCategory mirrors tsgo's diagnostics.Category.
type DiagnosticCategory int

const (
	CategoryWarning    DiagnosticCategory = 0
	CategoryError      DiagnosticCategory = 1
	CategorySuggestion DiagnosticCategory = 2
	CategoryMessage    DiagnosticCategory = 3
)

func (c DiagnosticCategory) Name() string {
	switch c {
	case CategoryError:
		return "error"
	case CategoryWarning:
		return "warning"
	case CategorySuggestion:
		return "suggestion"
	case CategoryMessage:
		return "message"
	}
	return "unknown"
}

const (
	colorReset  = "\u001b[0m"
	colorRed    = "\u001b[91m"
	colorYellow = "\u001b[93m"
	colorCyan   = "\u001b[96m"
	colorGrey   = "\u001b[90m"
)

func categoryColor(cat DiagnosticCategory) string {
	switch cat {
	case CategoryError:
		return colorRed
	case CategoryWarning:
		return colorYellow
	}
	return colorGrey
}

// IsPrettyOutput reports whether stderr should get colored diagnostics:
// NO_COLOR, then FORCE_COLOR, then whether stderr is a terminal.
func IsPrettyOutput() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// WriteDiagnostics writes diags in tsc style, one per line:
//
//	file(line,col): error TS2322: message
//
// With pretty set, file positions and categories are colored like tsgo.
func WriteDiagnostics(w io.Writer, diags []*ast.Diagnostic, cwd string, pretty bool) {
	for _, d := range diags {
		cat := DiagnosticCategory(ast.Diagnostic_Category(d))
		if d.File() != nil {
			line, char := shimscanner.GetECMALineAndCharacterOfPosition(d.File(), d.Pos())
			name := relativePath(d.File().FileName(), cwd)
			if pretty {
				fmt.Fprintf(w, "%s%s%s:%s%d:%d%s - ", colorCyan, name, colorReset, colorYellow, line+1, char+1, colorReset)
			} else {
				fmt.Fprintf(w, "%s(%d,%d): ", name, line+1, char+1)
			}
		}
		if pretty {
			fmt.Fprintf(w, "%s%s%s %sTS%d:%s %s\n", categoryColor(cat), cat.Name(), colorReset, colorGrey, d.Code(), colorReset, d.String())
		} else {
			fmt.Fprintf(w, "%s TS%d: %s\n", cat.Name(), d.Code(), d.String())
		}
	}
}

// CountErrors returns the number of CategoryError diagnostics.
func CountErrors(diags []*ast.Diagnostic) int {
	count := 0
	for _, d := range diags {
		if DiagnosticCategory(ast.Diagnostic_Category(d)) == CategoryError {
			count++
		}
	}
	return count
}

func relativePath(absPath string, cwd string) string {
	if cwd == "" {
		return absPath
	}
	rel, err := filepath.Rel(cwd, absPath)
	if err != nil {
		return absPath
	}
	return rel
}
