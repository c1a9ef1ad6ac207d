// Package compiler loads a TypeScript project through typescript-go and
// locates the router declaration inside it.
package compiler

import (
	"context"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/core"
	"github.com/microsoft/typescript-go/shim/tsoptions"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/tsgonest/tsflatten/internal/errors"
	"github.com/tsgonest/tsflatten/internal/logger"
)

// LoadOptions locates the project to load.
type LoadOptions struct {
	// FS defaults to DefaultFS().
	FS vfs.FS
	// Cwd resolves relative paths.
	Cwd string
	// TSConfig is the tsconfig.json path.
	TSConfig string
	// RouterFile is the file declaring the router value.
	RouterFile string
}

// Project is a bound program with the router file resolved.
type Project struct {
	Program    *shimcompiler.Program
	Config     *tsoptions.ParsedCommandLine
	RouterFile *ast.SourceFile
	Cwd        string
}

// LoadProject parses the tsconfig, adds the router file to the root files
// when the tsconfig does not include it, and builds a single-threaded
// program. Diagnostics that prevent analysis are returned together with an
// error marked as errors.ErrDiagnostics.
func LoadProject(ctx context.Context, opts LoadOptions) (*Project, []*ast.Diagnostic, error) {
	fs := opts.FS
	if fs == nil {
		fs = DefaultFS()
	}
	host := NewHost(opts.Cwd, fs)

	parsed, diags, err := ParseTSConfig(fs, opts.Cwd, opts.TSConfig, host)
	if err != nil || len(diags) > 0 {
		return nil, diags, err
	}

	routerPath := tspath.ResolvePath(opts.Cwd, opts.RouterFile)
	if !fs.FileExists(routerPath) {
		return nil, nil, errors.WithHint(
			errors.Newf("router file %s does not exist", routerPath),
			"the second argument is the file declaring the router value")
	}
	if addRootFile(parsed, routerPath, fs.UseCaseSensitiveFileNames()) {
		logger.Logger.Debugw("router file not matched by tsconfig; added as root", "file", routerPath)
	}

	program := shimcompiler.NewProgram(shimcompiler.ProgramOptions{
		Config:                      parsed,
		SingleThreaded:              core.TSTrue,
		Host:                        host,
		UseSourceOfProjectReference: true,
	})
	if program == nil {
		return nil, nil, errors.New("failed to create program")
	}
	if pd := program.GetProgramDiagnostics(); len(pd) > 0 {
		return nil, pd, diagnosticsError(pd)
	}
	program.BindSourceFiles()

	sf := program.GetSourceFile(routerPath)
	if sf == nil {
		return nil, nil, errors.Newf("router file %s is not part of the program", routerPath)
	}
	if sd := shimcompiler.Program_GetSyntacticDiagnostics(program, ctx, sf); len(sd) > 0 {
		return nil, sd, diagnosticsError(sd)
	}

	return &Project{
		Program:    program,
		Config:     parsed,
		RouterFile: sf,
		Cwd:        opts.Cwd,
	}, nil, nil
}

// ParseTSConfig parses a tsconfig.json with tsgo's JSONC parser, following
// extends chains.
func ParseTSConfig(fs vfs.FS, cwd, tsconfigPath string, host shimcompiler.CompilerHost) (*tsoptions.ParsedCommandLine, []*ast.Diagnostic, error) {
	resolved := tspath.ResolvePath(cwd, tsconfigPath)
	if !fs.FileExists(resolved) {
		return nil, nil, errors.WithHint(
			errors.Newf("could not find tsconfig at %s", resolved),
			"the first argument is the project's tsconfig.json")
	}

	parsed, diags := tsoptions.GetParsedCommandLineOfConfigFile(resolved, &core.CompilerOptions{}, nil, host, nil)
	if len(diags) > 0 {
		return nil, diags, diagnosticsError(diags)
	}
	if parsed != nil && len(parsed.Errors) > 0 {
		return nil, parsed.Errors, diagnosticsError(parsed.Errors)
	}
	return parsed, nil, nil
}

// Checker returns the program's type checker and its release function.
func (p *Project) Checker(ctx context.Context) (*shimchecker.Checker, func(), error) {
	c, release := shimcompiler.Program_GetTypeChecker(p.Program, ctx)
	if c == nil {
		return nil, nil, errors.New("could not get type checker")
	}
	return c, release, nil
}

// addRootFile appends path to the parsed root file names unless present.
func addRootFile(parsed *tsoptions.ParsedCommandLine, path string, caseSensitive bool) bool {
	for _, f := range parsed.ParsedConfig.FileNames {
		if samePath(f, path, caseSensitive) {
			return false
		}
	}
	parsed.ParsedConfig.FileNames = append(parsed.ParsedConfig.FileNames, path)
	return true
}

func samePath(a, b string, caseSensitive bool) bool {
	a, b = tspath.NormalizePath(a), tspath.NormalizePath(b)
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func diagnosticsError(diags []*ast.Diagnostic) error {
	return errors.Mark(errors.Newf("%d TypeScript diagnostic(s)", len(diags)), errors.ErrDiagnostics)
}
