package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/tsgonest/tsflatten/internal/analyzer"
	"github.com/tsgonest/tsflatten/internal/compiler"
	"github.com/tsgonest/tsflatten/internal/config"
	"github.com/tsgonest/tsflatten/internal/diagnostic"
	"github.com/tsgonest/tsflatten/internal/errors"
	"github.com/tsgonest/tsflatten/internal/flatten"
	"github.com/tsgonest/tsflatten/internal/format"
	"github.com/tsgonest/tsflatten/internal/logger"
)

// ConfigResult holds the result of loading a tsflatten config file.
type ConfigResult struct {
	Config *config.Config
	Path   string // resolved path to the config file (empty if none found)
}

// loadOrDiscoverConfig loads the config at configPath, or
// tsflatten.config.json from cwd when configPath is empty. No config file
// is not an error.
func loadOrDiscoverConfig(configPath, cwd string) (*ConfigResult, error) {
	if configPath != "" && !filepath.IsAbs(configPath) {
		configPath = filepath.Join(cwd, configPath)
	}
	path := config.Find(configPath, cwd)
	if path == "" {
		cfg := config.DefaultConfig()
		return &ConfigResult{Config: &cfg}, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return &ConfigResult{Config: cfg, Path: path}, nil
}

// Job is one flattening run.
type Job struct {
	TSConfig   string
	RouterFile string
	Output     string
	Cwd        string
	Config     *config.Config
	// FS defaults to the OS filesystem with bundled lib files.
	FS vfs.FS
	// Diagnostics receives TypeScript diagnostics that stop the run.
	Diagnostics io.Writer
	// Quiet drops informational findings from the report.
	Quiet bool
}

// Report summarizes a finished run.
type Report struct {
	Root         string
	ExportName   string
	Output       string
	Declarations int
	Records      int
	Erased       int
	Formatted    bool
	Elapsed      time.Duration
	// Diagnostics are the non-fatal findings of the run.
	Diagnostics *diagnostic.Collector
}

func (j *Job) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(j.Cwd, p)
}

// Run loads the project, flattens the root declaration and writes the
// output file. Nothing is written when any step before formatting fails.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	cfg := j.Config
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	found := diagnostic.NewCollector(j.Quiet)
	for _, w := range cfg.ValidateDetailed().Warnings {
		found.Warn(diagnostic.CategoryConfig, w)
	}

	project, diags, err := compiler.LoadProject(ctx, compiler.LoadOptions{
		FS:         j.FS,
		Cwd:        j.Cwd,
		TSConfig:   j.TSConfig,
		RouterFile: j.RouterFile,
	})
	if err != nil {
		if len(diags) > 0 && j.Diagnostics != nil {
			compiler.WriteDiagnostics(j.Diagnostics, diags, j.Cwd, compiler.IsPrettyOutput())
		}
		return nil, errors.Wrap(err, "loading project")
	}
	logger.Logger.Debugw("program ready", "files", len(project.Program.GetSourceFiles()), "elapsed", time.Since(start))

	root, err := compiler.FindRoot(project.RouterFile, cfg.RootNames)
	if err != nil {
		return nil, err
	}

	checker, release, err := project.Checker(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	graph, err := analyzer.NewCheckerGraph(checker, cfg.GraphOptions())
	if err != nil {
		return nil, err
	}
	rootType, err := graph.TypeOfDeclaration(root.Decl)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving type of %s", root.Name)
	}
	if graph.Key(rootType) == "any" {
		found.WarnWithHint(diagnostic.CategoryUnresolved,
			fmt.Sprintf("type of %s resolved to any", root.Name),
			"check that the router file's imports resolve under this tsconfig")
	}

	f := flatten.New[*shimchecker.Type](graph, cfg.FlattenOptions())
	expr := f.Flatten(rootType)
	emitOpts := cfg.EmitOptions(root.Name)
	emitOpts.Reserved = append(emitOpts.Reserved, f.Verbatim()...)
	doc := flatten.Emit(expr, f.Table(), emitOpts)

	report := &Report{
		Root:         root.Name,
		ExportName:   emitOpts.ExportName,
		Output:       j.path(j.Output),
		Declarations: len(doc.Declarations),
		Records:      f.Table().Len(),
		Erased:       f.Erased(),
		Diagnostics:  found,
	}
	noteDeclarations(found, doc)
	logger.Logger.Debugw("flattened",
		"root", root.Name,
		"records", report.Records,
		"erased", report.Erased,
		"declarations", report.Declarations)

	text := doc.String()
	formatter, err := format.New(cfg.Format, j.Cwd)
	if err != nil {
		return nil, err
	}
	if formatted, ferr := formatter.Format(ctx, text); ferr != nil {
		found.WarnWithHint(diagnostic.CategoryFormat,
			"formatting failed, wrote unformatted output: "+ferr.Error(),
			errors.FlattenHints(ferr))
	} else {
		text = formatted
		report.Formatted = true
	}

	if err := writeFile(report.Output, text); err != nil {
		return nil, err
	}
	if cfg.DumpVisits != "" {
		if err := dumpVisits(j.path(cfg.DumpVisits), f.Table(), emitOpts); err != nil {
			return nil, err
		}
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// noteDeclarations records why each helper declaration was emitted.
func noteDeclarations(found *diagnostic.Collector, doc *flatten.Document) {
	reused := 0
	for _, d := range doc.Declarations {
		switch {
		case d.Record == nil || d.Exported:
		case d.Record.Cyclic:
			found.Infof(diagnostic.CategoryCycle, "%s refers to itself, declared as %s", shorten(d.Record.Key), d.Name)
		default:
			reused++
		}
	}
	if reused > 0 {
		found.Infof(diagnostic.CategoryHoisted, "%d reused type(s) declared separately", reused)
	}
}

func shorten(key string) string {
	const limit = 60
	if len(key) <= limit {
		return key
	}
	return key[:limit] + "..."
}

func writeFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory for %s", path)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func dumpVisits(path string, table *flatten.VisitTable, opts flatten.EmitOptions) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "closing %s", path)
		}
	}()
	return flatten.WriteVisits(out, table, opts)
}
