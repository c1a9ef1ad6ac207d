package testutil

import (
	"context"
	"testing"

	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/tsgonest/tsflatten/internal/compiler"
)

// DefaultTSConfig is used when a test provides no tsconfig.json.
const DefaultTSConfig = `{
  "compilerOptions": {
    "strict": true,
    "target": "es2022",
    "module": "esnext",
    "moduleResolution": "bundler",
    "noEmit": true
  },
  "include": ["*.ts"]
}`

// Env is a loaded project with its checker.
type Env struct {
	Dir     string
	FS      *OverlayFS
	Project *compiler.Project
	Checker *shimchecker.Checker
}

// Files writes sources relative to a fresh temp dir into an overlay.
// "tsconfig.json" defaults to DefaultTSConfig.
func Files(t testing.TB, sources map[string]string) (string, *OverlayFS) {
	t.Helper()
	dir := tspath.NormalizePath(t.TempDir())
	files := make(map[string]string, len(sources)+1)
	for name, src := range sources {
		files[tspath.ResolvePath(dir, name)] = src
	}
	cfg := tspath.ResolvePath(dir, "tsconfig.json")
	if _, ok := files[cfg]; !ok {
		files[cfg] = DefaultTSConfig
	}
	return dir, NewDefaultOverlayFS(files)
}

// LoadRouter builds a program over sources and loads routerFile from it.
// The checker is released when the test ends.
func LoadRouter(t testing.TB, sources map[string]string, routerFile string) *Env {
	t.Helper()
	dir, fs := Files(t, sources)

	ctx := context.Background()
	project, diags, err := compiler.LoadProject(ctx, compiler.LoadOptions{
		FS:         fs,
		Cwd:        dir,
		TSConfig:   "tsconfig.json",
		RouterFile: routerFile,
	})
	if err != nil {
		for _, d := range diags {
			t.Logf("diagnostic: %s", d.String())
		}
		t.Fatalf("loading project: %v", err)
	}

	checker, release, err := project.Checker(ctx)
	if err != nil {
		t.Fatalf("type checker: %v", err)
	}
	t.Cleanup(release)

	return &Env{Dir: dir, FS: fs, Project: project, Checker: checker}
}
