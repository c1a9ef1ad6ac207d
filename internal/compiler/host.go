package compiler

import (
	"github.com/microsoft/typescript-go/shim/bundled"
	shimcompiler "github.com/microsoft/typescript-go/shim/compiler"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/microsoft/typescript-go/shim/vfs/cachedvfs"
	"github.com/microsoft/typescript-go/shim/vfs/osvfs"
)

// DefaultFS is the OS filesystem behind a read cache, with the bundled
// TypeScript lib files mounted.
func DefaultFS() vfs.FS {
	return bundled.WrapFS(cachedvfs.From(osvfs.FS()))
}

// NewHost creates a compiler host rooted at cwd over fs.
func NewHost(cwd string, fs vfs.FS) shimcompiler.CompilerHost {
	return shimcompiler.NewCompilerHost(cwd, fs, bundled.LibPath(), nil, nil)
}
