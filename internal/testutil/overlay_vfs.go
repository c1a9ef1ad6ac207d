// Package testutil builds typescript-go programs from in-memory TypeScript
// sources for tests.
package testutil

import (
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/microsoft/typescript-go/shim/bundled"
	"github.com/microsoft/typescript-go/shim/tspath"
	"github.com/microsoft/typescript-go/shim/vfs"
	"github.com/microsoft/typescript-go/shim/vfs/osvfs"
)

// OverlayFS serves in-memory files on top of a base filesystem. Overlay
// files shadow base files at the same path and are read-only.
type OverlayFS struct {
	base  vfs.FS
	files map[string]string
}

var _ vfs.FS = (*OverlayFS)(nil)

// NewOverlayFS layers files, keyed by absolute path, over base.
func NewOverlayFS(base vfs.FS, files map[string]string) *OverlayFS {
	norm := make(map[string]string, len(files))
	for p, src := range files {
		norm[tspath.NormalizePath(p)] = src
	}
	return &OverlayFS{base: base, files: norm}
}

// NewDefaultOverlayFS layers files over the OS filesystem with the bundled
// TypeScript lib files mounted.
func NewDefaultOverlayFS(files map[string]string) *OverlayFS {
	return NewOverlayFS(bundled.WrapFS(osvfs.FS()), files)
}

func (o *OverlayFS) lookup(path string) (string, bool) {
	src, ok := o.files[tspath.NormalizePath(path)]
	return src, ok
}

func (o *OverlayFS) UseCaseSensitiveFileNames() bool {
	return o.base.UseCaseSensitiveFileNames()
}

func (o *OverlayFS) FileExists(path string) bool {
	if _, ok := o.lookup(path); ok {
		return true
	}
	return o.base.FileExists(path)
}

func (o *OverlayFS) ReadFile(path string) (string, bool) {
	if src, ok := o.lookup(path); ok {
		return src, true
	}
	return o.base.ReadFile(path)
}

func dirPrefix(path string) string {
	p := tspath.NormalizePath(path)
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func (o *OverlayFS) DirectoryExists(path string) bool {
	prefix := dirPrefix(path)
	for p := range o.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return o.base.DirectoryExists(path)
}

func (o *OverlayFS) GetAccessibleEntries(path string) vfs.Entries {
	entries := o.base.GetAccessibleEntries(path)
	prefix := dirPrefix(path)

	seenDirs := make(map[string]bool)
	seenFiles := make(map[string]bool)
	for _, d := range entries.Directories {
		seenDirs[d] = true
	}
	for _, f := range entries.Files {
		seenFiles[f] = true
	}
	for p := range o.files {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok {
			continue
		}
		if dir, _, nested := strings.Cut(rest, "/"); nested {
			if !seenDirs[dir] {
				seenDirs[dir] = true
				entries.Directories = append(entries.Directories, dir)
			}
		} else if !seenFiles[rest] {
			seenFiles[rest] = true
			entries.Files = append(entries.Files, rest)
		}
	}
	sort.Strings(entries.Directories)
	sort.Strings(entries.Files)
	return entries
}

type memFileInfo struct {
	name string
	size int64
}

var (
	_ fs.FileInfo = (*memFileInfo)(nil)
	_ fs.DirEntry = (*memFileInfo)(nil)
)

func (fi *memFileInfo) IsDir() bool                { return false }
func (fi *memFileInfo) ModTime() time.Time         { return time.Time{} }
func (fi *memFileInfo) Mode() fs.FileMode          { return 0o444 }
func (fi *memFileInfo) Name() string               { return fi.name }
func (fi *memFileInfo) Size() int64                { return fi.size }
func (fi *memFileInfo) Sys() any                   { return nil }
func (fi *memFileInfo) Info() (fs.FileInfo, error) { return fi, nil }
func (fi *memFileInfo) Type() fs.FileMode          { return 0 }

func (o *OverlayFS) Stat(path string) vfs.FileInfo {
	if src, ok := o.lookup(path); ok {
		return &memFileInfo{name: tspath.GetBaseFileName(path), size: int64(len(src))}
	}
	return o.base.Stat(path)
}

func (o *OverlayFS) WalkDir(root string, walkFn vfs.WalkDirFunc) error {
	return o.base.WalkDir(root, walkFn)
}

func (o *OverlayFS) Realpath(path string) string {
	if _, ok := o.lookup(path); ok {
		return tspath.NormalizePath(path)
	}
	return o.base.Realpath(path)
}

func (o *OverlayFS) WriteFile(path string, data string, writeByteOrderMark bool) error {
	if _, ok := o.lookup(path); ok {
		panic("testutil: write to overlay file " + path)
	}
	return o.base.WriteFile(path, data, writeByteOrderMark)
}

func (o *OverlayFS) Remove(path string) error {
	if _, ok := o.lookup(path); ok {
		panic("testutil: remove of overlay file " + path)
	}
	return o.base.Remove(path)
}

func (o *OverlayFS) Chtimes(path string, aTime time.Time, mTime time.Time) error {
	if _, ok := o.lookup(path); ok {
		panic("testutil: chtimes on overlay file " + path)
	}
	return o.base.Chtimes(path, aTime, mTime)
}
