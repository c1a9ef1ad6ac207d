// Package config loads tsflatten.config.json.
package config

import (
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/tsgonest/tsflatten/internal/analyzer"
	"github.com/tsgonest/tsflatten/internal/compiler"
	"github.com/tsgonest/tsflatten/internal/errors"
	"github.com/tsgonest/tsflatten/internal/flatten"
	"github.com/tsgonest/tsflatten/internal/format"
)

// DefaultFileName is picked up from the working directory when no --config
// flag is given.
const DefaultFileName = "tsflatten.config.json"

// Config represents the tsflatten configuration.
type Config struct {
	// RootNames are the router variable names, in priority order.
	RootNames []string `json:"rootNames,omitzero"`
	// ExportName names the exported type. Empty derives it from the root
	// declaration (appRouter becomes AppRouter).
	ExportName string         `json:"exportName,omitzero"`
	Flatten    FlattenConfig  `json:"flatten"`
	Emit       EmitConfig     `json:"emit"`
	Format     format.Options `json:"format"`
	// DumpVisits is a path the visit table is written to as JSON.
	DumpVisits string `json:"dumpVisits,omitzero"`
}

// FlattenConfig controls type expansion.
type FlattenConfig struct {
	PassThrough      []string            `json:"passThrough,omitzero"`
	Erase            []flatten.EraseRule `json:"erase"`
	ErasedType       string              `json:"erasedType"`
	Cycles           flatten.CycleMode   `json:"cycles"`
	KeyedGenerics    []string            `json:"keyedGenerics"`
	DeferredWrappers []string            `json:"deferredWrappers"`
	KeyCacheSize     int                 `json:"keyCacheSize,omitzero"`
}

// EmitConfig controls which expansions become named declarations.
type EmitConfig struct {
	ReuseThreshold int `json:"reuseThreshold"`
	MinHoistSize   int `json:"minHoistSize"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() Config {
	fo := flatten.DefaultOptions()
	return Config{
		RootNames: append([]string(nil), compiler.DefaultRootNames...),
		Flatten: FlattenConfig{
			Erase:            fo.Erase,
			ErasedType:       fo.ErasedType,
			Cycles:           fo.Cycles,
			KeyedGenerics:    append([]string(nil), analyzer.DefaultKeyedGenerics...),
			DeferredWrappers: append([]string(nil), analyzer.DefaultDeferredWrappers...),
			KeyCacheSize:     analyzer.DefaultKeyCacheSize,
		},
		Emit: EmitConfig{
			ReuseThreshold: flatten.DefaultReuseThreshold,
			MinHoistSize:   flatten.DefaultMinHoistSize,
		},
		Format: format.DefaultOptions(),
	}
}

// Load reads a config file over DefaultConfig. Members the file omits keep
// their defaults; unknown members are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %q", path)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg, json.RejectUnknownMembers(true)); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parsing config file %q", path), errors.ErrInvalidConfig)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config in %q", path)
	}
	return &cfg, nil
}

// Find returns the config path to load: explicit when set, otherwise
// DefaultFileName in dir if it exists, otherwise "".
func Find(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	path := filepath.Join(dir, DefaultFileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

// Validate returns the first hard error of ValidateDetailed.
func (c *Config) Validate() error {
	result := c.ValidateDetailed()
	if result.IsValid() {
		return nil
	}
	err := errors.Mark(errors.Newf("%s", result.Errors[0]), errors.ErrInvalidConfig)
	if len(result.Errors) > 1 {
		err = errors.WithDetailf(err, "%d more problems", len(result.Errors)-1)
	}
	return err
}

// FlattenOptions converts the config for flatten.New.
func (c *Config) FlattenOptions() flatten.Options {
	return flatten.Options{
		PassThrough: c.Flatten.PassThrough,
		Erase:       c.Flatten.Erase,
		ErasedType:  c.Flatten.ErasedType,
		Cycles:      c.Flatten.Cycles,
	}
}

// GraphOptions converts the config for analyzer.NewCheckerGraph.
func (c *Config) GraphOptions() analyzer.GraphOptions {
	return analyzer.GraphOptions{
		KeyedGenerics:    c.Flatten.KeyedGenerics,
		DeferredWrappers: c.Flatten.DeferredWrappers,
		KeyCacheSize:     c.Flatten.KeyCacheSize,
	}
}

// EmitOptions converts the config for flatten.Emit. rootName is used to
// derive the export name when ExportName is empty.
func (c *Config) EmitOptions(rootName string) flatten.EmitOptions {
	name := c.ExportName
	if name == "" {
		name = flatten.ExportNameFor(rootName)
	}
	opts := flatten.DefaultEmitOptions(name)
	opts.ReuseThreshold = c.Emit.ReuseThreshold
	opts.MinHoistSize = c.Emit.MinHoistSize
	opts.Reserved = append(opts.Reserved, c.Flatten.KeyedGenerics...)
	opts.Reserved = append(opts.Reserved, c.Flatten.DeferredWrappers...)
	return opts
}
