package wasmdraco

import (
	"io"

	"github.com/tetratelabs/wazero"
)

// Config holds configuration for loading a decoder module
type Config struct {
	// Stdout and Stderr receive the guest's WASI output. nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	// CompilationCache shares compiled code between Load calls.
	CompilationCache wazero.CompilationCache

	// Name is the instance name inside the wazero runtime.
	Name string

	// StartFunctions are called after instantiation, in order. Missing
	// functions are skipped. Emscripten reactor builds export _initialize.
	StartFunctions []string

	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// Option mutates a Config.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Name:           "draco",
		StartFunctions: []string{"_initialize"},
	}
}

// WithMemoryLimitPages caps guest memory growth.
func WithMemoryLimitPages(pages uint32) Option {
	return func(c *Config) {
		c.MemoryLimitPages = pages
	}
}

// WithStartFunctions replaces the functions run after instantiation.
func WithStartFunctions(names ...string) Option {
	return func(c *Config) {
		c.StartFunctions = names
	}
}

// WithOutput routes guest stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Config) {
		c.Stdout = stdout
		c.Stderr = stderr
	}
}

// WithCompilationCache shares compiled modules between runtimes.
func WithCompilationCache(cache wazero.CompilationCache) Option {
	return func(c *Config) {
		c.CompilationCache = cache
	}
}
