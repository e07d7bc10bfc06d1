package gopar

import (
	"github.com/go-foundations/gopar/core"
)

// ErrAlreadyInitialized is returned by Builder.BuildGlobal when the
// global pool has already been configured, whether explicitly by an
// earlier BuildGlobal call or implicitly by the first operation that
// needed it.
var ErrAlreadyInitialized = core.ErrAlreadyInitialized

// Config holds configuration for the global thread pool.
type Config struct {
	NumThreads int // Number of worker goroutines; <= 0 falls back to DefaultNumThreads
}

// DefaultNumThreads is the pool size used when nothing overrides it.
const DefaultNumThreads = core.DefaultNumThreads

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{NumThreads: DefaultNumThreads}
}

// Builder configures and builds the global thread pool, via the same
// fluent chain-and-build pattern as a worker pool's NewWithConfig, but
// for gopar's single process-wide pool rather than a value the caller
// holds onto.
type Builder struct {
	config Config
}

// NewBuilder returns a Builder seeded with DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// NumThreads sets the number of worker goroutines the global pool will
// use.
func (b *Builder) NumThreads(n int) *Builder {
	b.config.NumThreads = n
	return b
}

// BuildGlobal builds the global pool from this Builder's configuration.
// It must be called, if at all, before any parallel operation (ForEach,
// Join, JoinContext, ...) runs for the first time; otherwise the pool is
// already built with DefaultConfig and BuildGlobal returns
// ErrAlreadyInitialized.
func (b *Builder) BuildGlobal() error {
	n := b.config.NumThreads
	if n <= 0 {
		n = DefaultNumThreads
	}
	return core.BuildGlobalRegistry(n)
}
