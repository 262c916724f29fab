package umalloc

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/umalloc/sbrk"
)

const (
	// DefaultGrowthFactor is the over-allocation multiplier applied to a
	// request that forces growth.
	DefaultGrowthFactor = 16

	// DefaultChunkPages sets the default MaxChunk in system pages.
	DefaultChunkPages = 64
)

// Runtime debug flags, mirroring Config fields for processes that cannot be
// reconfigured in code.
var (
	logAlloc   = os.Getenv("UMALLOC_LOG_ALLOC") != ""
	checkAlloc = os.Getenv("UMALLOC_CHECK") != ""
)

// Config tunes an Allocator. The zero value is not valid; start from
// DefaultConfig.
type Config struct {
	// GrowthFactor multiplies a request that forces growth. Must be a power of two.
	GrowthFactor int

	// MaxChunk caps the payload of one growth chunk and therefore the largest
	// single request. Must be a positive multiple of 16.
	MaxChunk int

	// PanicOnMisuse turns contract violations into panics instead of errors.
	PanicOnMisuse bool

	// CheckEveryOp runs the consistency checker after every Alloc and Free
	// and fails the call with ErrCorrupt when it reports a violation.
	CheckEveryOp bool

	// Logger receives debug records for growth, splits and merges. Nil means
	// discard, unless UMALLOC_LOG_ALLOC is set.
	Logger *slog.Logger
}

// DefaultConfig returns the standard configuration: growth factor 16 and a
// maximum chunk of 64 pages.
func DefaultConfig() Config {
	return Config{
		GrowthFactor: DefaultGrowthFactor,
		MaxChunk:     DefaultChunkPages * sbrk.PageSize(),
		CheckEveryOp: checkAlloc,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.GrowthFactor < 1 || c.GrowthFactor&(c.GrowthFactor-1) != 0 {
		return fmt.Errorf("umalloc: growth factor %d must be a power of two", c.GrowthFactor)
	}
	if c.MaxChunk < format.Alignment || !format.IsAligned(c.MaxChunk) {
		return fmt.Errorf("umalloc: max chunk %d must be a positive multiple of %d", c.MaxChunk, format.Alignment)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	switch {
	case c.Logger != nil:
		return c.Logger
	case logAlloc:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}
