package umalloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/umalloc/sbrk"
)

const (
	// testMaxChunk keeps growth arithmetic independent of the host page size.
	testMaxChunk = 1 << 16

	// testArenaLimit is the default reservation for test heaps.
	testArenaLimit = 64 << 20
)

func testConfig() *Config {
	return &Config{
		GrowthFactor: DefaultGrowthFactor,
		MaxChunk:     testMaxChunk,
	}
}

// newTestAllocator returns an initialized allocator over a fresh memory break.
func newTestAllocator(t testing.TB) (*Allocator, *sbrk.Memory) {
	t.Helper()
	return newTestAllocatorWith(t, testArenaLimit, testConfig())
}

func newTestAllocatorWith(t testing.TB, limit int, cfg *Config) (*Allocator, *sbrk.Memory) {
	t.Helper()
	g := sbrk.NewMemory(limit)
	a, err := New(g, cfg)
	require.NoError(t, err)
	require.NoError(t, a.Init())
	t.Cleanup(func() { _ = a.Close() })
	return a, g
}

// assertConsistent fails the test with the checker's findings when any heap
// invariant is broken.
func assertConsistent(t testing.TB, a *Allocator) {
	t.Helper()
	r := a.Verify()
	require.True(t, r.OK(), "heap inconsistent (%s): %v", r.Violations, r.Err())
}

// mustAlloc allocates n bytes and checks the heap afterwards.
func mustAlloc(t testing.TB, a *Allocator, n uint64) Ptr {
	t.Helper()
	p, payload, err := a.Alloc(n)
	require.NoError(t, err)
	require.NotZero(t, p)
	require.GreaterOrEqual(t, uint64(len(payload)), n)
	assertConsistent(t, a)
	return p
}

func mustFree(t testing.TB, a *Allocator, p Ptr) {
	t.Helper()
	require.NoError(t, a.Free(p))
	assertConsistent(t, a)
}

// freeBlocks returns the non-sentinel free blocks in address order.
func freeBlocks(a *Allocator) []Block {
	var out []Block
	for _, b := range a.Blocks() {
		if b.Offset != a.head && !b.Allocated {
			out = append(out, b)
		}
	}
	return out
}

func allocatedBlocks(a *Allocator) []Block {
	var out []Block
	for _, b := range a.Blocks() {
		if b.Allocated {
			out = append(out, b)
		}
	}
	return out
}

// gappyGrower inserts a hole before every region after the first, breaking
// the contiguity contract.
type gappyGrower struct {
	*sbrk.Memory
	calls int
}

func (g *gappyGrower) Grow(n int) (int, error) {
	g.calls++
	if g.calls == 1 {
		return g.Memory.Grow(n)
	}
	off, err := g.Memory.Grow(n + format.Alignment)
	if err != nil {
		return 0, err
	}
	return off + format.Alignment, nil
}
