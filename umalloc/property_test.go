package umalloc

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/buf"
)

type live struct {
	p    Ptr
	n    uint64
	fill uint64
}

// Test_Property_RandomAllocFree performs random allocations and frees with a
// full heap check after every step. Each payload is filled with a pattern
// derived from its address and re-verified before it is freed, which catches
// any block handed out twice.
func Test_Property_RandomAllocFree(t *testing.T) {
	const steps = 10000

	a, _ := newTestAllocator(t)
	rng := rand.New(rand.NewSource(42)) // Fixed seed for reproducibility
	var blocks []live

	for i := range steps {
		if len(blocks) == 0 || rng.Intn(100) < 55 {
			n := uint64(1 + rng.Intn(2048))
			p, payload, err := a.Alloc(n)
			require.NoError(t, err, "step %d: alloc(%d)", i, n)
			require.Zero(t, p%Alignment, "step %d: misaligned 0x%X", i, p)

			fill := rng.Uint64()
			buf.Fill(payload[:n], fill)
			blocks = append(blocks, live{p: p, n: n, fill: fill})
		} else {
			j := rng.Intn(len(blocks))
			b := blocks[j]
			payload, err := a.Payload(b.p)
			require.NoError(t, err, "step %d", i)
			idx, ok := buf.Matches(payload[:b.n], b.fill)
			require.True(t, ok, "step %d: payload 0x%X clobbered at byte %d", i, b.p, idx)

			require.NoError(t, a.Free(b.p), "step %d: free(0x%X)", i, b.p)
			blocks[j] = blocks[len(blocks)-1]
			blocks = blocks[:len(blocks)-1]
		}

		require.Zero(t, a.Check(), "step %d: %v", i, a.Verify().Err())
	}

	t.Logf("%d operations, %d live blocks, heap %d bytes, %d free",
		steps, len(blocks), a.HeapSize(), a.FreeBytes())

	rng.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })
	for _, b := range blocks {
		require.NoError(t, a.Free(b.p))
	}
	assertConsistent(t, a)

	// With nothing allocated every free byte merges into one block.
	free := freeBlocks(a)
	require.Len(t, free, 1)
	require.Equal(t, a.HeapSize()-2*HeaderSize, a.FreeBytes())
}

// Test_Property_FreeListStaysSorted interleaves bursts of allocations and
// frees in random order and checks the free list is address-ordered and free
// of adjacent pairs throughout.
func Test_Property_FreeListStaysSorted(t *testing.T) {
	a, _ := newTestAllocator(t)
	rng := rand.New(rand.NewSource(7))

	for round := range 50 {
		var ps []Ptr
		for range 40 {
			ps = append(ps, mustAlloc(t, a, uint64(1+rng.Intn(512))))
		}
		rng.Shuffle(len(ps), func(i, j int) { ps[i], ps[j] = ps[j], ps[i] })
		for _, p := range ps[:30] {
			require.NoError(t, a.Free(p))
		}

		prev := -1
		prevFree := false
		for _, b := range a.Blocks()[1:] {
			require.False(t, prevFree && !b.Allocated, "round %d: adjacent free blocks at 0x%X", round, b.Offset)
			prevFree = !b.Allocated
			if !b.Allocated {
				require.Greater(t, b.Offset, prev, "round %d", round)
				prev = b.Offset
			}
		}
		r := a.Verify()
		require.True(t, r.OK(), "round %d: %v", round, r.Err())
		require.Equal(t, a.FreeBytes(), r.FreeBytes)
	}
}
