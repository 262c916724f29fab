package trace

import "math/rand"

// Generate returns a random trace with n allocations of 1..maxSize bytes.
// Frees are interleaved at random and every block is freed by the end, so the
// trace holds exactly 2n operations. The same seed yields the same trace.
func Generate(seed int64, n int, maxSize uint64) []Op {
	if n <= 0 {
		return nil
	}
	if maxSize == 0 {
		maxSize = 1
	}
	rng := rand.New(rand.NewSource(seed))
	ops := make([]Op, 0, 2*n)
	var live []int

	free := func() {
		j := rng.Intn(len(live))
		ops = append(ops, Op{Kind: Free, ID: live[j]})
		live[j] = live[len(live)-1]
		live = live[:len(live)-1]
	}

	for id := range n {
		for len(live) > 0 && rng.Intn(100) < 45 {
			free()
		}
		size := 1 + uint64(rng.Int63n(int64(min(maxSize, 1<<62))))
		ops = append(ops, Op{Kind: Alloc, ID: id, Size: size})
		live = append(live, id)
	}
	for len(live) > 0 {
		free()
	}
	return ops
}
