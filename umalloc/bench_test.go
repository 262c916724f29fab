package umalloc

import (
	"fmt"
	"testing"
)

// Benchmark_Alloc_FreeListScan measures a request that walks past every hole
// in a fragmented free list before landing on the tail block.
func Benchmark_Alloc_FreeListScan(b *testing.B) {
	for _, holes := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("%d_holes", holes), func(b *testing.B) {
			a, _ := newTestAllocator(b)
			ps := make([]Ptr, 0, 2*holes)
			for range 2 * holes {
				p, _, err := a.Alloc(16)
				if err != nil {
					b.Fatal(err)
				}
				ps = append(ps, p)
			}
			for i := 0; i < len(ps); i += 2 {
				if err := a.Free(ps[i]); err != nil {
					b.Fatal(err)
				}
			}

			b.ReportAllocs()
			for b.Loop() {
				p, _, err := a.Alloc(1024)
				if err != nil {
					b.Fatal(err)
				}
				if err := a.Free(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func Benchmark_Alloc_Sizes(b *testing.B) {
	for _, size := range []uint64{16, 256, 4096} {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			a, _ := newTestAllocator(b)
			b.ReportAllocs()
			for b.Loop() {
				p, _, err := a.Alloc(size)
				if err != nil {
					b.Fatal(err)
				}
				if err := a.Free(p); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
