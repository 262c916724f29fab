// Package metrics exposes allocator counters as Prometheus metrics.
//
// The collector reads the allocator on every scrape and holds no state of its
// own. Allocators are not safe for concurrent use, so Gather must run on the
// goroutine that owns the allocator, or under the same lock.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/heapkit/umalloc"
)

const namespace = "umalloc"

// Source is the read-only view of an allocator the collector needs.
type Source interface {
	Stats() umalloc.Stats
	HeapSize() int
	FreeBytes() int
	Check() int
}

var (
	allocCallsDesc = prometheus.NewDesc(
		namespace+"_alloc_calls_total",
		"Total number of allocation requests, including failed ones.",
		nil,
		nil,
	)
	freeCallsDesc = prometheus.NewDesc(
		namespace+"_free_calls_total",
		"Total number of free requests, including rejected ones.",
		nil,
		nil,
	)
	allocsDesc = prometheus.NewDesc(
		namespace+"_allocs_total",
		"Successful allocations by how they were served.",
		[]string{"path"},
		nil,
	)
	splitsDesc = prometheus.NewDesc(
		namespace+"_splits_total",
		"Free blocks split to serve a request.",
		nil,
		nil,
	)
	exactFitsDesc = prometheus.NewDesc(
		namespace+"_exact_fits_total",
		"Free blocks handed out whole.",
		nil,
		nil,
	)
	coalesceDesc = prometheus.NewDesc(
		namespace+"_coalesce_total",
		"Merges of a released block with a free neighbor.",
		[]string{"direction"},
		nil,
	)
	growCallsDesc = prometheus.NewDesc(
		namespace+"_grow_calls_total",
		"Successful calls to the growth primitive.",
		nil,
		nil,
	)
	growBytesDesc = prometheus.NewDesc(
		namespace+"_grow_bytes_total",
		"Bytes obtained from the growth primitive.",
		nil,
		nil,
	)
	growFailuresDesc = prometheus.NewDesc(
		namespace+"_grow_failures_total",
		"Growth primitive failures.",
		nil,
		nil,
	)
	payloadBytesDesc = prometheus.NewDesc(
		namespace+"_payload_bytes_total",
		"Payload bytes handed out and returned.",
		[]string{"op"},
		nil,
	)
	misuseDesc = prometheus.NewDesc(
		namespace+"_misuse_total",
		"Caller contract violations.",
		nil,
		nil,
	)
	heapBytesDesc = prometheus.NewDesc(
		namespace+"_heap_bytes",
		"Bytes currently obtained from the growth primitive.",
		nil,
		nil,
	)
	freeBytesDesc = prometheus.NewDesc(
		namespace+"_free_bytes",
		"Payload bytes currently on the free list.",
		nil,
		nil,
	)
	checkDesc = prometheus.NewDesc(
		namespace+"_check_violations",
		"Violation mask reported by the heap checker, zero when consistent.",
		nil,
		nil,
	)
)

// Collector implements prometheus.Collector over a Source.
type Collector struct {
	src       Source
	checkHeap bool
}

// NewCollector returns a collector for src. When checkHeap is set every scrape
// also runs the consistency checker, which walks the whole heap.
func NewCollector(src Source, checkHeap bool) *Collector {
	return &Collector{src: src, checkHeap: checkHeap}
}

func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- allocCallsDesc
	descs <- freeCallsDesc
	descs <- allocsDesc
	descs <- splitsDesc
	descs <- exactFitsDesc
	descs <- coalesceDesc
	descs <- growCallsDesc
	descs <- growBytesDesc
	descs <- growFailuresDesc
	descs <- payloadBytesDesc
	descs <- misuseDesc
	descs <- heapBytesDesc
	descs <- freeBytesDesc
	if c.checkHeap {
		descs <- checkDesc
	}
}

func (c *Collector) Collect(m chan<- prometheus.Metric) {
	st := c.src.Stats()

	counter := func(desc *prometheus.Desc, v float64, labels ...string) {
		m <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, v, labels...)
	}
	counter(allocCallsDesc, float64(st.AllocCalls))
	counter(freeCallsDesc, float64(st.FreeCalls))
	counter(allocsDesc, float64(st.AllocFastPath), "free_list")
	counter(allocsDesc, float64(st.AllocSlowPath), "grow")
	counter(splitsDesc, float64(st.SplitCount))
	counter(exactFitsDesc, float64(st.ExactFits))
	counter(coalesceDesc, float64(st.CoalesceBackward), "backward")
	counter(coalesceDesc, float64(st.CoalesceForward), "forward")
	counter(growCallsDesc, float64(st.GrowCalls))
	counter(growBytesDesc, float64(st.GrowBytes))
	counter(growFailuresDesc, float64(st.FailedGrows))
	counter(payloadBytesDesc, float64(st.BytesAllocated), "alloc")
	counter(payloadBytesDesc, float64(st.BytesFreed), "free")
	counter(misuseDesc, float64(st.Misuse))

	m <- prometheus.MustNewConstMetric(heapBytesDesc, prometheus.GaugeValue, float64(c.src.HeapSize()))
	m <- prometheus.MustNewConstMetric(freeBytesDesc, prometheus.GaugeValue, float64(c.src.FreeBytes()))
	if c.checkHeap {
		m <- prometheus.MustNewConstMetric(checkDesc, prometheus.GaugeValue, float64(c.src.Check()))
	}
}
