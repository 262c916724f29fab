package verify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Violation is a bit set of broken heap invariants.
type Violation uint32

const (
	FreeListAllocated Violation = 1 << iota
	Ordering
	Overlap
	Uncoalesced
	Sentinel
	Alignment
	Linkage
)

var violationNames = []struct {
	v    Violation
	name string
}{
	{FreeListAllocated, "FreeListAllocated"},
	{Ordering, "Ordering"},
	{Overlap, "Overlap"},
	{Uncoalesced, "Uncoalesced"},
	{Sentinel, "Sentinel"},
	{Alignment, "Alignment"},
	{Linkage, "Linkage"},
}

func (v Violation) String() string {
	if v == 0 {
		return "none"
	}
	var parts []string
	for _, n := range violationNames {
		if v&n.v != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := v &^ (FreeListAllocated | Ordering | Overlap | Uncoalesced | Sentinel | Alignment | Linkage); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%X", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// MaxErrors caps the number of ValidationErrors kept in one Report.
const MaxErrors = 64

// ValidationError describes one broken invariant.
type ValidationError struct {
	Type    string
	Kind    Violation
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Report is the result of a heap walk.
type Report struct {
	Violations Violation
	Errors     []*ValidationError
	Truncated  int // findings dropped beyond MaxErrors

	HeapSize        int // bytes between offset 0 and the break
	Blocks          int // blocks on the physical chain, sentinel included
	AllocatedBlocks int
	AllocatedBytes  int // payload bytes of allocated blocks
	FreeBlocks      int // free-list nodes, sentinel excluded
	FreeBytes       int // payload bytes of free-list nodes
}

// OK reports whether no invariant is violated.
func (r *Report) OK() bool { return r.Violations == 0 }

// Code returns the violation mask, zero when consistent.
func (r *Report) Code() int { return int(r.Violations) }

// Err joins the recorded findings, or returns nil when consistent.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Errors)+1)
	for _, e := range r.Errors {
		errs = append(errs, e)
	}
	if r.Truncated > 0 {
		errs = append(errs, fmt.Errorf("%d more findings not recorded", r.Truncated))
	}
	return errors.Join(errs...)
}

func (r *Report) add(kind Violation, off int, details map[string]interface{}, msg string, args ...interface{}) {
	r.Violations |= kind
	if len(r.Errors) >= MaxErrors {
		r.Truncated++
		return
	}
	r.Errors = append(r.Errors, &ValidationError{
		Type:    kind.String(),
		Kind:    kind,
		Message: fmt.Sprintf(msg, args...),
		Offset:  off,
		Details: details,
	})
}

// Heap checks every invariant of the arena data whose sentinel head sits at
// offset head. len(data) is taken as the break.
func Heap(data []byte, head int) *Report {
	r := &Report{HeapSize: len(data)}

	sentinel, ok := checkSentinel(r, data, head)
	if !ok {
		return r
	}
	chain, order := walkChain(r, data, head)
	walkFreeList(r, data, sentinel, chain, order)
	return r
}

func checkSentinel(r *Report, data []byte, head int) (format.Block, bool) {
	b, err := format.Decode(data, head)
	switch {
	case errors.Is(err, format.ErrReservedBits):
		r.add(Sentinel, head, map[string]interface{}{"reserved": format.Reserved(data, head)},
			"sentinel has reserved bits set")
	case err != nil:
		r.add(Sentinel, head, nil, "sentinel unreadable: %v", err)
		return b, false
	}
	if !format.IsAligned(head) {
		r.add(Alignment, head, nil, "sentinel header not 16-byte aligned")
	}
	if b.Size != 0 {
		r.add(Sentinel, head, map[string]interface{}{"size": b.Size}, "sentinel size is %d, want 0", b.Size)
	}
	if b.Allocated {
		r.add(Sentinel, head, nil, "sentinel marked allocated")
	}
	return b, true
}

// walkChain follows physical-next offsets from the sentinel to the break and
// returns every block it visited (offset -> free) plus their order.
func walkChain(r *Report, data []byte, head int) (map[int]bool, []int) {
	chain := make(map[int]bool)
	var order []int
	prevFree := false

	for off := head; off < len(data); {
		b, err := format.Decode(data, off)
		if err != nil {
			if !errors.Is(err, format.ErrReservedBits) {
				r.add(Overlap, off, nil, "header runs past the break (0x%X)", len(data))
				break
			}
			r.add(Alignment, off, map[string]interface{}{"reserved": format.Reserved(data, off)},
				"reserved header bits set")
		}
		if !format.IsAligned(off) {
			r.add(Alignment, off, nil, "header not 16-byte aligned")
		}
		end, err := buf.CheckSpan(len(data), off, format.HeaderSize+b.Size)
		if err != nil {
			r.add(Overlap, off, map[string]interface{}{"size": b.Size, "break": len(data)},
				"block of %d bytes runs past the break: %v", b.Size, err)
			break
		}

		r.Blocks++
		chain[off] = !b.Allocated
		order = append(order, off)
		if off != head {
			if b.Allocated {
				r.AllocatedBlocks++
				r.AllocatedBytes += b.Size
				if b.Next != format.Nil {
					r.add(Linkage, off, map[string]interface{}{"next": b.Next},
						"allocated block still linked to 0x%X", b.Next)
				}
			} else if prevFree {
				r.add(Uncoalesced, off, nil, "free block adjacent to preceding free block")
			}
			prevFree = !b.Allocated
		}
		off = end
	}
	return chain, order
}

func walkFreeList(r *Report, data []byte, sentinel format.Block, chain map[int]bool, order []int) {
	onList := make(map[int]bool)
	complete := true
	prev := sentinel

	for cur := sentinel.Next; cur != format.Nil; {
		free, known := chain[cur]
		if !known {
			r.add(Linkage, prev.Offset, map[string]interface{}{"next": cur},
				"free-list link 0x%X does not name a block", cur)
			complete = false
			break
		}
		if cur <= prev.Offset {
			r.add(Ordering, prev.Offset, map[string]interface{}{"next": cur},
				"free list goes backwards to 0x%X", cur)
			complete = false
			break
		}
		b, _ := format.Decode(data, cur)
		if prev.Offset != sentinel.Offset && cur < prev.End() {
			r.add(Overlap, cur, map[string]interface{}{"prev": prev.Offset, "prev_end": prev.End()},
				"free block starts inside its predecessor")
		}
		if !free {
			r.add(FreeListAllocated, cur, nil, "allocated block on the free list")
		} else {
			r.FreeBlocks++
			r.FreeBytes += b.Size
			onList[cur] = true
		}
		prev = b
		cur = b.Next
	}

	if !complete {
		return
	}
	for _, off := range order {
		if off != sentinel.Offset && chain[off] && !onList[off] {
			r.add(Linkage, off, nil, "free block missing from the free list")
		}
	}
}
