package trace

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/umalloc"
	"github.com/joshuapare/heapkit/umalloc/verify"
)

// Heap is the allocator surface a replay drives.
type Heap interface {
	Alloc(n uint64) (umalloc.Ptr, []byte, error)
	Free(p umalloc.Ptr) error
	Payload(p umalloc.Ptr) ([]byte, error)
	Verify() *verify.Report
}

var (
	// ErrUnknownID indicates a free of an id that is not live.
	ErrUnknownID = errors.New("trace: free of unknown id")

	// ErrLiveID indicates an alloc reusing an id that is still live.
	ErrLiveID = errors.New("trace: id already live")

	// ErrClobbered indicates a payload that no longer holds its fill pattern,
	// meaning another block was placed on top of it.
	ErrClobbered = errors.New("trace: payload clobbered")

	// ErrInconsistent indicates the heap checker reported a violation.
	ErrInconsistent = errors.New("trace: heap inconsistent")
)

// OpError is a replay failure at one trace operation.
type OpError struct {
	Index int // position in the op slice
	Op    Op
	Err   error
}

func (e *OpError) Error() string {
	if e.Op.Line > 0 {
		return fmt.Sprintf("op %d (line %d, %q): %v", e.Index, e.Op.Line, e.Op, e.Err)
	}
	return fmt.Sprintf("op %d (%q): %v", e.Index, e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// Options controls a replay.
type Options struct {
	// Check runs the heap checker after every operation.
	Check bool

	// Logger receives one debug record per operation. Nil disables logging.
	Logger *slog.Logger
}

// Result summarizes a replay.
type Result struct {
	Ops    int // operations executed
	Allocs int
	Frees  int
	Checks int // checker runs

	LiveBlocks    int    // blocks still allocated at the end
	LiveBytes     uint64 // requested bytes still allocated at the end
	PeakLiveBytes uint64 // high-water mark of requested bytes
	MaxAddress    umalloc.Ptr

	Report *verify.Report // checker result after the last operation
}

type block struct {
	p    umalloc.Ptr
	size uint64
}

// Pattern returns the fill word for id. Every payload byte of a live block is
// derived from it.
func Pattern(id int) uint64 {
	return xxhash.Sum64String(strconv.Itoa(id))
}

// Replay executes ops against h. Each payload is filled with its id's pattern
// on allocation and verified before it is freed. Replay stops at the first
// failing operation and returns the partial result with an *OpError.
func Replay(h Heap, ops []Op, opts Options) (*Result, error) {
	res := &Result{}
	live := make(map[int]block)

	fail := func(i int, err error) (*Result, error) {
		res.Report = h.Verify()
		return res, &OpError{Index: i, Op: ops[i], Err: err}
	}

	for i, op := range ops {
		switch op.Kind {
		case Alloc:
			if _, ok := live[op.ID]; ok {
				return fail(i, ErrLiveID)
			}
			p, payload, err := h.Alloc(op.Size)
			if err != nil {
				return fail(i, err)
			}
			buf.Fill(payload[:op.Size], Pattern(op.ID))
			live[op.ID] = block{p: p, size: op.Size}
			res.Allocs++
			res.LiveBytes += op.Size
			res.PeakLiveBytes = max(res.PeakLiveBytes, res.LiveBytes)
			res.MaxAddress = max(res.MaxAddress, p)

		case Free:
			b, ok := live[op.ID]
			if !ok {
				return fail(i, ErrUnknownID)
			}
			payload, err := h.Payload(b.p)
			if err != nil {
				return fail(i, err)
			}
			if idx, ok := buf.Matches(payload[:b.size], Pattern(op.ID)); !ok {
				return fail(i, fmt.Errorf("%w: block 0x%X byte %d", ErrClobbered, b.p, idx))
			}
			if err := h.Free(b.p); err != nil {
				return fail(i, err)
			}
			delete(live, op.ID)
			res.Frees++
			res.LiveBytes -= b.size

		default:
			return fail(i, fmt.Errorf("%w: unknown op %s", ErrSyntax, op.Kind))
		}
		res.Ops++

		if opts.Logger != nil {
			opts.Logger.Debug("replay", "index", i, "op", op.String())
		}
		if opts.Check {
			res.Checks++
			if r := h.Verify(); !r.OK() {
				res.Report = r
				return res, &OpError{Index: i, Op: op, Err: fmt.Errorf("%w (%s): %w", ErrInconsistent, r.Violations, r.Err())}
			}
		}
	}

	res.LiveBlocks = len(live)
	res.Report = h.Verify()
	return res, nil
}
