// Package trace reads, writes, generates and replays allocation traces.
//
// A trace is plain text with one operation per line:
//
//	# comment
//	a <id> <size>   allocate size bytes and remember the block as id
//	f <id>          free the block remembered as id
//
// Ids are non-negative integers chosen by the trace author. An id may be
// reused after it has been freed.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind is the operation code of a trace line.
type Kind byte

const (
	Alloc Kind = 'a'
	Free  Kind = 'f'
)

func (k Kind) String() string {
	switch k {
	case Alloc:
		return "alloc"
	case Free:
		return "free"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

// Op is one trace operation.
type Op struct {
	Kind Kind
	ID   int
	Size uint64 // alloc only
	Line int    // 1-based source line, zero for generated ops
}

func (o Op) String() string {
	if o.Kind == Alloc {
		return fmt.Sprintf("a %d %d", o.ID, o.Size)
	}
	return fmt.Sprintf("%c %d", byte(o.Kind), o.ID)
}

// ErrSyntax indicates a malformed trace line.
var ErrSyntax = errors.New("trace: syntax error")

// Parse reads a trace. Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) ([]Op, error) {
	var ops []Op
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		op, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %q: %w", line, text, err)
		}
		op.Line = line
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: read: %w", err)
	}
	return ops, nil
}

func parseLine(text string) (Op, error) {
	fields := strings.Fields(text)
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("%w: unknown op %q", ErrSyntax, fields[0])
	}
	op := Op{Kind: Kind(fields[0][0])}

	want := 0
	switch op.Kind {
	case Alloc:
		want = 3
	case Free:
		want = 2
	default:
		return Op{}, fmt.Errorf("%w: unknown op %q", ErrSyntax, fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%w: %s takes %d fields, got %d", ErrSyntax, op.Kind, want-1, len(fields)-1)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 {
		return Op{}, fmt.Errorf("%w: bad id %q", ErrSyntax, fields[1])
	}
	op.ID = id

	if op.Kind == Alloc {
		size, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil || size == 0 {
			return Op{}, fmt.Errorf("%w: bad size %q", ErrSyntax, fields[2])
		}
		op.Size = size
	}
	return op, nil
}

// Write emits ops in the format Parse reads.
func Write(w io.Writer, ops []Op) error {
	bw := bufio.NewWriter(w)
	for _, op := range ops {
		if _, err := fmt.Fprintln(bw, op); err != nil {
			return err
		}
	}
	return bw.Flush()
}
