package umalloc

import "github.com/joshuapare/heapkit/internal/format"

// find returns the last free-list node whose successor is too small for size.
// Its successor is therefore either the first fit or Nil, in which case the
// returned node is the list tail and the insertion point for growth.
func (a *Allocator) find(size int) int {
	data := a.data()
	cur := a.head
	for {
		next := format.Next(data, cur)
		if next == format.Nil || format.Size(data, next) >= size {
			return cur
		}
		cur = next
	}
}

// place allocates size bytes out of the successor of pred, which must fit.
// The successor is split when the remainder can hold a header plus at least
// one aligned payload unit; otherwise it is unlinked and handed out whole.
func (a *Allocator) place(pred, size int) (int, error) {
	data := a.data()
	blk := format.Next(data, pred)
	if format.Size(data, blk)-size >= format.HeaderSize+format.Alignment {
		return a.split(blk, size)
	}

	format.SetNext(data, pred, format.Next(data, blk))
	format.Allocate(data, blk)
	a.stats.ExactFits++
	return blk, nil
}

// predecessorOf returns the last free-list node below blk: the node after
// which blk belongs in address order.
func (a *Allocator) predecessorOf(blk int) int {
	data := a.data()
	pred := a.head
	for next := format.Next(data, pred); next != format.Nil && next < blk; next = format.Next(data, pred) {
		pred = next
	}
	return pred
}
