package fast

import "container/list"

const unmapped = -1

// tables holds the FAST mapping engine's pure containers: no policy
// lives here beyond initialization and the handful of queue primitives
// that have no sensible alternative behaviour (pop-from-empty panics).
type tables struct {
	l2p []int // logical block -> physical block, or unmapped
	p2l []int // physical block -> logical block, or unmapped

	free *list.List // FIFO of free physical block indices (int)

	rwLog map[uint64]rwLocation // LPN -> (pbn, page index)

	swBlock  int // physical block index, or unmapped
	rwBlocks *list.List // FIFO of RW log physical block indices (int)
}

type rwLocation struct {
	pbn  int
	page int
}

func newTables(totalLogicalBlocks, totalPhysicalBlocks int) *tables {
	t := &tables{
		l2p:      make([]int, totalLogicalBlocks),
		p2l:      make([]int, totalPhysicalBlocks),
		free:     list.New(),
		rwLog:    make(map[uint64]rwLocation),
		swBlock:  unmapped,
		rwBlocks: list.New(),
	}
	for i := range t.l2p {
		t.l2p[i] = unmapped
	}
	for i := range t.p2l {
		t.p2l[i] = unmapped
	}
	return t
}

// getFreeBlock pops the head of the free queue. It is a fatal policy
// error to call this with an empty queue: the simulator never
// reclaims opportunistically, so running out means the workload
// outpaced garbage collection.
func (t *tables) getFreeBlock() int {
	e := t.free.Front()
	if e == nil {
		panic("fast: no free block available")
	}
	t.free.Remove(e)
	return e.Value.(int)
}

func (t *tables) pushFree(pbn int) {
	t.free.PushBack(pbn)
}

func (t *tables) freeBlockCount() int {
	return t.free.Len()
}

// popRWHead pops and returns the head of the RW block FIFO.
func (t *tables) popRWHead() int {
	e := t.rwBlocks.Front()
	if e == nil {
		panic("fast: no RW log block available")
	}
	t.rwBlocks.Remove(e)
	return e.Value.(int)
}

func (t *tables) pushRWTail(pbn int) {
	t.rwBlocks.PushBack(pbn)
}

// rwBlockIndices returns the current RW block pool in FIFO order.
func (t *tables) rwBlockIndices() []int {
	out := make([]int, 0, t.rwBlocks.Len())
	for e := t.rwBlocks.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(int))
	}
	return out
}
