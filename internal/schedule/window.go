package schedule

// Result is the outcome of processing one chunk.
type Result struct {
	Chunk Chunk
	Data  []byte
}

// Window buffers results that finished ahead of their turn and releases them in index order.
type Window struct {
	next    int
	pending map[int]Result
}

// NewWindow returns an empty window expecting chunk 0 first.
func NewWindow() *Window {
	return &Window{pending: make(map[int]Result)}
}

// Push stores a result. Results for already released or already pending indices are ignored
// and reported as false.
func (w *Window) Push(r Result) bool {
	if r.Chunk.Index < w.next {
		return false
	}

	if _, ok := w.pending[r.Chunk.Index]; ok {
		return false
	}

	w.pending[r.Chunk.Index] = r

	return true
}

// Pop releases the next result in order, if it has arrived.
func (w *Window) Pop() (Result, bool) {
	r, ok := w.pending[w.next]
	if !ok {
		return Result{}, false
	}

	delete(w.pending, w.next)
	w.next++

	return r, true
}
