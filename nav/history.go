package nav

// history is a bounded stack of past section indices. Pushing past the
// depth drops the oldest entry.
type history struct {
	buf   []int
	start int
	count int
}

func newHistory(depth int) *history {
	return &history{buf: make([]int, depth)}
}

func (h *history) push(i int) {
	if h.count < len(h.buf) {
		h.buf[(h.start+h.count)%len(h.buf)] = i
		h.count++
		return
	}
	h.buf[h.start] = i
	h.start = (h.start + 1) % len(h.buf)
}

func (h *history) peek() (int, bool) {
	if h.count == 0 {
		return 0, false
	}
	return h.buf[(h.start+h.count-1)%len(h.buf)], true
}

func (h *history) pop() (int, bool) {
	v, ok := h.peek()
	if !ok {
		return 0, false
	}
	h.count--
	return v, true
}

func (h *history) len() int { return h.count }
