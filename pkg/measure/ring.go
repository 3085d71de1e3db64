package measure

// Ring is a fixed-capacity FIFO buffer. Pushing onto a full ring evicts the
// oldest element in O(1). Index 0 is always the oldest element.
type Ring[T any] struct {
	buf   []T
	start int
	size  int
}

// NewRing allocates a ring holding at most capacity elements.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

func (r *Ring[T]) Len() int { return r.size }

func (r *Ring[T]) Cap() int { return len(r.buf) }

// Push appends v and reports the evicted element, if any.
func (r *Ring[T]) Push(v T) (evicted T, ok bool) {
	if r.size == len(r.buf) {
		evicted = r.buf[r.start]
		r.buf[r.start] = v
		r.start = (r.start + 1) % len(r.buf)
		return evicted, true
	}
	r.buf[(r.start+r.size)%len(r.buf)] = v
	r.size++
	return evicted, false
}

// At returns the i-th oldest element. The caller checks bounds.
func (r *Ring[T]) At(i int) T {
	return r.buf[(r.start+i)%len(r.buf)]
}

// Last returns the newest element.
func (r *Ring[T]) Last() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.At(r.size - 1), true
}

// RemoveAt deletes the i-th oldest element, shifting the newer ones down.
func (r *Ring[T]) RemoveAt(i int) T {
	v := r.At(i)
	for j := i; j < r.size-1; j++ {
		r.buf[(r.start+j)%len(r.buf)] = r.At(j + 1)
	}
	var zero T
	r.buf[(r.start+r.size-1)%len(r.buf)] = zero
	r.size--
	return v
}

func (r *Ring[T]) Clear() {
	clear(r.buf)
	r.start = 0
	r.size = 0
}

// Slice copies the contents oldest first.
func (r *Ring[T]) Slice() []T {
	out := make([]T, r.size)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

// Clone returns an independent copy.
func (r *Ring[T]) Clone() *Ring[T] {
	c := &Ring[T]{buf: make([]T, len(r.buf)), start: r.start, size: r.size}
	copy(c.buf, r.buf)
	return c
}
