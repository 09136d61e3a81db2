// Package ring provides a fixed-capacity, insertion-ordered buffer that drops
// its oldest entry once full. Len never exceeds the capacity it was built with.
package ring

// Buffer is a generic ring buffer. The zero value is not usable; call New.
type Buffer[T any] struct {
	items []T
	start int // index of the oldest entry
	size  int
}

// New creates a buffer holding at most capacity entries. capacity < 1 is treated as 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push appends v, overwriting the oldest entry when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	if b.size < len(b.items) {
		b.items[(b.start+b.size)%len(b.items)] = v
		b.size++
		return
	}
	b.items[b.start] = v
	b.start = (b.start + 1) % len(b.items)
}

// Len returns the number of stored entries.
func (b *Buffer[T]) Len() int { return b.size }

// Cap returns the configured capacity.
func (b *Buffer[T]) Cap() int { return len(b.items) }

// Last returns the newest entry.
func (b *Buffer[T]) Last() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	return b.items[(b.start+b.size-1)%len(b.items)], true
}

// Slice returns a copy of the entries, oldest first.
func (b *Buffer[T]) Slice() []T {
	out := make([]T, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.items[(b.start+i)%len(b.items)]
	}
	return out
}

// Reset drops every entry.
func (b *Buffer[T]) Reset() {
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.start = 0
	b.size = 0
}
