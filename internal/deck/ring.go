package deck

import "errors"

// ErrInvalidState is returned when an operation needs a current element but
// the ring buffer is empty.
var ErrInvalidState = errors.New("invalid state: ring buffer is empty")

// RingBuffer is an ordered collection with a wrapping cursor marking the
// current element. The zero value is an empty buffer.
type RingBuffer[T any] struct {
	items []T
	index int
}

// NewRingBuffer creates a buffer over a copy of items with the cursor at 0.
func NewRingBuffer[T any](items ...T) *RingBuffer[T] {
	rb := &RingBuffer[T]{}
	rb.Reset(items)
	return rb
}

// Len returns the number of items.
func (rb *RingBuffer[T]) Len() int {
	return len(rb.items)
}

// Index returns the cursor position. It is 0 for an empty buffer.
func (rb *RingBuffer[T]) Index() int {
	return rb.index
}

// Items returns a copy of the items in order.
func (rb *RingBuffer[T]) Items() []T {
	out := make([]T, len(rb.items))
	copy(out, rb.items)
	return out
}

// Current returns the element at the cursor.
func (rb *RingBuffer[T]) Current() (T, error) {
	if len(rb.items) == 0 {
		var zero T
		return zero, ErrInvalidState
	}
	return rb.items[rb.index], nil
}

// SetCurrent overwrites the element at the cursor.
func (rb *RingBuffer[T]) SetCurrent(v T) error {
	if len(rb.items) == 0 {
		return ErrInvalidState
	}
	rb.items[rb.index] = v
	return nil
}

// Advance moves the cursor forward one slot, wrapping to 0 past the end.
// It does nothing on an empty buffer.
func (rb *RingBuffer[T]) Advance() {
	if len(rb.items) == 0 {
		return
	}
	rb.index++
	rb.normalize()
}

// PopCurrent removes and returns the element at the cursor. Later elements
// shift down by one; the cursor wraps to 0 if it now points past the end.
func (rb *RingBuffer[T]) PopCurrent() (T, error) {
	if len(rb.items) == 0 {
		var zero T
		return zero, ErrInvalidState
	}
	v := rb.items[rb.index]
	rb.items = append(rb.items[:rb.index], rb.items[rb.index+1:]...)
	rb.normalize()
	return v, nil
}

// Append adds items to the end without moving the cursor.
func (rb *RingBuffer[T]) Append(items ...T) {
	rb.items = append(rb.items, items...)
}

// Reset replaces the contents with a copy of items and rewinds the cursor.
func (rb *RingBuffer[T]) Reset(items []T) {
	rb.items = make([]T, len(items))
	copy(rb.items, items)
	rb.index = 0
}

// Rewind moves the cursor back to the first element.
func (rb *RingBuffer[T]) Rewind() {
	rb.index = 0
}

func (rb *RingBuffer[T]) normalize() {
	if rb.index >= len(rb.items) {
		rb.index = 0
	}
}
