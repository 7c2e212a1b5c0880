package deck

import (
	"errors"
	"testing"
)

func TestRingAdvanceWraps(t *testing.T) {
	for n := 1; n <= 6; n++ {
		rb := NewRingBuffer(make([]int, n)...)
		for start := 0; start < n; start++ {
			for rb.Index() != start {
				rb.Advance()
			}
			for i := 0; i < n; i++ {
				rb.Advance()
			}
			if rb.Index() != start {
				t.Errorf("n=%d: expected index %d after %d advances, got %d", n, start, n, rb.Index())
			}
		}
	}

	rb := NewRingBuffer(1, 2, 3)
	for i, want := range []int{1, 2, 0, 1} {
		rb.Advance()
		if rb.Index() != want {
			t.Errorf("advance %d: expected index %d, got %d", i+1, want, rb.Index())
		}
	}
}

func TestRingCurrentAndSetCurrent(t *testing.T) {
	rb := NewRingBuffer("a", "b", "c")
	rb.Advance()
	if v, err := rb.Current(); err != nil || v != "b" {
		t.Fatalf("Expected b, got %q (%v)", v, err)
	}
	if err := rb.SetCurrent("B"); err != nil {
		t.Fatal(err)
	}
	got := rb.Items()
	if got[1] != "B" || got[0] != "a" || got[2] != "c" {
		t.Errorf("SetCurrent wrote the wrong slot: %v", got)
	}
}

func TestRingPopCurrent(t *testing.T) {
	rb := NewRingBuffer("a", "b", "c")
	rb.Advance()
	v, err := rb.PopCurrent()
	if err != nil || v != "b" {
		t.Fatalf("Expected to pop b, got %q (%v)", v, err)
	}
	if rb.Index() != 1 {
		t.Errorf("Expected cursor to stay at 1, got %d", rb.Index())
	}
	if cur, _ := rb.Current(); cur != "c" {
		t.Errorf("Expected c to slide under the cursor, got %q", cur)
	}

	// Popping the last slot wraps the cursor.
	v, _ = rb.PopCurrent()
	if v != "c" || rb.Index() != 0 || rb.Len() != 1 {
		t.Errorf("Expected pop c and wrap to 0, got %q index=%d len=%d", v, rb.Index(), rb.Len())
	}
}

func TestRingEmptyIsInvalidState(t *testing.T) {
	var rb RingBuffer[int]
	if _, err := rb.Current(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Current on empty: expected ErrInvalidState, got %v", err)
	}
	if err := rb.SetCurrent(1); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SetCurrent on empty: expected ErrInvalidState, got %v", err)
	}
	if _, err := rb.PopCurrent(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("PopCurrent on empty: expected ErrInvalidState, got %v", err)
	}
	rb.Advance()
	if rb.Index() != 0 {
		t.Errorf("Advance on empty moved the cursor to %d", rb.Index())
	}
}

func TestRingItemsIsACopy(t *testing.T) {
	src := []int{1, 2, 3}
	rb := NewRingBuffer(src...)
	src[0] = 99
	items := rb.Items()
	items[1] = 99
	if got := rb.Items(); got[0] != 1 || got[1] != 2 {
		t.Errorf("ring buffer aliased caller memory: %v", got)
	}
}
