package noise

import (
	"strings"
	"testing"
)

func diff(a, b string) []int {
	var out []int
	for i := range a {
		if a[i] != b[i] {
			out = append(out, i)
		}
	}
	return out
}

func TestNoOp(t *testing.T) {
	if got := AddErrors("", 5, DefaultSeed); got != "" {
		t.Errorf("AddErrors on empty = %q", got)
	}
	for _, interval := range []int{0, -3} {
		if got := AddErrors("0101", interval, DefaultSeed); got != "0101" {
			t.Errorf("interval %d: got %q", interval, got)
		}
	}
}

func TestIntervalOne(t *testing.T) {
	if got := AddErrors("0011", 1, DefaultSeed); got != "1100" {
		t.Errorf("got %q, want 1100", got)
	}
}

func TestStride(t *testing.T) {
	bits := strings.Repeat("0", 1000)
	for _, interval := range []int{2, 7, 50, 333, 2000} {
		got := AddErrors(bits, interval, DefaultSeed)
		flipped := diff(bits, got)
		want := FlipPositions(len(bits), interval, DefaultSeed)
		if len(flipped) != len(want) {
			t.Fatalf("interval %d: flipped %v, want %v", interval, flipped, want)
		}
		for i := range flipped {
			if flipped[i] != want[i] {
				t.Errorf("interval %d: flipped %v, want %v", interval, flipped, want)
				break
			}
		}
		if len(flipped) > 0 && flipped[0] >= interval {
			t.Errorf("interval %d: start %d out of range", interval, flipped[0])
		}
		for i := 1; i < len(flipped); i++ {
			if flipped[i]-flipped[i-1] != interval {
				t.Errorf("interval %d: gap %d", interval, flipped[i]-flipped[i-1])
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	bits := strings.Repeat("10", 300)
	first := AddErrors(bits, 13, DefaultSeed)
	for i := 0; i < 10; i++ {
		if got := AddErrors(bits, 13, DefaultSeed); got != first {
			t.Fatalf("run %d differs", i)
		}
	}
	// same length, different content: same positions
	other := strings.Repeat("0", 600)
	a := diff(bits, first)
	b := diff(other, AddErrors(other, 13, DefaultSeed))
	if len(a) != len(b) {
		t.Fatalf("position count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("positions differ: %v vs %v", a, b)
		}
	}
}

func TestInputUntouched(t *testing.T) {
	bits := "0000000"
	_ = AddErrors(bits, 2, DefaultSeed)
	if bits != "0000000" {
		t.Errorf("input modified")
	}
}
