// Package noise simulates a channel that flips one bit per fixed interval.
package noise

import (
	"math/rand"

	"github.com/harlequix/infopipe/internal/encoding"
)

// DefaultSeed is the seed the pipeline corrupts with.
const DefaultSeed int64 = 2024

// FlipPositions returns the offsets AddErrors flips in a stream of the given
// length: a random start in [0, interval-1], then every interval bits.
func FlipPositions(length, interval int, seed int64) []int {
	if length <= 0 || interval <= 0 {
		return nil
	}
	start := 0
	if interval > 1 {
		rng := rand.New(rand.NewSource(seed))
		start = rng.Intn(interval)
	}
	positions := make([]int, 0, (length-start+interval-1)/interval)
	for i := start; i < length; i += interval {
		positions = append(positions, i)
	}
	return positions
}

// AddErrors complements the bits at FlipPositions. The result is the same for
// the same length, interval and seed.
func AddErrors(bits string, interval int, seed int64) string {
	positions := FlipPositions(len(bits), interval, seed)
	if len(positions) == 0 {
		return bits
	}
	out := []byte(bits)
	for _, i := range positions {
		if out[i] == encoding.ONE {
			out[i] = encoding.ZERO
		} else {
			out[i] = encoding.ONE
		}
	}
	return string(out)
}
