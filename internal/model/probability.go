// Package model derives symbol distributions from text.
package model

import (
	"math"
	"sort"
)

// Distribution maps a symbol to its relative frequency.
type Distribution map[rune]float64

// Probabilities counts every rune of text and normalises by the rune count.
// Empty text yields an empty distribution.
func Probabilities(text string) Distribution {
	counts := make(map[rune]int)
	total := 0
	for _, r := range text {
		counts[r]++
		total++
	}
	dist := make(Distribution, len(counts))
	for sym, n := range counts {
		dist[sym] = float64(n) / float64(total)
	}
	return dist
}

// Symbols returns the symbols of d in ascending order.
func Symbols(d Distribution) []rune {
	syms := make([]rune, 0, len(d))
	for sym := range d {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms
}

// Entropy is the Shannon entropy of d in bits per symbol. Terms are summed
// in symbol order so the result does not depend on map iteration.
func Entropy(d Distribution) float64 {
	h := 0.0
	for _, sym := range Symbols(d) {
		if p := d[sym]; p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
