package huffman

import (
	"fmt"
	"strings"
)

// SymbolError is returned by Encode when the text holds a symbol the table
// has no code for.
type SymbolError struct {
	Symbol rune
	Offset int
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("huffman: no code for symbol %q at byte offset %d", e.Symbol, e.Offset)
}

// Encode concatenates the code of every symbol of text in order.
func Encode(text string, table Table) (string, error) {
	if text == "" {
		return "", nil
	}
	var sb strings.Builder
	for off, r := range text {
		code, ok := table[r]
		if !ok {
			return "", &SymbolError{Symbol: r, Offset: off}
		}
		sb.WriteString(code)
	}
	return sb.String(), nil
}

// Decode walks t one bit at a time and emits a symbol at every leaf. It stops
// silently when a bit leads to a missing child and returns what was decoded
// so far.
func Decode(bits string, t *Tree) string {
	text, _ := DecodeSafe(bits, t)
	return text
}

// DecodeSafe is Decode with a flag that is false when traversal was cut short
// by a missing child. A trailing incomplete code leaves the flag true.
func DecodeSafe(bits string, t *Tree) (string, bool) {
	if t == nil {
		return "", true
	}
	var sb strings.Builder
	cur := t.root
	for i := 0; i < len(bits); i++ {
		cur = t.Child(cur, bits[i])
		if cur == none {
			return sb.String(), false
		}
		if sym, ok := t.Leaf(cur); ok {
			sb.WriteRune(sym)
			cur = t.root
		}
	}
	return sb.String(), true
}
