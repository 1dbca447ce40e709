// Package format holds the 7-bit Hamming(7,4) codeword.
package format

const ONE byte = '1'
const ZERO byte = '0'

// BlockLen is the number of bits in a codeword.
const BlockLen = 7

// DataLen is the number of data bits carried by a codeword.
const DataLen = 4

// Positions of the data bits within a block, 1-based.
var dataPlaces = [DataLen]int{3, 5, 6, 7}

// Parity positions, 1-based, with the positions each one covers.
var places = map[int][]int{
	1: {1, 3, 5, 7},
	2: {2, 3, 6, 7},
	4: {4, 5, 6, 7},
}

// Block is one codeword in position order (p1, p2, d1, p4, d2, d3, d4).
type Block struct {
	field []byte
}

func NewBlock() *Block {
	return &Block{
		field: make([]byte, BlockLen),
	}
}

// BlockFromData builds the codeword for four data bits given as ONE/ZERO.
func BlockFromData(data []byte) *Block {
	b := NewBlock()
	for i, pos := range dataPlaces {
		b.field[pos-1] = data[i]
	}
	for p, covered := range places {
		b.field[p-1] = ZERO
		if b.parity(covered) {
			b.field[p-1] = ONE
		}
	}
	return b
}

// SetBits copies a 7-byte slice of ONE/ZERO into the block.
func (b *Block) SetBits(bits []byte) {
	copy(b.field, bits)
}

// Flip complements the bit at 1-based position pos.
func (b *Block) Flip(pos int) {
	if b.field[pos-1] == ONE {
		b.field[pos-1] = ZERO
	} else {
		b.field[pos-1] = ONE
	}
}

// parity reports whether the covered positions hold an odd number of ones.
func (b *Block) parity(covered []int) bool {
	count := 0
	for _, pos := range covered {
		if b.field[pos-1] == ONE {
			count++
		}
	}
	return count%2 == 1
}

// Syndrome is s1 + 2*s2 + 4*s4. A non-zero value names the 1-based position
// of a single flipped bit.
func (b *Block) Syndrome() int {
	syndrome := 0
	for p, covered := range places {
		if b.parity(covered) {
			syndrome += p
		}
	}
	return syndrome
}

// Correct flips the bit named by the syndrome and returns the syndrome.
// Two or more errors produce a syndrome too; the block is then
// miscorrected without any signal.
func (b *Block) Correct() int {
	syndrome := b.Syndrome()
	if syndrome != 0 {
		b.Flip(syndrome)
	}
	return syndrome
}

// Data returns (d1, d2, d3, d4), read from positions 3, 5, 6 and 7.
func (b *Block) Data() []byte {
	out := make([]byte, DataLen)
	for i, pos := range dataPlaces {
		out[i] = b.field[pos-1]
	}
	return out
}

func (b *Block) GetBits() []byte {
	return b.field
}
