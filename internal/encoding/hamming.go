package encoding

import (
	"strings"

	"github.com/harlequix/infopipe/internal/format"
	"github.com/pkg/errors"
)

// ErrBlockLength is returned when a Hamming(7,4) stream is not a whole
// number of 7-bit blocks.
var ErrBlockLength = errors.New("hamming(7,4) encoded length must be a multiple of 7")

// PadBits is the number of zero bits EncodeHamming74 appends to n data bits.
func PadBits(n int) int {
	return (format.DataLen - n%format.DataLen) % format.DataLen
}

// EncodeHamming74 pads bits with zeros to a multiple of four and encodes
// every nibble as one block. It returns the encoded stream and the pad count.
func EncodeHamming74(bits string) (string, int, error) {
	if bits == "" {
		return "", 0, nil
	}
	if err := Validate(bits); err != nil {
		return "", 0, err
	}
	pad := PadBits(len(bits))
	padded := bits + strings.Repeat(string(ZERO), pad)

	var sb strings.Builder
	sb.Grow(len(padded) / format.DataLen * format.BlockLen)
	for i := 0; i < len(padded); i += format.DataLen {
		block := format.BlockFromData([]byte(padded[i : i+format.DataLen]))
		sb.Write(block.GetBits())
	}
	return sb.String(), pad, nil
}

// DecodeHamming74 corrects a single flipped bit per block, extracts the data
// bits and strips pad trailing bits. A block with two or more flipped bits is
// miscorrected without notice.
func DecodeHamming74(encoded string, pad int) (string, error) {
	data, _, err := decodeHamming74(encoded, pad, true)
	return data, err
}

// DecodeHamming74NoCorrection extracts the data bits without looking at the
// syndrome.
func DecodeHamming74NoCorrection(encoded string, pad int) (string, error) {
	data, _, err := decodeHamming74(encoded, pad, false)
	return data, err
}

// Corrections counts the blocks of encoded with a non-zero syndrome.
func Corrections(encoded string) (int, error) {
	_, n, err := decodeHamming74(encoded, 0, true)
	return n, err
}

func decodeHamming74(encoded string, pad int, correct bool) (string, int, error) {
	if encoded == "" {
		return "", 0, nil
	}
	if len(encoded)%format.BlockLen != 0 {
		return "", 0, errors.Wrapf(ErrBlockLength, "got %d bits", len(encoded))
	}
	if pad < 0 || pad >= format.DataLen {
		return "", 0, errors.Errorf("pad bits must be in [0,%d], got %d", format.DataLen-1, pad)
	}
	if err := Validate(encoded); err != nil {
		return "", 0, err
	}

	corrected := 0
	data := make([]byte, 0, len(encoded)/format.BlockLen*format.DataLen)
	block := format.NewBlock()
	for i := 0; i < len(encoded); i += format.BlockLen {
		block.SetBits([]byte(encoded[i : i+format.BlockLen]))
		if correct && block.Correct() != 0 {
			corrected++
		}
		data = append(data, block.Data()...)
	}
	if pad > len(data) {
		return "", 0, errors.Errorf("pad bits %d exceed %d data bits", pad, len(data))
	}
	return string(data[:len(data)-pad]), corrected, nil
}
