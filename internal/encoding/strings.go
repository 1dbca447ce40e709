package encoding

import (
	"bytes"
	"unicode/utf8"

	"github.com/harlequix/infopipe/internal/format"
	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

const ONE = format.ONE
const ZERO = format.ZERO

// ErrInvalidBit is returned for bit strings holding anything but '0' and '1'.
var ErrInvalidBit = errors.New("bit string may only contain '0' and '1'")

func Validate(bits string) error {
	for i := 0; i < len(bits); i++ {
		if bits[i] != ONE && bits[i] != ZERO {
			return errors.Wrapf(ErrInvalidBit, "offset %d", i)
		}
	}
	return nil
}

// Pack writes bits MSB first into bytes; the last byte is zero filled.
func Pack(bits string) ([]byte, error) {
	if err := Validate(bits); err != nil {
		return nil, err
	}
	var buffer bytes.Buffer
	w := bitio.NewWriter(&buffer)
	for i := 0; i < len(bits); i++ {
		if err := w.WriteBool(bits[i] == ONE); err != nil {
			return nil, errors.Wrap(err, "packing bits")
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "flushing packed bits")
	}
	return buffer.Bytes(), nil
}

// Unpack reads the first n bits of data back into a bit string.
func Unpack(data []byte, n int) (string, error) {
	if n < 0 || n > len(data)*8 {
		return "", errors.Errorf("cannot read %d bits from %d bytes", n, len(data))
	}
	r := bitio.NewReader(bytes.NewReader(data))
	out := make([]byte, n)
	for i := range out {
		b, err := r.ReadBool()
		if err != nil {
			return "", errors.Wrap(err, "unpacking bits")
		}
		out[i] = ZERO
		if b {
			out[i] = ONE
		}
	}
	return string(out), nil
}

// Preview returns at most limit characters of s without splitting a rune.
func Preview(s string, limit int) string {
	if limit <= 0 || s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
