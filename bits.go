package qsim

import (
	"fmt"
	"strings"
)

/*
Bits is a fixed-width classical bit pattern, one bit per qubit.

It is the storage key of a State: the struct is comparable, so two patterns
of the same width and the same bits hash and compare equal, and patterns of
different widths never do. Bit i lives in data[i/8] at position i%8. Bits is
immutable; every operation that changes a bit returns a new value.
*/
type Bits struct {
	width int
	data  string
}

// NewBits returns an all-zero pattern of the given width.
func NewBits(width int) Bits {
	if width < 0 {
		width = 0
	}

	return Bits{
		width: width,
		data:  string(make([]byte, byteLen(width))),
	}
}

// BitsFromBools builds a pattern where bools[i] is qubit i.
func BitsFromBools(bools ...bool) Bits {
	buf := make([]byte, byteLen(len(bools)))

	for i, set := range bools {
		if set {
			major, minor := bitIndex(i)
			buf[major] |= 1 << minor
		}
	}

	return Bits{width: len(bools), data: string(buf)}
}

/*
ParseBits reads a label written most significant qubit first, the way a ket
is printed: "001" is a three-qubit pattern with only qubit 0 set.
*/
func ParseBits(label string) (Bits, error) {
	width := len(label)
	buf := make([]byte, byteLen(width))

	for pos, r := range label {
		i := width - 1 - pos

		switch r {
		case '0':
		case '1':
			major, minor := bitIndex(i)
			buf[major] |= 1 << minor
		default:
			return Bits{}, fmt.Errorf("%w: %q at position %d", ErrInvalidLabel, r, pos)
		}
	}

	return Bits{width: width, data: string(buf)}, nil
}

// Width is the number of qubits the pattern covers.
func (b Bits) Width() int {
	return b.width
}

// Get returns the bit for qubit index.
func (b Bits) Get(index int) (bool, error) {
	if err := b.check(index); err != nil {
		return false, err
	}

	return b.bit(index), nil
}

// Flip returns a copy of the pattern with qubit index toggled.
func (b Bits) Flip(index int) (Bits, error) {
	if err := b.check(index); err != nil {
		return b, err
	}

	return b.flipped(index), nil
}

/*
Compare orders patterns numerically with qubit 0 as the least significant
bit, after ordering by width. It returns -1, 0 or +1.
*/
func (b Bits) Compare(other Bits) int {
	switch {
	case b.width < other.width:
		return -1
	case b.width > other.width:
		return 1
	}

	// Unused high bits of the last byte are always zero, so bytes compare
	// numerically from the most significant end.
	for i := len(b.data) - 1; i >= 0; i-- {
		if b.data[i] != other.data[i] {
			if b.data[i] < other.data[i] {
				return -1
			}

			return 1
		}
	}

	return 0
}

// Bools expands the pattern, index i being qubit i.
func (b Bits) Bools() []bool {
	out := make([]bool, b.width)

	for i := range out {
		out[i] = b.bit(i)
	}

	return out
}

// String prints the most significant qubit first.
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(b.width)

	for i := b.width - 1; i >= 0; i-- {
		if b.bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}

func (b Bits) check(index int) error {
	if index < 0 || index >= b.width {
		return fmt.Errorf("%w: index %d, width %d", ErrIndexOutOfRange, index, b.width)
	}

	return nil
}

// bit and flipped skip the range check; callers validate first.
func (b Bits) bit(index int) bool {
	major, minor := bitIndex(index)
	return b.data[major]&(1<<minor) != 0
}

func (b Bits) flipped(index int) Bits {
	buf := []byte(b.data)
	major, minor := bitIndex(index)
	buf[major] ^= 1 << minor

	return Bits{width: b.width, data: string(buf)}
}

func bitIndex(pos int) (int, uint) {
	return pos / 8, uint(pos % 8)
}

func byteLen(width int) int {
	return (width + 7) / 8
}
