package qsim

import (
	"fmt"
	"math/cmplx"
	"slices"
	"strings"
)

/*
Tolerance is the single threshold below which an amplitude counts as zero.
It decides both when interfering branches cancel and when two amplitudes
count as equal.
*/
const Tolerance = 1e-6

// Merge reports what InsertOrAccumulate did with a ket.
type Merge int

const (
	MergeIgnored Merge = iota
	MergeInserted
	MergeAccumulated
	MergeCancelled
)

func (m Merge) String() string {
	switch m {
	case MergeIgnored:
		return "ignored"
	case MergeInserted:
		return "inserted"
	case MergeAccumulated:
		return "accumulated"
	case MergeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("merge(%d)", int(m))
	}
}

/*
State is a sparse superposition: a set of basis kets keyed by bit pattern.

The State holds the minimal representation of the register at all times. No
two entries share a pattern, every pattern is numQubits wide, and no entry
has an amplitude at or below Tolerance. Applying a gate never mutates a State;
the engine builds a new one and the old one is dropped by the caller.
*/
type State struct {
	numQubits int
	kets      map[Bits]complex128
}

// NewState returns an empty superposition over n qubits. A negative n is
// treated as 0, the same as NewBits.
func NewState(n int) *State {
	n = max(n, 0)

	return &State{
		numQubits: n,
		kets:      make(map[Bits]complex128),
	}
}

// GroundState returns |0...0⟩ over n qubits with amplitude 1.
func GroundState(n int) *State {
	state := NewState(n)
	state.kets[NewBits(n)] = 1
	return state
}

/*
FromKets builds a State from kets that all share one width, merging them with
InsertOrAccumulate in order. An empty list has no width to infer and fails
the same way a mixed list does.
*/
func FromKets(kets ...Ket) (*State, error) {
	if len(kets) == 0 {
		return nil, fmt.Errorf("%w: no kets to infer a width from", ErrWidthMismatch)
	}

	width := kets[0].Width()
	for i, ket := range kets {
		if ket.Width() != width {
			return nil, fmt.Errorf(
				"%w: ket %d has %d qubits, expected %d", ErrWidthMismatch, i, ket.Width(), width,
			)
		}
	}

	state := NewState(width)
	for _, ket := range kets {
		if _, err := state.InsertOrAccumulate(ket); err != nil {
			return nil, err
		}
	}

	return state, nil
}

// NumQubits is the register width.
func (s *State) NumQubits() int {
	return s.numQubits
}

// Len is the number of stored basis kets.
func (s *State) Len() int {
	return len(s.kets)
}

/*
InsertOrAccumulate merges a ket into the State.

A ket whose amplitude is within Tolerance of zero is ignored. A ket whose
pattern is already present adds its amplitude to the stored one; when the sum
falls within Tolerance of zero the entry is removed, which is how destructive
interference makes a basis state vanish. Anything else is inserted.
*/
func (s *State) InsertOrAccumulate(ket Ket) (Merge, error) {
	if ket.Width() != s.numQubits {
		return MergeIgnored, fmt.Errorf(
			"%w: ket has %d qubits, state has %d", ErrWidthMismatch, ket.Width(), s.numQubits,
		)
	}

	if isZero(ket.Amplitude) {
		return MergeIgnored, nil
	}

	stored, ok := s.kets[ket.bits]
	if !ok {
		s.kets[ket.bits] = ket.Amplitude
		return MergeInserted, nil
	}

	sum := stored + ket.Amplitude
	if isZero(sum) {
		delete(s.kets, ket.bits)
		return MergeCancelled, nil
	}

	s.kets[ket.bits] = sum
	return MergeAccumulated, nil
}

// Remove deletes the entry for an exact pattern. Absent patterns are a no-op.
func (s *State) Remove(bits Bits) {
	delete(s.kets, bits)
}

/*
RemoveZeroAmplitude sweeps out entries within Tolerance of zero and returns
how many it removed. InsertOrAccumulate never leaves such entries, so this
only matters after amplitudes were changed through other means.
*/
func (s *State) RemoveZeroAmplitude() int {
	removed := 0

	for bits, amplitude := range s.kets {
		if isZero(amplitude) {
			delete(s.kets, bits)
			removed++
		}
	}

	return removed
}

// Amplitude returns the stored amplitude for a pattern.
func (s *State) Amplitude(bits Bits) (complex128, bool) {
	amplitude, ok := s.kets[bits]
	return amplitude, ok
}

// Kets returns copies of all stored kets ordered by Bits.Compare.
func (s *State) Kets() []Ket {
	out := make([]Ket, 0, len(s.kets))

	for bits, amplitude := range s.kets {
		out = append(out, NewKet(bits, amplitude))
	}

	slices.SortFunc(out, func(a, b Ket) int {
		return a.bits.Compare(b.bits)
	})

	return out
}

// Norm is the sum of squared amplitude magnitudes, 1 for a normalized state.
func (s *State) Norm() float64 {
	var total float64

	for _, amplitude := range s.kets {
		total += real(amplitude)*real(amplitude) + imag(amplitude)*imag(amplitude)
	}

	return total
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	out := NewState(s.numQubits)

	for bits, amplitude := range s.kets {
		out.kets[bits] = amplitude
	}

	return out
}

/*
Equal is strict structural equality: same width, same patterns, bit-identical
amplitudes. Use AreEquivalent for anything produced by floating point
arithmetic.
*/
func (s *State) Equal(other *State) bool {
	if s.numQubits != other.numQubits || len(s.kets) != len(other.kets) {
		return false
	}

	for bits, amplitude := range s.kets {
		if theirs, ok := other.kets[bits]; !ok || theirs != amplitude {
			return false
		}
	}

	return true
}

// String renders the superposition as a sum of kets, or 0 when empty.
func (s *State) String() string {
	kets := s.Kets()
	if len(kets) == 0 {
		return "0"
	}

	terms := make([]string, len(kets))
	for i, ket := range kets {
		terms[i] = ket.String()
	}

	return strings.Join(terms, " + ")
}

func isZero(a complex128) bool {
	return cmplx.Abs(a) <= Tolerance
}
