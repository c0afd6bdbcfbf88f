package qsim

import "gonum.org/v1/gonum/floats/scalar"

/*
AreEquivalent reports whether two States describe the same physical
superposition. Widths and basis kets must match exactly, amplitudes only
within Tolerance on each component. Both sides are walked in Bits.Compare
order, so storage order does not matter.
*/
func AreEquivalent(a, b *State) bool {
	if a.NumQubits() != b.NumQubits() || a.Len() != b.Len() {
		return false
	}

	ours := a.Kets()
	theirs := b.Kets()

	for i := range ours {
		if !KetsEquivalent(ours[i], theirs[i]) {
			return false
		}
	}

	return true
}

// KetsEquivalent compares patterns exactly and amplitudes within Tolerance.
func KetsEquivalent(a, b Ket) bool {
	return a.bits == b.bits &&
		scalar.EqualWithinAbs(real(a.Amplitude), real(b.Amplitude), Tolerance) &&
		scalar.EqualWithinAbs(imag(a.Amplitude), imag(b.Amplitude), Tolerance)
}
