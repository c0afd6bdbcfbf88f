package qsim

import (
	"math"
	"strconv"
)

/*
Ket is one classical basis state of the register weighted by a complex
amplitude.

Only the bit pattern identifies a ket. The amplitude is data that rides along
with it, so a State can merge kets that describe the same classical outcome
while their amplitudes add up.
*/
type Ket struct {
	Amplitude complex128
	bits      Bits
}

// NewKet pairs a bit pattern with an amplitude.
func NewKet(bits Bits, amplitude complex128) Ket {
	return Ket{Amplitude: amplitude, bits: bits}
}

// GroundKet is |0...0⟩ of width n with amplitude 1.
func GroundKet(n int) Ket {
	return NewKet(NewBits(n), 1)
}

// KetFromBools builds a ket where bools[i] is qubit i.
func KetFromBools(amplitude complex128, bools ...bool) Ket {
	return NewKet(BitsFromBools(bools...), amplitude)
}

// KetFromString builds a ket from a label printed most significant qubit first.
func KetFromString(label string, amplitude complex128) (Ket, error) {
	bits, err := ParseBits(label)
	if err != nil {
		return Ket{}, err
	}

	return NewKet(bits, amplitude), nil
}

// Bits returns the ket's pattern. Bits is immutable, so this is safe to keep.
func (k Ket) Bits() Bits {
	return k.bits
}

// Width is the number of qubits of the ket.
func (k Ket) Width() int {
	return k.bits.width
}

// Get returns the bit of qubit index.
func (k Ket) Get(index int) (bool, error) {
	return k.bits.Get(index)
}

// Flip toggles qubit index in place.
func (k *Ket) Flip(index int) error {
	flipped, err := k.bits.Flip(index)
	if err != nil {
		return err
	}

	k.bits = flipped
	return nil
}

// String renders (re±imi)|bits⟩ with both parts rounded to three decimals.
func (k Ket) String() string {
	return FormatAmplitude(k.Amplitude) + "|" + k.bits.String() + "⟩"
}

/*
FormatAmplitude prints an amplitude as (re+imi), rounding each part to three
decimals and dropping trailing zeros: (0.707+0i), (0.5-0.5i).
*/
func FormatAmplitude(a complex128) string {
	sign := "+"
	if formatPart(imag(a)) != formatPart(math.Abs(imag(a))) {
		sign = "-"
	}

	return "(" + formatPart(real(a)) + sign + formatPart(math.Abs(imag(a))) + "i)"
}

func formatPart(x float64) string {
	r := math.Round(x*1000) / 1000
	if r == 0 {
		// Folds -0 into 0.
		r = 0
	}

	return strconv.FormatFloat(r, 'f', -1, 64)
}
