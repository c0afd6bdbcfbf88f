package qsim

import "errors"

var (
	// ErrWidthMismatch is returned when kets of different qubit counts meet,
	// either in FromKets or when a ket is merged into a State.
	ErrWidthMismatch = errors.New("qsim: qubit width mismatch")

	// ErrIndexOutOfRange is returned for any bit access, flip or gate operand
	// outside [0, width).
	ErrIndexOutOfRange = errors.New("qsim: qubit index out of range")

	// ErrUnsupportedGate is only reachable through the default branch of the
	// engine's type switch. The gate set is sealed, so seeing it means a
	// variant was added to package gate without an engine case.
	ErrUnsupportedGate = errors.New("qsim: unsupported gate")

	// ErrDuplicateQubit is returned when a gate names the same qubit twice.
	ErrDuplicateQubit = errors.New("qsim: gate names a qubit more than once")

	// ErrInvalidLabel is returned when a ket label holds anything but 0 and 1.
	ErrInvalidLabel = errors.New("qsim: invalid ket label")
)
