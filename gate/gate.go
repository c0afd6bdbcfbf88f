/*
Package gate describes the closed set of unitary operations the simulator
understands. Gates are plain values: a tag (the Go type) and qubit indices.
The set is sealed by an unexported interface method, so only this package can
add a variant and the engine can match every one of them.
*/
package gate

import (
	"fmt"
	"strings"
)

// Gate is implemented by H, X, T, Tdg, CX, Toffoli and *Composite only.
type Gate interface {
	// Name is the lower-case mnemonic used in circuit text.
	Name() string

	// Qubits lists every qubit the gate touches, controls first.
	Qubits() []int

	sealed()
}

// H is the Hadamard gate.
type H struct {
	Target int
}

// X is the Pauli-X (NOT) gate.
type X struct {
	Target int
}

// T applies a phase of e^(iπ/4) to |1⟩.
type T struct {
	Target int
}

// Tdg is the conjugate of T, a phase of e^(-iπ/4) on |1⟩.
type Tdg struct {
	Target int
}

// CX flips Target when Control is set.
type CX struct {
	Control int
	Target  int
}

/*
Toffoli flips Target when every qubit in Controls is set. With two controls it
is the usual CCX; with none it degenerates to X.
*/
type Toffoli struct {
	Controls []int
	Target   int
}

func (H) Name() string   { return "h" }
func (X) Name() string   { return "x" }
func (T) Name() string   { return "t" }
func (Tdg) Name() string { return "tdg" }
func (CX) Name() string  { return "cx" }

func (g H) Qubits() []int   { return []int{g.Target} }
func (g X) Qubits() []int   { return []int{g.Target} }
func (g T) Qubits() []int   { return []int{g.Target} }
func (g Tdg) Qubits() []int { return []int{g.Target} }
func (g CX) Qubits() []int  { return []int{g.Control, g.Target} }

func (g Toffoli) Qubits() []int {
	out := make([]int, 0, len(g.Controls)+1)
	out = append(out, g.Controls...)
	return append(out, g.Target)
}

func (H) sealed()       {}
func (X) sealed()       {}
func (T) sealed()       {}
func (Tdg) sealed()     {}
func (CX) sealed()      {}
func (Toffoli) sealed() {}

func (g H) String() string   { return format(g) }
func (g X) String() string   { return format(g) }
func (g T) String() string   { return format(g) }
func (g Tdg) String() string { return format(g) }
func (g CX) String() string  { return format(g) }

func (g Toffoli) String() string { return format(g) }

// Name follows the control count: x, cx, ccx, then mcx for three or more.
func (g Toffoli) Name() string {
	switch len(g.Controls) {
	case 0:
		return "x"
	case 1:
		return "cx"
	case 2:
		return "ccx"
	}

	return "mcx"
}

// format renders a gate the way a circuit line names it: "cx q[0], q[1]".
func format(g Gate) string {
	return g.Name() + " " + operands(g.Qubits())
}

func operands(qubits []int) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = fmt.Sprintf("q[%d]", q)
	}

	return strings.Join(parts, ", ")
}
