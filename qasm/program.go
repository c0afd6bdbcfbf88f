/*
Package qasm reads the subset of OpenQASM 2.0 the simulator can execute and
turns it into gate values.

Supported statements: the OPENQASM header, include lines (skipped), one qreg
and at most one creg, the instructions h, x, t, tdg, cx, ccx and mcx, barrier
(ignored), and custom gate definitions that are later invoked by name.
Measurement is not supported.
*/
package qasm

import (
	"fmt"
	"strings"

	"github.com/theapemachine/qsim/gate"
)

// Register is a named register declaration such as qreg q[3].
type Register struct {
	Name string
	Size int
}

// Program is a parsed circuit, ready to be folded over a ground state.
type Program struct {
	Version     string
	Quantum     Register
	Classical   *Register
	Gates       []gate.Gate
	Definitions map[string]*Definition
}

// Width is the number of qubits the circuit needs.
func (p *Program) Width() int {
	return p.Quantum.Size
}

/*
QASM writes the program back out as OpenQASM. Custom gate invocations are
expanded into the primitives they stand for, so the output only needs the
built-in instruction set.
*/
func (p *Program) QASM() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "OPENQASM %s;\n", p.Version)
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg %s[%d];\n", p.Quantum.Name, p.Quantum.Size)

	if p.Classical != nil {
		fmt.Fprintf(&sb, "creg %s[%d];\n", p.Classical.Name, p.Classical.Size)
	}

	sb.WriteString("\n")

	for _, g := range gate.Flatten(p.Gates...) {
		sb.WriteString(instruction(g, p.Quantum.Name) + ";\n")
	}

	return sb.String()
}

// instruction writes one primitive gate against the named register.
func instruction(g gate.Gate, register string) string {
	qubits := g.Qubits()
	operands := make([]string, len(qubits))
	for i, q := range qubits {
		operands[i] = fmt.Sprintf("%s[%d]", register, q)
	}

	return g.Name() + " " + strings.Join(operands, ", ")
}

/*
Definition is a custom gate template: gate name a,b { h a; cx a,b; }. Its
body refers to the formal parameters by name and is bound to real qubits on
every invocation.
*/
type Definition struct {
	Name   string
	Params []string
	Body   []call
}

// call is one instruction with its operands still unresolved.
type call struct {
	op       string
	operands []string
	line     int
}

// instantiate binds the parameters to qubits and builds a Composite.
func (d *Definition) instantiate(qubits []int, build builder) (*gate.Composite, error) {
	if len(qubits) != len(d.Params) {
		return nil, fmt.Errorf("%s takes %d qubits, got %d", d.Name, len(d.Params), len(qubits))
	}

	binding := make(map[string]int, len(d.Params))
	for i, name := range d.Params {
		binding[name] = qubits[i]
	}

	composite := gate.NewComposite(d.Name)

	for _, c := range d.Body {
		bound := make([]int, len(c.operands))
		for i, operand := range c.operands {
			q, ok := binding[operand]
			if !ok {
				return nil, fmt.Errorf("%s: unknown parameter %q", d.Name, operand)
			}

			bound[i] = q
		}

		g, err := build(c.op, bound)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}

		composite.Append(g)
	}

	return composite, nil
}
