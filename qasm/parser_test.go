package qasm

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/theapemachine/qsim"
	"github.com/theapemachine/qsim/gate"
)

func TestParse(t *testing.T) {
	Convey("Given the bell circuit on disk", t, func() {
		program, err := ParseFile("testdata/bell.qasm")
		So(err, ShouldBeNil)

		Convey("It should read the header and registers", func() {
			So(program.Version, ShouldEqual, "2.0")
			So(program.Quantum, ShouldResemble, Register{Name: "q", Size: 2})
			So(program.Classical, ShouldResemble, &Register{Name: "c", Size: 2})
			So(program.Width(), ShouldEqual, 2)
		})

		Convey("It should produce the gates in order", func() {
			So(program.Gates, ShouldResemble, []gate.Gate{
				gate.H{Target: 0},
				gate.CX{Control: 0, Target: 1},
			})
		})

		Convey("Running it should entangle both qubits", func() {
			state, err := qsim.Run(qsim.GroundState(program.Width()), program.Gates...)
			So(err, ShouldBeNil)
			So(state.Len(), ShouldEqual, 2)

			for _, label := range []string{"00", "11"} {
				bits, err := qsim.ParseBits(label)
				So(err, ShouldBeNil)

				amplitude, ok := state.Amplitude(bits)
				So(ok, ShouldBeTrue)
				So(real(amplitude), ShouldAlmostEqual, 0.7071067811865476, 1e-9)
			}
		})
	})

	Convey("Given a circuit with custom gates", t, func() {
		program, err := ParseFile("testdata/adder.qasm")
		So(err, ShouldBeNil)

		Convey("Definitions should be recorded", func() {
			So(program.Definitions, ShouldContainKey, "majority")
			So(program.Definitions, ShouldContainKey, "unmaj")
			So(program.Definitions["majority"].Params, ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("Invocations should become composites bound to real qubits", func() {
			So(program.Gates, ShouldHaveLength, 5)

			majority, ok := program.Gates[2].(*gate.Composite)
			So(ok, ShouldBeTrue)
			So(majority.Gates(), ShouldResemble, []gate.Gate{
				gate.CX{Control: 0, Target: 1},
				gate.CX{Control: 0, Target: 2},
				gate.Toffoli{Controls: []int{2, 1}, Target: 0},
			})
		})

		Convey("Running it should land on a single basis state", func() {
			state, err := qsim.Run(qsim.GroundState(program.Width()), program.Gates...)
			So(err, ShouldBeNil)
			So(state.String(), ShouldEqual, "(1+0i)|1001⟩")
		})

		Convey("QASM should expand the composites into primitives", func() {
			again, err := ParseString(program.QASM())
			So(err, ShouldBeNil)
			So(again.Definitions, ShouldBeEmpty)
			So(gate.Flatten(again.Gates...), ShouldResemble, gate.Flatten(program.Gates...))
		})
	})

	Convey("Given statements spread over lines with comments", t, func() {
		program, err := ParseString("OPENQASM 2.0; qreg q[3];\nh q[0]; // first\nmcx q[0],\n  q[1], q[2];\ntdg q[2];")
		So(err, ShouldBeNil)

		Convey("It should still find every statement", func() {
			So(program.Gates, ShouldResemble, []gate.Gate{
				gate.H{Target: 0},
				gate.Toffoli{Controls: []int{0, 1}, Target: 2},
				gate.Tdg{Target: 2},
			})
		})
	})
}

func TestParseErrors(t *testing.T) {
	Convey("Given malformed circuits", t, func() {
		cases := []struct {
			name string
			src  string
			line int
		}{
			{"missing header", "qreg q[1];\nh q[0];", 1},
			{"no register", "OPENQASM 2.0;\n", 1},
			{"instruction before qreg", "OPENQASM 2.0;\nh q[0];\nqreg q[1];", 2},
			{"second qreg", "OPENQASM 2.0;\nqreg q[1];\nqreg r[1];", 3},
			{"wrong register", "OPENQASM 2.0;\nqreg q[2];\ncreg c[2];\nh c[0];", 4},
			{"unknown gate", "OPENQASM 2.0;\nqreg q[2];\nswap q[0], q[1];", 3},
			{"wrong arity", "OPENQASM 2.0;\nqreg q[2];\ncx q[0];", 3},
			{"unterminated", "OPENQASM 2.0;\nqreg q[2];\nh q[0]", 3},
			{"stray brace", "OPENQASM 2.0;\n}", 2},
			{"redefinition", "OPENQASM 2.0;\ngate h a { x a; }\nqreg q[1];", 2},
			{"broken body", "OPENQASM 2.0;\ngate g a, b { cx a, c; }\nqreg q[2];", 2},
		}

		for _, tc := range cases {
			Convey("It should reject "+tc.name, func() {
				_, err := ParseString(tc.src)
				So(err, ShouldNotBeNil)

				var syntax *SyntaxError
				So(errors.As(err, &syntax), ShouldBeTrue)
				So(syntax.Line, ShouldEqual, tc.line)
			})
		}
	})

	Convey("Given instructions the simulator cannot run", t, func() {
		_, err := ParseString("OPENQASM 2.0;\nqreg q[1];\ncreg c[1];\nmeasure q[0] -> c[0];")

		Convey("It should report them as unsupported", func() {
			So(errors.Is(err, ErrUnsupportedInstruction), ShouldBeTrue)
		})
	})

	Convey("Given operands the engine would refuse", t, func() {
		Convey("An index past the register should carry the engine error", func() {
			_, err := ParseString("OPENQASM 2.0;\nqreg q[2];\nx q[2];")
			So(errors.Is(err, qsim.ErrIndexOutOfRange), ShouldBeTrue)
		})

		Convey("A repeated qubit should carry the engine error", func() {
			_, err := ParseString("OPENQASM 2.0;\nqreg q[2];\ncx q[1], q[1];")
			So(errors.Is(err, qsim.ErrDuplicateQubit), ShouldBeTrue)
		})

		Convey("A body that repeats a parameter should fail at its definition", func() {
			_, err := ParseString("OPENQASM 2.0;\ngate twice a { cx a, a; }\nqreg q[1];")
			So(errors.Is(err, qsim.ErrDuplicateQubit), ShouldBeTrue)
		})

		Convey("An unknown gate should be distinguishable", func() {
			_, err := ParseString("OPENQASM 2.0;\nqreg q[1];\nrz q[0];")
			So(errors.Is(err, ErrUnknownInstruction), ShouldBeTrue)
		})
	})
}
