/*
Package qsim is a sparse state-vector simulator for circuits over the gates
H, X, T, T†, CX and the multi-controlled Toffoli.

A State stores only the basis states whose amplitude is further than
Tolerance from zero, so a circuit that keeps most of the register classical
stays small no matter how many qubits it has. Gates live in package gate and
are applied by an Engine, which can split the per-ket work across goroutines
without changing the result.

	state, err := qsim.Run(qsim.GroundState(2),
		gate.H{Target: 0},
		gate.CX{Control: 0, Target: 1},
	)
*/
package qsim
