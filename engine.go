package qsim

import (
	"fmt"
	"math"
	"math/cmplx"
	"time"

	"github.com/theapemachine/errnie"

	"github.com/theapemachine/qsim/gate"
)

const invSqrt2 = 1 / math.Sqrt2

var (
	tPhase   = cmplx.Exp(complex(0, math.Pi/4))
	tdgPhase = cmplx.Exp(complex(0, -math.Pi/4))
)

/*
Engine applies gates to States.

Every application reads the input State and builds a fresh one, so a caller
never sees a partially transformed register: it either gets the complete new
State or an error and its own State back untouched. An Engine keeps no state
between calls apart from its Metrics, which are safe for concurrent use.
*/
type Engine struct {
	config  *Config
	metrics *Metrics
}

// NewEngine builds an Engine. A nil config uses NewConfig.
func NewEngine(config *Config) *Engine {
	config = config.normalized()

	errnie.Info(
		"NewEngine - workers %d, parallelThreshold %d",
		config.Workers,
		config.ParallelThreshold,
	)

	return &Engine{
		config:  config,
		metrics: NewMetrics(),
	}
}

func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Apply validates g against the register and applies it.
func (e *Engine) Apply(state *State, g gate.Gate) (*State, error) {
	if err := Validate(g, state.NumQubits()); err != nil {
		return nil, err
	}

	return e.apply(state, g)
}

/*
Run folds gates over state in order. All gates are validated before the first
one is applied, and any failure aborts the whole run with a nil State.
*/
func (e *Engine) Run(state *State, gates ...gate.Gate) (*State, error) {
	for i, g := range gates {
		if err := Validate(g, state.NumQubits()); err != nil {
			return nil, fmt.Errorf("gate %d (%s): %w", i, gate.String(g), err)
		}
	}

	current := state.Clone()

	for i, g := range gates {
		next, err := e.apply(current, g)
		if err != nil {
			return nil, fmt.Errorf("gate %d (%s): %w", i, gate.String(g), err)
		}

		current = next
	}

	return current, nil
}

/*
apply handles a Composite by folding the state-level application over its
constituents, so kets are merged after every step. Primitive gates go through
the per-ket transform and a single merge into a new State.
*/
func (e *Engine) apply(state *State, g gate.Gate) (*State, error) {
	if composite, ok := g.(*gate.Composite); ok {
		current := state

		for _, inner := range composite.Gates() {
			next, err := e.apply(current, inner)
			if err != nil {
				return nil, err
			}

			current = next
		}

		if current == state {
			return state.Clone(), nil
		}

		return current, nil
	}

	startTime := time.Now()
	kets := state.Kets()
	parallel := e.config.Workers > 1 && len(kets) >= e.config.ParallelThreshold

	batches, err := e.transform(g, kets, parallel)
	if err != nil {
		return nil, err
	}

	next := NewState(state.NumQubits())
	var tally mergeTally

	for _, batch := range batches {
		for _, ket := range batch {
			merge, err := next.InsertOrAccumulate(ket)
			if err != nil {
				return nil, err
			}

			tally.add(merge)
		}
	}

	e.metrics.recordApplication(startTime, tally, next.Len(), parallel)
	return next, nil
}

/*
ApplyToKet maps one ket to the kets g turns it into. H yields two kets, every
other primitive one; a Composite yields the unmerged product of applying its
gates in turn, so the same pattern may appear more than once in the result.
*/
func ApplyToKet(g gate.Gate, ket Ket) ([]Ket, error) {
	if err := Validate(g, ket.Width()); err != nil {
		return nil, err
	}

	return applyToKet(g, ket)
}

// applyToKet assumes g was validated against the ket's width.
func applyToKet(g gate.Gate, ket Ket) ([]Ket, error) {
	switch g := g.(type) {
	case gate.H:
		return hadamard(ket, g.Target), nil
	case gate.X:
		ket.bits = ket.bits.flipped(g.Target)
		return []Ket{ket}, nil
	case gate.T:
		if ket.bits.bit(g.Target) {
			ket.Amplitude *= tPhase
		}
		return []Ket{ket}, nil
	case gate.Tdg:
		if ket.bits.bit(g.Target) {
			ket.Amplitude *= tdgPhase
		}
		return []Ket{ket}, nil
	case gate.CX:
		if ket.bits.bit(g.Control) {
			ket.bits = ket.bits.flipped(g.Target)
		}
		return []Ket{ket}, nil
	case gate.Toffoli:
		for _, control := range g.Controls {
			if !ket.bits.bit(control) {
				return []Ket{ket}, nil
			}
		}
		ket.bits = ket.bits.flipped(g.Target)
		return []Ket{ket}, nil
	case *gate.Composite:
		return applyCompositeToKet(g, ket)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGate, g)
	}
}

/*
hadamard sends |0⟩ to (|0⟩+|1⟩)/√2 and |1⟩ to (|0⟩-|1⟩)/√2. The branch that
keeps the bit carries the sign, the flipped branch never does.
*/
func hadamard(ket Ket, target int) []Ket {
	kept := ket
	if ket.bits.bit(target) {
		kept.Amplitude = -kept.Amplitude
	}
	kept.Amplitude = scale(kept.Amplitude, invSqrt2)

	flipped := NewKet(ket.bits.flipped(target), scale(ket.Amplitude, invSqrt2))

	return []Ket{kept, flipped}
}

func applyCompositeToKet(composite *gate.Composite, ket Ket) ([]Ket, error) {
	kets := []Ket{ket}

	for _, g := range composite.Gates() {
		next := make([]Ket, 0, len(kets)*2)

		for _, k := range kets {
			branches, err := applyToKet(g, k)
			if err != nil {
				return nil, err
			}

			if _, nested := g.(*gate.Composite); !nested && (len(branches) < 1 || len(branches) > 2) {
				return nil, fmt.Errorf(
					"%w: %s produced %d kets", ErrUnsupportedGate, gate.String(g), len(branches),
				)
			}

			next = append(next, branches...)
		}

		kets = next
	}

	return kets, nil
}

func scale(a complex128, f float64) complex128 {
	return complex(real(a)*f, imag(a)*f)
}

/*
Validate checks that every qubit g names lies in [0, width) and that no gate
names the same qubit twice. Composites are checked recursively and may not
contain themselves.
*/
func Validate(g gate.Gate, width int) error {
	return validate(g, width, nil)
}

func validate(g gate.Gate, width int, path []*gate.Composite) error {
	if composite, ok := g.(*gate.Composite); ok {
		for _, outer := range path {
			if outer == composite {
				return fmt.Errorf("%w: composite %q contains itself", ErrUnsupportedGate, composite.Name())
			}
		}

		path = append(path, composite)
		for _, inner := range composite.Gates() {
			if err := validate(inner, width, path); err != nil {
				return fmt.Errorf("%s: %w", composite.Name(), err)
			}
		}

		return nil
	}

	seen := make(map[int]bool)
	for _, q := range g.Qubits() {
		if q < 0 || q >= width {
			return fmt.Errorf("%w: %s uses qubit %d, width %d", ErrIndexOutOfRange, gate.String(g), q, width)
		}

		if seen[q] {
			return fmt.Errorf("%w: %s uses qubit %d twice", ErrDuplicateQubit, gate.String(g), q)
		}

		seen[q] = true
	}

	return nil
}

var defaultEngine = &Engine{
	config:  NewConfig(),
	metrics: NewMetrics(),
}

// ApplyToState applies g with a shared single-threaded engine.
func ApplyToState(state *State, g gate.Gate) (*State, error) {
	return defaultEngine.Apply(state, g)
}

// Run folds gates over state with a shared single-threaded engine.
func Run(state *State, gates ...gate.Gate) (*State, error) {
	return defaultEngine.Run(state, gates...)
}
