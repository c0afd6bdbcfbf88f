/*
Package snapshot stores a State as msgpack so a later run can pick up where an
earlier one stopped.
*/
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/theapemachine/errnie"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/theapemachine/qsim"
)

const version = 1

var ErrVersion = errors.New("snapshot: unsupported version")

type record struct {
	Version int    `msgpack:"version"`
	Qubits  int    `msgpack:"qubits"`
	Terms   []term `msgpack:"terms"`
}

type term struct {
	Bits string  `msgpack:"bits"`
	Re   float64 `msgpack:"re"`
	Im   float64 `msgpack:"im"`
}

// Encode writes state to w.
func Encode(w io.Writer, state *qsim.State) error {
	kets := state.Kets()
	rec := record{
		Version: version,
		Qubits:  state.NumQubits(),
		Terms:   make([]term, len(kets)),
	}

	for i, ket := range kets {
		rec.Terms[i] = term{
			Bits: ket.Bits().String(),
			Re:   real(ket.Amplitude),
			Im:   imag(ket.Amplitude),
		}
	}

	return msgpack.NewEncoder(w).Encode(&rec)
}

// Decode reads a state written by Encode.
func Decode(r io.Reader) (*qsim.State, error) {
	var rec record
	if err := msgpack.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if rec.Version != version {
		return nil, fmt.Errorf("%w %d", ErrVersion, rec.Version)
	}

	if rec.Qubits < 0 {
		return nil, fmt.Errorf("decode snapshot: %w: %d qubits", qsim.ErrWidthMismatch, rec.Qubits)
	}

	state := qsim.NewState(rec.Qubits)

	for _, t := range rec.Terms {
		bits, err := qsim.ParseBits(t.Bits)
		if err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}

		if _, err := state.InsertOrAccumulate(qsim.NewKet(bits, complex(t.Re, t.Im))); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
	}

	return state, nil
}

// Save writes state to path, replacing any existing file.
func Save(path string, state *qsim.State) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if err := Encode(f, state); err != nil {
		f.Close()
		return err
	}

	errnie.Info("Save - %s, %d qubits, %d kets", path, state.NumQubits(), state.Len())
	return f.Close()
}

// Load reads a state from path.
func Load(path string) (*qsim.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer f.Close()

	state, err := Decode(f)
	if err != nil {
		return nil, err
	}

	errnie.Info("Load - %s, %d qubits, %d kets", path, state.NumQubits(), state.Len())
	return state, nil
}
