/*
Package render writes a State for people and for other programs. The text
format is the same one State.String produces, JSON carries one term per basis
state, and dump is a spew listing meant for debugging.
*/
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/davecgh/go-spew/spew"

	"github.com/theapemachine/qsim"
)

type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	Dump Format = "dump"
)

var ErrUnknownFormat = errors.New("render: unknown format")

// ParseFormat accepts text, json or dump.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case Text, JSON, Dump:
		return Format(name), nil
	}

	return "", fmt.Errorf("%w %q", ErrUnknownFormat, name)
}

// Term is one basis state in the JSON and dump output.
type Term struct {
	Bits        string  `json:"bits"`
	Re          float64 `json:"re"`
	Im          float64 `json:"im"`
	Probability float64 `json:"probability"`
}

// Document is the machine-readable form of a State.
type Document struct {
	Qubits int     `json:"qubits"`
	Norm   float64 `json:"norm"`
	Terms  []Term  `json:"terms"`
}

// NewDocument lists the kets of state in bit-pattern order.
func NewDocument(state *qsim.State) Document {
	kets := state.Kets()
	doc := Document{
		Qubits: state.NumQubits(),
		Norm:   state.Norm(),
		Terms:  make([]Term, len(kets)),
	}

	for i, ket := range kets {
		a := ket.Amplitude
		doc.Terms[i] = Term{
			Bits:        ket.Bits().String(),
			Re:          real(a),
			Im:          imag(a),
			Probability: math.Pow(real(a), 2) + math.Pow(imag(a), 2),
		}
	}

	return doc
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Write renders state to w in the requested format.
func Write(w io.Writer, format Format, state *qsim.State) error {
	switch format {
	case Text:
		_, err := fmt.Fprintln(w, state.String())
		return err
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewDocument(state))
	case Dump:
		dumper.Fdump(w, NewDocument(state))
		return nil
	}

	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}
