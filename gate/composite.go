package gate

import (
	"slices"
	"strings"
)

/*
Composite is a named, reusable sequence of gates applied in order. It is built
append-only and may contain other composites. Applying it is equivalent to
applying its constituents one after another.
*/
type Composite struct {
	name  string
	gates []Gate
}

// NewComposite starts an empty sequence, optionally seeded with gates.
func NewComposite(name string, gates ...Gate) *Composite {
	c := &Composite{name: name}
	return c.Append(gates...)
}

// Append adds gates to the end of the sequence and returns the composite.
func (c *Composite) Append(gates ...Gate) *Composite {
	c.gates = append(c.gates, gates...)
	return c
}

func (c *Composite) Name() string { return c.name }

// Gates returns a copy of the sequence.
func (c *Composite) Gates() []Gate {
	out := make([]Gate, len(c.gates))
	copy(out, c.gates)
	return out
}

// Len is the number of direct constituents.
func (c *Composite) Len() int {
	return len(c.gates)
}

// Qubits is the distinct set of qubits touched anywhere in the sequence,
// in first-use order.
func (c *Composite) Qubits() []int {
	seen := make(map[int]bool)
	var out []int

	c.collect(seen, &out, nil)
	return out
}

// collect skips a composite already on path, so a sequence that contains
// itself still terminates.
func (c *Composite) collect(seen map[int]bool, out *[]int, path []*Composite) {
	if slices.Contains(path, c) {
		return
	}
	path = append(path, c)

	for _, g := range c.gates {
		if inner, ok := g.(*Composite); ok {
			inner.collect(seen, out, path)
			continue
		}

		for _, q := range g.Qubits() {
			if !seen[q] {
				seen[q] = true
				*out = append(*out, q)
			}
		}
	}
}

func (*Composite) sealed() {}

func (c *Composite) String() string {
	return c.render(nil)
}

// render prints a composite met again inside itself as "name { ... }".
func (c *Composite) render(path []*Composite) string {
	if slices.Contains(path, c) {
		return c.name + " { ... }"
	}
	path = append(path, c)

	parts := make([]string, len(c.gates))
	for i, g := range c.gates {
		if inner, ok := g.(*Composite); ok {
			parts[i] = inner.render(path)
			continue
		}

		parts[i] = String(g)
	}

	return c.name + " { " + strings.Join(parts, "; ") + " }"
}

// String renders any gate, composite or primitive.
func String(g Gate) string {
	if s, ok := g.(interface{ String() string }); ok {
		return s.String()
	}

	return format(g)
}

/*
Flatten expands nested composites into the primitive sequence they stand for.
A composite that contains itself is expanded once; the inner reference is
dropped.
*/
func Flatten(gates ...Gate) []Gate {
	return flatten(gates, nil)
}

func flatten(gates []Gate, path []*Composite) []Gate {
	var out []Gate

	for _, g := range gates {
		c, ok := g.(*Composite)
		if !ok {
			out = append(out, g)
			continue
		}

		if slices.Contains(path, c) {
			continue
		}

		out = append(out, flatten(c.gates, append(path, c))...)
	}

	return out
}
