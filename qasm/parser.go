package qasm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/theapemachine/errnie"

	"github.com/theapemachine/qsim"
	"github.com/theapemachine/qsim/gate"
)

var (
	ErrUnknownInstruction     = errors.New("qasm: unknown instruction")
	ErrUnsupportedInstruction = errors.New("qasm: unsupported instruction")
)

var (
	headerRe      = regexp.MustCompile(`^OPENQASM\s+(\d+\.\d+)$`)
	includeRe     = regexp.MustCompile(`^include\s+"[^"]*"$`)
	registerRe    = regexp.MustCompile(`^(qreg|creg)\s+([A-Za-z_]\w*)\s*\[\s*(\d+)\s*\]$`)
	definitionRe  = regexp.MustCompile(`(?s)^gate\s+([A-Za-z_]\w*)\s+([^{]*?)\s*\{(.*)\}$`)
	instructionRe = regexp.MustCompile(`(?s)^([A-Za-z_]\w*)\s+(.+)$`)
	operandRe     = regexp.MustCompile(`^([A-Za-z_]\w*)\s*\[\s*(\d+)\s*\]$`)
	identRe       = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

var builtins = map[string]bool{
	"h": true, "x": true, "t": true, "tdg": true, "cx": true, "ccx": true, "mcx": true,
}

// SyntaxError points at the line of the statement that could not be used.
type SyntaxError struct {
	Line int
	Msg  string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}

	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

type statement struct {
	text string
	line int
}

// builder turns an instruction name and resolved qubits into a gate.
type builder func(op string, qubits []int) (gate.Gate, error)

type parser struct {
	program   *Program
	sawHeader bool
	declared  bool
}

// ParseFile opens and parses a circuit file.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open circuit: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// ParseString parses circuit text held in memory.
func ParseString(src string) (*Program, error) {
	return Parse(strings.NewReader(src))
}

// Parse reads an entire circuit and returns the program it describes.
func Parse(r io.Reader) (*Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read circuit: %w", err)
	}

	statements, err := split(string(src))
	if err != nil {
		return nil, err
	}

	p := &parser{
		program: &Program{Definitions: make(map[string]*Definition)},
	}

	last := 1
	for _, st := range statements {
		if err := p.statement(st); err != nil {
			return nil, err
		}

		last = st.line
	}

	if !p.sawHeader {
		return nil, &SyntaxError{Line: 1, Msg: "missing OPENQASM header"}
	}

	if !p.declared {
		return nil, &SyntaxError{Line: last, Msg: "no quantum register was defined"}
	}

	errnie.Info(
		"Parse - register %s[%d], gates %d, definitions %d",
		p.program.Quantum.Name,
		p.program.Quantum.Size,
		len(p.program.Gates),
		len(p.program.Definitions),
	)

	return p.program, nil
}

/*
split cuts the source into statements. Comments are dropped, a statement ends
at a semicolon outside braces, and a gate definition ends at its closing
brace. Each statement remembers the line it started on.
*/
func split(src string) ([]statement, error) {
	var (
		out   []statement
		buf   strings.Builder
		start int
		depth int
	)

	emit := func() {
		if text := strings.TrimSpace(buf.String()); text != "" {
			out = append(out, statement{text: text, line: start})
		}
		buf.Reset()
	}

	for i, raw := range strings.Split(src, "\n") {
		line := i + 1

		if idx := strings.Index(raw, "//"); idx >= 0 {
			raw = raw[:idx]
		}

		for _, r := range raw {
			if buf.Len() == 0 {
				if unicode.IsSpace(r) {
					continue
				}
				start = line
			}

			switch r {
			case '{':
				depth++
				buf.WriteRune(r)
			case '}':
				depth--
				if depth < 0 {
					return nil, &SyntaxError{Line: line, Msg: "unbalanced '}'"}
				}
				buf.WriteRune(r)
				if depth == 0 {
					emit()
				}
			case ';':
				if depth > 0 {
					buf.WriteRune(r)
					continue
				}
				emit()
			default:
				buf.WriteRune(r)
			}
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
	}

	if strings.TrimSpace(buf.String()) != "" {
		return nil, &SyntaxError{Line: start, Msg: "unterminated statement"}
	}

	return out, nil
}

func (p *parser) statement(st statement) error {
	if !p.sawHeader {
		caps := headerRe.FindStringSubmatch(st.text)
		if caps == nil {
			return &SyntaxError{Line: st.line, Msg: "invalid header, expected OPENQASM <version>"}
		}

		p.program.Version = caps[1]
		p.sawHeader = true
		return nil
	}

	switch {
	case includeRe.MatchString(st.text):
		return nil
	case registerRe.MatchString(st.text):
		return p.register(st)
	case strings.HasPrefix(st.text, "gate ") || strings.HasPrefix(st.text, "gate\t"):
		return p.definition(st)
	}

	caps := instructionRe.FindStringSubmatch(st.text)
	if caps == nil {
		return &SyntaxError{Line: st.line, Msg: fmt.Sprintf("could not parse %q", st.text)}
	}

	return p.instruction(st, caps[1], caps[2])
}

func (p *parser) register(st statement) error {
	caps := registerRe.FindStringSubmatch(st.text)
	kind, name := caps[1], caps[2]

	size, err := strconv.Atoi(caps[3])
	if err != nil {
		return &SyntaxError{Line: st.line, Msg: "invalid register size", Err: err}
	}

	switch kind {
	case "qreg":
		if p.declared {
			return &SyntaxError{Line: st.line, Msg: "only one quantum register is supported"}
		}
		p.program.Quantum = Register{Name: name, Size: size}
		p.declared = true
	case "creg":
		if p.program.Classical != nil {
			return &SyntaxError{Line: st.line, Msg: "only one classical register is supported"}
		}
		p.program.Classical = &Register{Name: name, Size: size}
	}

	return nil
}

func (p *parser) definition(st statement) error {
	caps := definitionRe.FindStringSubmatch(st.text)
	if caps == nil {
		return &SyntaxError{Line: st.line, Msg: "malformed gate definition"}
	}

	name := caps[1]
	if builtins[name] || p.program.Definitions[name] != nil {
		return &SyntaxError{Line: st.line, Msg: fmt.Sprintf("gate %q is already defined", name)}
	}

	params := splitList(caps[2])
	seen := make(map[string]bool, len(params))
	for _, param := range params {
		if !identRe.MatchString(param) || seen[param] {
			return &SyntaxError{Line: st.line, Msg: fmt.Sprintf("invalid parameter %q in gate %q", param, name)}
		}
		seen[param] = true
	}

	if len(params) == 0 {
		return &SyntaxError{Line: st.line, Msg: fmt.Sprintf("gate %q takes no qubits", name)}
	}

	def := &Definition{Name: name, Params: params}

	for _, text := range strings.Split(caps[3], ";") {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		body := instructionRe.FindStringSubmatch(text)
		if body == nil {
			return &SyntaxError{Line: st.line, Msg: fmt.Sprintf("could not parse %q in gate %q", text, name)}
		}

		def.Body = append(def.Body, call{op: body[1], operands: splitList(body[2]), line: st.line})
	}

	// Bind the parameters to 0..n-1 once so a broken body fails here rather
	// than at its first use.
	identity := make([]int, len(params))
	for i := range identity {
		identity[i] = i
	}

	composite, err := def.instantiate(identity, p.build)
	if err != nil {
		return &SyntaxError{Line: st.line, Msg: "invalid gate body", Err: err}
	}

	if err := qsim.Validate(composite, len(params)); err != nil {
		return &SyntaxError{Line: st.line, Msg: "invalid gate body", Err: err}
	}

	p.program.Definitions[name] = def
	return nil
}

func (p *parser) instruction(st statement, op, rest string) error {
	switch op {
	case "barrier":
		return nil
	case "measure", "reset", "if", "opaque", "U", "CX":
		return &SyntaxError{Line: st.line, Msg: op, Err: ErrUnsupportedInstruction}
	}

	if !p.declared {
		return &SyntaxError{Line: st.line, Msg: fmt.Sprintf("%s used before qreg", op)}
	}

	operands := splitList(rest)
	qubits := make([]int, len(operands))

	for i, operand := range operands {
		caps := operandRe.FindStringSubmatch(operand)
		if caps == nil {
			return &SyntaxError{Line: st.line, Msg: fmt.Sprintf("invalid operand %q", operand)}
		}

		if caps[1] != p.program.Quantum.Name {
			return &SyntaxError{Line: st.line, Msg: fmt.Sprintf("%q is not the quantum register", caps[1])}
		}

		q, err := strconv.Atoi(caps[2])
		if err != nil {
			return &SyntaxError{Line: st.line, Msg: fmt.Sprintf("invalid operand %q", operand), Err: err}
		}

		qubits[i] = q
	}

	g, err := p.build(op, qubits)
	if err != nil {
		return &SyntaxError{Line: st.line, Msg: op, Err: err}
	}

	if err := qsim.Validate(g, p.program.Width()); err != nil {
		return &SyntaxError{Line: st.line, Msg: "invalid operands", Err: err}
	}

	p.program.Gates = append(p.program.Gates, g)
	return nil
}

func (p *parser) build(op string, qubits []int) (gate.Gate, error) {
	arity := func(n int) error {
		if len(qubits) != n {
			return fmt.Errorf("%s takes %d qubits, got %d", op, n, len(qubits))
		}
		return nil
	}

	switch op {
	case "h":
		if err := arity(1); err != nil {
			return nil, err
		}
		return gate.H{Target: qubits[0]}, nil
	case "x":
		if err := arity(1); err != nil {
			return nil, err
		}
		return gate.X{Target: qubits[0]}, nil
	case "t":
		if err := arity(1); err != nil {
			return nil, err
		}
		return gate.T{Target: qubits[0]}, nil
	case "tdg":
		if err := arity(1); err != nil {
			return nil, err
		}
		return gate.Tdg{Target: qubits[0]}, nil
	case "cx":
		if err := arity(2); err != nil {
			return nil, err
		}
		return gate.CX{Control: qubits[0], Target: qubits[1]}, nil
	case "ccx":
		if err := arity(3); err != nil {
			return nil, err
		}
		return gate.Toffoli{Controls: slices.Clone(qubits[:2]), Target: qubits[2]}, nil
	case "mcx":
		if len(qubits) < 2 {
			return nil, fmt.Errorf("mcx takes at least 2 qubits, got %d", len(qubits))
		}
		last := len(qubits) - 1
		return gate.Toffoli{Controls: slices.Clone(qubits[:last]), Target: qubits[last]}, nil
	}

	if def, ok := p.program.Definitions[op]; ok {
		return def.instantiate(qubits, p.build)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownInstruction, op)
}

func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
