package solver

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

var qcirIdentRe = regexp.MustCompile(`^-?[A-Za-z0-9_]+$`)

// qcirGate is one parsed `<g> = <op>(<lit>,...)` line, before flattening.
type qcirGate struct {
	name string
	op   string
	args []string
	line int
}

// ParseQCIR reads a QCIR-14 gate circuit (spec.md §6: `#QCIR-G14` header,
// `exists(...)`/`forall(...)` quantifier blocks, an `output(<lit>)` line,
// then gate definitions), Tseitin-flattening it into a Problem whose matrix
// is plain CNF plus fresh auxiliary existentials quantified at a fresh
// innermost block, per SPEC_FULL.md §7.
func ParseQCIR(rd io.Reader) (*Problem, error) {
	p := &qcirParser{
		nameToVar: map[string]Var{},
		quantOf:   map[Var]QType{},
	}
	if err := p.run(rd); err != nil {
		return nil, err
	}
	return p.flatten()
}

type qcirParser struct {
	nameToVar map[string]Var
	quantOf   map[Var]QType
	order     []Var // input-quantified variables, in prefix order
	gates     []qcirGate
	output    string
	nextVar   int // 0-based next fresh variable id
}

func (p *qcirParser) run(rd io.Reader) error {
	sc := bufio.NewScanner(rd)
	lineNo := 0
	sawHeader := false
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "#QCIR") {
				sawHeader = true
			}
			continue
		}
		if !sawHeader {
			return newParseError(lineNo, 0, "missing #QCIR-G14 header")
		}
		switch {
		case strings.HasPrefix(line, "exists(") || strings.HasPrefix(line, "forall("):
			qt := Existential
			rest := strings.TrimPrefix(line, "exists(")
			if strings.HasPrefix(line, "forall(") {
				qt = Universal
				rest = strings.TrimPrefix(line, "forall(")
			}
			rest = strings.TrimSuffix(rest, ")")
			for _, tok := range splitArgs(rest) {
				if tok == "" {
					continue
				}
				v := p.varFor(tok)
				if _, already := p.quantOf[v]; !already {
					p.quantOf[v] = qt
					p.order = append(p.order, v)
				}
			}
		case strings.HasPrefix(line, "output("):
			lit := strings.TrimSuffix(strings.TrimPrefix(line, "output("), ")")
			p.output = strings.TrimSpace(lit)
		default:
			eq := strings.Index(line, "=")
			if eq < 0 {
				return newParseError(lineNo, 0, "expected gate definition, got %q", line)
			}
			name := strings.TrimSpace(line[:eq])
			rhs := strings.TrimSpace(line[eq+1:])
			op, args, err := parseGateRHS(rhs)
			if err != nil {
				return newParseError(lineNo, 0, "%v", err)
			}
			p.gates = append(p.gates, qcirGate{name: name, op: op, args: args, line: lineNo})
		}
	}
	if err := sc.Err(); err != nil {
		return newParseError(lineNo, 0, "%v", err)
	}
	return nil
}

func splitArgs(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseGateRHS(rhs string) (op string, args []string, err error) {
	paren := strings.Index(rhs, "(")
	if paren < 0 || !strings.HasSuffix(rhs, ")") {
		return "", nil, newParseError(0, 0, "malformed gate body %q", rhs)
	}
	op = strings.TrimSpace(rhs[:paren])
	inner := rhs[paren+1 : len(rhs)-1]
	args = splitArgs(inner)
	switch op {
	case "and", "or", "xor", "ite":
		return op, args, nil
	default:
		return "", nil, newParseError(0, 0, "unsupported gate operator %q", op)
	}
}

// varFor returns the Var for an identifier, allocating a fresh input
// variable the first time it's seen (gate names are allocated lazily during
// flatten, since their quantifier block is synthesized, not declared).
func (p *qcirParser) varFor(name string) Var {
	v, ok := p.nameToVar[name]
	if !ok {
		v = Var(p.nextVar)
		p.nextVar++
		p.nameToVar[name] = v
	}
	return v
}

func (p *qcirParser) litFor(name string) (Lit, error) {
	if !qcirIdentRe.MatchString(name) {
		return LitUndef, newParseError(0, 0, "malformed literal %q", name)
	}
	neg := strings.HasPrefix(name, "-")
	base := strings.TrimPrefix(name, "-")
	v := p.varFor(base)
	return v.SignedLit(neg), nil
}

// flatten Tseitin-encodes every gate into CNF clauses, introducing one fresh
// auxiliary existential per gate, and assembles the final Problem.
func (p *qcirParser) flatten() (*Problem, error) {
	var clauses [][]Lit
	gateVar := map[string]Var{}

	for _, g := range p.gates {
		if _, exists := gateVar[g.name]; exists {
			return nil, newParseError(g.line, 0, "gate %q redefined", g.name)
		}
		out := p.varFor(g.name)
		gateVar[g.name] = out
		if _, declared := p.quantOf[out]; !declared {
			p.quantOf[out] = Existential // auxiliary existentials default; a previously declared name keeps its quantifier
		}

		argLits := make([]Lit, len(g.args))
		for i, a := range g.args {
			l, err := p.litFor(a)
			if err != nil {
				return nil, err
			}
			argLits[i] = l
		}
		outLit := out.Lit()

		switch g.op {
		case "and":
			// out <-> (a1 & a2 & ... & an)
			all := append([]Lit{outLit}, negateAll(argLits)...)
			clauses = append(clauses, all)
			for _, a := range argLits {
				clauses = append(clauses, []Lit{outLit.Negation(), a})
			}
		case "or":
			// out <-> (a1 | a2 | ... | an)
			all := append([]Lit{outLit.Negation()}, argLits...)
			clauses = append(clauses, all)
			for _, a := range argLits {
				clauses = append(clauses, []Lit{outLit, a.Negation()})
			}
		case "xor":
			if len(argLits) != 2 {
				return nil, newParseError(g.line, 0, "xor gate %q needs exactly 2 arguments", g.name)
			}
			a, b := argLits[0], argLits[1]
			clauses = append(clauses,
				[]Lit{outLit.Negation(), a, b},
				[]Lit{outLit.Negation(), a.Negation(), b.Negation()},
				[]Lit{outLit, a.Negation(), b},
				[]Lit{outLit, a, b.Negation()},
			)
		case "ite":
			if len(argLits) != 3 {
				return nil, newParseError(g.line, 0, "ite gate %q needs exactly 3 arguments", g.name)
			}
			c, t, e := argLits[0], argLits[1], argLits[2]
			clauses = append(clauses,
				[]Lit{outLit.Negation(), c.Negation(), t},
				[]Lit{outLit, c.Negation(), t.Negation()},
				[]Lit{outLit.Negation(), c, e},
				[]Lit{outLit, c, e.Negation()},
			)
		}
	}

	if p.output == "" {
		return nil, newParseError(0, 0, "missing output() line")
	}
	outputLit, err := p.litFor(p.output)
	if err != nil {
		return nil, err
	}
	clauses = append(clauses, []Lit{outputLit})

	nbVars := p.nextVar
	auxiliary := make([]bool, nbVars)
	declared := map[Var]bool{}
	for _, v := range p.order {
		declared[v] = true
	}
	for v := 0; v < nbVars; v++ {
		if !declared[Var(v)] {
			auxiliary[v] = true
			if _, ok := p.quantOf[Var(v)]; !ok {
				p.quantOf[Var(v)] = Existential
			}
		}
	}

	// Fresh auxiliaries (gate outputs) are quantified at a fresh innermost
	// existential block, after every declared variable.
	prefix := buildPrefix(p.order, p.quantOf)
	var aux []Var
	for v := 0; v < nbVars; v++ {
		if auxiliary[v] {
			aux = append(aux, Var(v))
		}
	}
	if len(aux) > 0 {
		prefix = append(prefix, QuantifierBlock{Type: Existential, Vars: aux})
	}
	return &Problem{
		NbVars:    nbVars,
		Prefix:    prefix,
		Auxiliary: auxiliary,
		Clauses:   clauses,
	}, nil
}

func negateAll(lits []Lit) []Lit {
	out := make([]Lit, len(lits))
	for i, l := range lits {
		out[i] = l.Negation()
	}
	return out
}

// DetectFormat reports whether firstLine, with surrounding whitespace
// trimmed, starts with #QCIR (spec.md §6 auto-detect rule); false means
// QDIMACS. It reads nothing itself: choosing which line to pass, and
// handing the full input to the chosen parser, is the caller's job.
func DetectFormat(firstLine string) (qcir bool) {
	line := strings.TrimSpace(firstLine)
	return strings.HasPrefix(line, "#QCIR")
}
