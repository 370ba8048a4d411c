package solver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// qdimacsScanner wraps a bufio.Reader with the byte-at-a-time reading style
// of gophersat's solver/parser.go (readInt/isSpace), extended to track line
// numbers so parse errors can carry a position (SPEC_FULL.md §5).
type qdimacsScanner struct {
	r    *bufio.Reader
	line int
}

func newQDIMACSScanner(rd io.Reader) *qdimacsScanner {
	return &qdimacsScanner{r: bufio.NewReader(rd), line: 1}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

func (s *qdimacsScanner) readByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err == nil && b == '\n' {
		s.line++
	}
	return b, err
}

// readInt reads a signed int from the stream, skipping leading whitespace
// (including newlines), mirroring gophersat's readInt.
func (s *qdimacsScanner) readInt(b *byte, err *error) (res int, ok bool) {
	for *err == nil && (isSpace(*b) || *b == '\n') {
		*b, *err = s.readByte()
	}
	if *err != nil {
		return 0, false
	}
	neg := false
	if *b == '-' {
		neg = true
		*b, *err = s.readByte()
		if *err != nil {
			return 0, false
		}
	}
	read := false
	for *err == nil && *b >= '0' && *b <= '9' {
		res = 10*res + int(*b-'0')
		read = true
		*b, *err = s.readByte()
	}
	if !read {
		return 0, false
	}
	if neg {
		res = -res
	}
	return res, true
}

// skipLine consumes the rest of the current line (used for comments).
func (s *qdimacsScanner) skipLine(b *byte, err *error) {
	for *err == nil && *b != '\n' {
		*b, *err = s.readByte()
	}
}

// ParseQDIMACS reads a QDIMACS-format QBF (spec.md §6: `p cnf` header, any
// number of `{a|e} <v...> 0` quantifier blocks, then `<lit...> 0` clauses),
// grounded on gophersat's solver/parser.go ParseCNF byte-scanning style,
// extended with quantifier-block lines.
func ParseQDIMACS(rd io.Reader) (*Problem, error) {
	s := newQDIMACSScanner(rd)
	pb := &Problem{}

	b, err := s.readByte()
	var header bool
	var order []Var       // variables in the order their prefix block listed them
	quantOf := map[Var]QType{}
	seenOrder := map[Var]bool{}
	var nbClauses int

	for err == nil {
		for err == nil && (isSpace(b) || b == '\n') {
			b, err = s.readByte()
		}
		if err != nil {
			break
		}
		switch {
		case b == 'c':
			s.skipLine(&b, &err)
		case b == 'p':
			nb, nc, e := s.parseHeader(&b, &err)
			if e != nil {
				return nil, e
			}
			pb.NbVars = nb
			nbClauses = nc
			pb.Auxiliary = make([]bool, nb)
			pb.Clauses = make([][]Lit, 0, nc)
			header = true
		case b == 'a' || b == 'e':
			if !header {
				return nil, newParseError(s.line, 0, "quantifier block before header")
			}
			qt := Existential
			if b == 'a' {
				qt = Universal
			}
			b, err = s.readByte()
			for {
				val, ok := s.readInt(&b, &err)
				if !ok {
					if err != nil && err != io.EOF {
						return nil, newParseError(s.line, 0, "malformed quantifier block: %v", err)
					}
					return nil, newParseError(s.line, 0, "unterminated quantifier block")
				}
				if val == 0 {
					break
				}
				v := IntToVar(val)
				quantOf[v] = qt
				if !seenOrder[v] {
					seenOrder[v] = true
					order = append(order, v)
				}
			}
		default:
			if !header {
				return nil, newParseError(s.line, 0, "clause before header")
			}
			goto clauses
		}
	}
	goto done

clauses:
	for {
		lits := make([]Lit, 0, 4)
		for {
			val, ok := s.readInt(&b, &err)
			if !ok {
				if err == io.EOF {
					if len(lits) != 0 {
						return nil, newParseError(s.line, 0, "unterminated clause at end of file")
					}
					goto done
				}
				return nil, newParseError(s.line, 0, "malformed clause: %v", err)
			}
			if val == 0 {
				break
			}
			lits = append(lits, IntToLit(val))
		}
		pb.Clauses = append(pb.Clauses, lits)
		if len(pb.Clauses) == nbClauses {
			// allow trailing whitespace/comments after the last clause
			for err == nil && isSpace(b) || b == '\n' {
				b, err = s.readByte()
			}
			if err == io.EOF || b == 'c' {
				goto done
			}
		}
		if err == io.EOF {
			goto done
		}
	}

done:
	if err != nil && err != io.EOF {
		return nil, newParseError(s.line, 0, "%v", err)
	}

	// Any variable mentioned nowhere in a quantifier block is existential
	// by QDIMACS convention, appended to the prefix's innermost block.
	for v := Var(0); v < Var(pb.NbVars); v++ {
		if !seenOrder[v] {
			quantOf[v] = Existential
			order = append(order, v)
		}
	}
	pb.Prefix = buildPrefix(order, quantOf)
	return pb, nil
}

func (s *qdimacsScanner) parseHeader(b *byte, err *error) (nbVars, nbClauses int, parseErr error) {
	var e error
	line, e := s.r.ReadString('\n')
	if e != nil && e != io.EOF {
		return 0, 0, newParseError(s.line, 0, "cannot read header: %v", e)
	}
	s.line++
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "cnf" {
		return 0, 0, newParseError(s.line-1, 0, "invalid header %q", strings.TrimSpace("p "+line))
	}
	nbVars, perr := strconv.Atoi(fields[1])
	if perr != nil {
		return 0, 0, newParseError(s.line-1, 0, "nbvars not an int: %q", fields[1])
	}
	nbClauses, perr = strconv.Atoi(fields[2])
	if perr != nil {
		return 0, 0, newParseError(s.line-1, 0, "nbclauses not an int: %q", fields[2])
	}
	// Nothing past the header line has been consumed; stand b on a blank so
	// the caller's top-of-loop skip fetches the real next byte itself.
	*b, *err = '\n', nil
	return nbVars, nbClauses, nil
}

// buildPrefix groups a sequential variable order into alternating
// quantifier blocks, merging adjacent variables of the same type.
func buildPrefix(order []Var, quantOf map[Var]QType) []QuantifierBlock {
	var prefix []QuantifierBlock
	for _, v := range order {
		qt := quantOf[v]
		if len(prefix) == 0 || prefix[len(prefix)-1].Type != qt {
			prefix = append(prefix, QuantifierBlock{Type: qt})
		}
		last := &prefix[len(prefix)-1]
		last.Vars = append(last.Vars, v)
	}
	return prefix
}

// WriteQDIMACS prints pb in QDIMACS form, for the round-trip property of
// spec.md §8.
func WriteQDIMACS(pb *Problem, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "p cnf %d %d\n", pb.NbVars, len(pb.Clauses)); err != nil {
		return err
	}
	for _, blk := range pb.Prefix {
		tag := "e"
		if blk.Type == Universal {
			tag = "a"
		}
		fmt.Fprintf(w, "%s", tag)
		for _, v := range blk.Vars {
			fmt.Fprintf(w, " %d", v.DIMACS())
		}
		fmt.Fprintf(w, " 0\n")
	}
	for _, lits := range pb.Clauses {
		for _, l := range lits {
			fmt.Fprintf(w, "%d ", l.DIMACS())
		}
		fmt.Fprintf(w, "0\n")
	}
	return nil
}
