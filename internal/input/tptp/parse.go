package tptp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/MichaelRawson/lerna/internal/errs"
	"github.com/MichaelRawson/lerna/internal/formula"
	"github.com/MichaelRawson/lerna/internal/symbol"
	"github.com/MichaelRawson/lerna/internal/term"
)

// Problem is everything ParseFile extracts from a TPTP input: the
// axioms (every annotated formula whose role isn't conjecture or
// negated_conjecture) and the single negated conjecture spec.md §6
// requires exactly one of.
type Problem struct {
	Axioms            []formula.ID
	NegatedConjecture formula.ID
}

// --- untyped AST, built directly by the recursive-descent parser below ---

type astTermKind uint8

const (
	astVar astTermKind = iota
	astFn
)

type astTerm struct {
	Kind astTermKind
	Name string
	Args []astTerm
}

type astFormulaKind uint8

const (
	astTrue astFormulaKind = iota
	astFalse
	astPred
	astEq
	astNeq
	astNot
	astBin
	astQuant
)

type astFormula struct {
	Kind astFormulaKind

	Name string    // astPred
	Args []astTerm // astPred
	Lhs  astTerm   // astEq, astNeq
	Rhs  astTerm   // astEq, astNeq
	Sub  *astFormula // astNot

	Op          string // astBin: "&", "|", "=>", "<=", "<=>", "<~>", "~&", "~|"
	Left, Right *astFormula // astBin

	Quant byte        // astQuant: '!' or '?'
	Vars  []string    // astQuant
	Body  *astFormula // astQuant
}

// --- parser ---------------------------------------------------------------

type parser struct {
	lex *lexer
}

func (p *parser) errorf(pos Pos, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w: %s", pos, errs.ErrInput, fmt.Sprintf(format, args...))
}

func (p *parser) expect(kind tokKind, what string) (token, error) {
	tok, err := p.lex.next()
	if err != nil {
		return token{}, err
	}
	if tok.kind != kind {
		return token{}, p.errorf(tok.pos, "expected %s, got %q", what, tok.text)
	}
	return tok, nil
}

func (p *parser) parseTerm() (astTerm, error) {
	tok, err := p.lex.next()
	if err != nil {
		return astTerm{}, err
	}
	switch tok.kind {
	case tokVar:
		return astTerm{Kind: astVar, Name: tok.text}, nil
	case tokIdent:
		args, err := p.maybeArgs()
		if err != nil {
			return astTerm{}, err
		}
		return astTerm{Kind: astFn, Name: tok.text, Args: args}, nil
	case tokNumber:
		return astTerm{Kind: astFn, Name: tok.text}, nil
	case tokDistinct:
		return astTerm{Kind: astFn, Name: "\"" + tok.text + "\""}, nil
	default:
		return astTerm{}, p.errorf(tok.pos, "expected term, got %q", tok.text)
	}
}

// maybeArgs consumes a parenthesized, comma-separated term list if one
// immediately follows, returning nil if there is none (a 0-arity atom).
func (p *parser) maybeArgs() ([]astTerm, error) {
	tok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokLParen {
		return nil, nil
	}
	p.lex.next()
	var args []astTerm
	for {
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		tok, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokComma {
			continue
		}
		if tok.kind == tokRParen {
			break
		}
		return nil, p.errorf(tok.pos, "expected ',' or ')' in argument list, got %q", tok.text)
	}
	return args, nil
}

func (p *parser) parseAtomic() (*astFormula, error) {
	tok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokLParen:
		p.lex.next()
		f, err := p.parseLogic()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return f, nil
	case tokNot:
		p.lex.next()
		sub, err := p.parseUnitary()
		if err != nil {
			return nil, err
		}
		return &astFormula{Kind: astNot, Sub: sub}, nil
	case tokForall, tokExists:
		p.lex.next()
		if _, err := p.expect(tokLBracket, "'['"); err != nil {
			return nil, err
		}
		var vars []string
		for {
			v, err := p.expect(tokVar, "variable")
			if err != nil {
				return nil, err
			}
			vars = append(vars, v.text)
			sep, err := p.lex.next()
			if err != nil {
				return nil, err
			}
			if sep.kind == tokComma {
				continue
			}
			if sep.kind == tokRBracket {
				break
			}
			return nil, p.errorf(sep.pos, "expected ',' or ']' in variable list, got %q", sep.text)
		}
		if _, err := p.expect(tokColon, "':'"); err != nil {
			return nil, err
		}
		body, err := p.parseUnitary()
		if err != nil {
			return nil, err
		}
		kind := byte('!')
		if tok.kind == tokExists {
			kind = '?'
		}
		return &astFormula{Kind: astQuant, Quant: kind, Vars: vars, Body: body}, nil
	default:
		return p.parseAtomicTermFormula()
	}
}

// parseAtomicTermFormula parses a predicate application or an equality
// between two terms: both start by parsing a term, since "p(X)" and
// "f(X) = g(X)" are only distinguished by whether '=' / '!=' follows.
func (p *parser) parseAtomicTermFormula() (*astFormula, error) {
	t, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	tok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	switch tok.kind {
	case tokEquals:
		p.lex.next()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &astFormula{Kind: astEq, Lhs: t, Rhs: rhs}, nil
	case tokNotEqual:
		p.lex.next()
		rhs, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return &astFormula{Kind: astNeq, Lhs: t, Rhs: rhs}, nil
	}
	if t.Kind == astVar {
		return nil, p.errorf(tok.pos, "bare variable %q used as a formula", t.Name)
	}
	switch t.Name {
	case "$true":
		return &astFormula{Kind: astTrue}, nil
	case "$false":
		return &astFormula{Kind: astFalse}, nil
	}
	return &astFormula{Kind: astPred, Name: t.Name, Args: t.Args}, nil
}

func (p *parser) parseUnitary() (*astFormula, error) {
	return p.parseAtomic()
}

func (p *parser) parseAssocAnd() (*astFormula, error) {
	left, err := p.parseUnitary()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokAnd {
			return left, nil
		}
		p.lex.next()
		right, err := p.parseUnitary()
		if err != nil {
			return nil, err
		}
		left = &astFormula{Kind: astBin, Op: "&", Left: left, Right: right}
	}
}

func (p *parser) parseAssocOr() (*astFormula, error) {
	left, err := p.parseAssocAnd()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokOr {
			return left, nil
		}
		p.lex.next()
		right, err := p.parseAssocAnd()
		if err != nil {
			return nil, err
		}
		left = &astFormula{Kind: astBin, Op: "|", Left: left, Right: right}
	}
}

var nonAssocOps = map[tokKind]string{
	tokImplies: "=>",
	tokReverse: "<=",
	tokIff:     "<=>",
	tokXor:     "<~>",
	tokNand:    "~&",
	tokNor:     "~|",
}

// parseLogic is the entry point for a full fof_logic_formula: an
// associative chain of |/& at the top, optionally followed by a single
// non-associative binary connective, matching the TPTP grammar's
// distinction between fof_binary_assoc and fof_binary_nonassoc.
func (p *parser) parseLogic() (*astFormula, error) {
	left, err := p.parseAssocOr()
	if err != nil {
		return nil, err
	}
	tok, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if op, ok := nonAssocOps[tok.kind]; ok {
		p.lex.next()
		right, err := p.parseAssocOr()
		if err != nil {
			return nil, err
		}
		return &astFormula{Kind: astBin, Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

// --- elaboration: AST -> hash-consed formula.ID, resolving variable
// names to de Bruijn indices against a scope stack (innermost last) ---

func resolveVar(name string, scope []string) (int, bool) {
	for i := len(scope) - 1; i >= 0; i-- {
		if scope[i] == name {
			return len(scope) - 1 - i, true
		}
	}
	return 0, false
}

func elaborateTerm(t astTerm, scope []string) (term.ID, error) {
	switch t.Kind {
	case astVar:
		idx, ok := resolveVar(t.Name, scope)
		if !ok {
			return 0, fmt.Errorf("%w: unbound variable %s", errs.ErrInput, t.Name)
		}
		return term.Var(idx), nil
	default:
		args := make([]term.ID, len(t.Args))
		for i, a := range t.Args {
			v, err := elaborateTerm(a, scope)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		sym := symbol.Intern(t.Name, len(t.Args))
		return term.Fn(sym, args...), nil
	}
}

func elaborateFormula(f *astFormula, scope []string) (formula.ID, error) {
	switch f.Kind {
	case astTrue:
		return formula.T(), nil
	case astFalse:
		return formula.F(), nil
	case astPred:
		args := make([]term.ID, len(f.Args))
		for i, a := range f.Args {
			v, err := elaborateTerm(a, scope)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		sym := symbol.Intern(f.Name, len(f.Args))
		return formula.Prd(sym, args...), nil
	case astEq, astNeq:
		l, err := elaborateTerm(f.Lhs, scope)
		if err != nil {
			return 0, err
		}
		r, err := elaborateTerm(f.Rhs, scope)
		if err != nil {
			return 0, err
		}
		eq := formula.Eq(l, r)
		if f.Kind == astNeq {
			return formula.Not(eq), nil
		}
		return eq, nil
	case astNot:
		sub, err := elaborateFormula(f.Sub, scope)
		if err != nil {
			return 0, err
		}
		return formula.Not(sub), nil
	case astBin:
		l, err := elaborateFormula(f.Left, scope)
		if err != nil {
			return 0, err
		}
		r, err := elaborateFormula(f.Right, scope)
		if err != nil {
			return 0, err
		}
		switch f.Op {
		case "&":
			return formula.And(l, r), nil
		case "|":
			return formula.Or(l, r), nil
		case "=>":
			return formula.Imp(l, r), nil
		case "<=":
			return formula.Imp(r, l), nil
		case "<=>":
			return formula.Eqv(l, r), nil
		case "<~>":
			return formula.Not(formula.Eqv(l, r)), nil
		case "~&":
			return formula.Not(formula.And(l, r)), nil
		case "~|":
			return formula.Not(formula.Or(l, r)), nil
		default:
			return 0, fmt.Errorf("tptp: unreachable binary operator %q", f.Op)
		}
	case astQuant:
		newScope := append(append([]string{}, scope...), f.Vars...)
		body, err := elaborateFormula(f.Body, newScope)
		if err != nil {
			return 0, err
		}
		for range f.Vars {
			if f.Quant == '!' {
				body = formula.All(body)
			} else {
				body = formula.Ex(body)
			}
		}
		return body, nil
	default:
		return 0, fmt.Errorf("tptp: unreachable formula kind")
	}
}

// elaborateCNF wraps f's free variables in implicit universal
// quantifiers, exactly as TPTP's cnf annotated formulae are defined: a
// clause's variables are all implicitly universally quantified over the
// whole clause rather than bound by an explicit quantifier prefix.
func elaborateCNF(f *astFormula) (formula.ID, error) {
	var names []string
	seen := make(map[string]bool)
	collectFreeVars(f, nil, seen, &names)
	body, err := elaborateFormula(f, names)
	if err != nil {
		return 0, err
	}
	for range names {
		body = formula.All(body)
	}
	return body, nil
}

func collectFreeVars(f *astFormula, bound []string, seen map[string]bool, order *[]string) {
	switch f.Kind {
	case astTrue, astFalse:
	case astPred:
		for _, a := range f.Args {
			collectFreeVarsTerm(a, bound, seen, order)
		}
	case astEq, astNeq:
		collectFreeVarsTerm(f.Lhs, bound, seen, order)
		collectFreeVarsTerm(f.Rhs, bound, seen, order)
	case astNot:
		collectFreeVars(f.Sub, bound, seen, order)
	case astBin:
		collectFreeVars(f.Left, bound, seen, order)
		collectFreeVars(f.Right, bound, seen, order)
	case astQuant:
		collectFreeVars(f.Body, append(append([]string{}, bound...), f.Vars...), seen, order)
	}
}

func collectFreeVarsTerm(t astTerm, bound []string, seen map[string]bool, order *[]string) {
	if t.Kind == astVar {
		for _, b := range bound {
			if b == t.Name {
				return
			}
		}
		if !seen[t.Name] {
			seen[t.Name] = true
			*order = append(*order, t.Name)
		}
		return
	}
	for _, a := range t.Args {
		collectFreeVarsTerm(a, bound, seen, order)
	}
}

// --- top-level file structure: annotated formulae and include directives --

var supportedRoles = map[string]bool{
	"axiom":              true,
	"hypothesis":         true,
	"definition":         true,
	"lemma":              true,
	"theorem":            true,
	"corollary":          true,
	"conjecture":         true,
	"negated_conjecture": true,
}

type builder struct {
	problem      Problem
	hasConjecture bool
}

func (b *builder) addAxiom(id formula.ID) {
	b.problem.Axioms = append(b.problem.Axioms, id)
}

func (b *builder) addConjecture(pos Pos, id formula.ID, negated bool) error {
	if b.hasConjecture {
		return fmt.Errorf("%s: %w: more than one conjecture/negated_conjecture", pos, errs.ErrInput)
	}
	b.hasConjecture = true
	if negated {
		b.problem.NegatedConjecture = id
	} else {
		b.problem.NegatedConjecture = formula.Not(id)
	}
	return nil
}

// ParseFile reads and elaborates a TPTP problem file, resolving
// include(path) directives relative to the including file's directory,
// and enforcing exactly one conjecture/negated_conjecture across the
// whole include closure.
func ParseFile(path string) (*Problem, error) {
	b := &builder{}
	if err := parseFileInto(path, b); err != nil {
		return nil, err
	}
	if !b.hasConjecture {
		return nil, fmt.Errorf("%s: %w: no conjecture or negated_conjecture present", path, errs.ErrInput)
	}
	return &b.problem, nil
}

func parseFileInto(path string, b *builder) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", errs.ErrOS, path, err)
	}
	p := &parser{lex: newLexer(path, src)}
	dir := filepath.Dir(path)
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return err
		}
		if tok.kind == tokEOF {
			return nil
		}
		if tok.kind != tokIdent {
			return p.errorf(tok.pos, "expected 'fof', 'cnf' or 'include', got %q", tok.text)
		}
		p.lex.next()
		switch tok.text {
		case "include":
			if err := p.parseInclude(dir, b); err != nil {
				return err
			}
		case "fof", "cnf":
			if err := p.parseAnnotated(tok.text, b); err != nil {
				return err
			}
		default:
			return p.errorf(tok.pos, "expected 'fof', 'cnf' or 'include', got %q", tok.text)
		}
	}
}

func (p *parser) parseInclude(dir string, b *builder) error {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return err
	}
	nameTok, err := p.lex.next()
	if err != nil {
		return err
	}
	if nameTok.kind != tokIdent && nameTok.kind != tokDistinct {
		return p.errorf(nameTok.pos, "expected a quoted file name in include(...)")
	}
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	if tok.kind == tokComma {
		return p.errorf(tok.pos, "include(...) with a formula selection list is unsupported")
	}
	if tok.kind != tokRParen {
		return p.errorf(tok.pos, "expected ')' closing include(...)")
	}
	if _, err := p.expect(tokDot, "'.'"); err != nil {
		return err
	}
	return parseFileInto(filepath.Join(dir, nameTok.text), b)
}

func (p *parser) parseAnnotated(kind string, b *builder) error {
	start, err := p.expect(tokLParen, "'('")
	if err != nil {
		return err
	}
	if _, err := p.lex.next(); err != nil { // name
		return err
	}
	if _, err := p.expect(tokComma, "','"); err != nil {
		return err
	}
	roleTok, err := p.expect(tokIdent, "role")
	if err != nil {
		return err
	}
	if !supportedRoles[roleTok.text] {
		return fmt.Errorf("%s: %w: unsupported role %q", roleTok.pos, errs.ErrInput, roleTok.text)
	}
	if _, err := p.expect(tokComma, "','"); err != nil {
		return err
	}

	var id formula.ID
	if kind == "cnf" {
		// A cnf_formula is a disjunction of literals, optionally
		// parenthesized; parseAssocOr handles the bare (unparenthesized)
		// disjunction case that parseUnitary alone would stop short of.
		ast, err := p.parseAssocOr()
		if err != nil {
			return err
		}
		id, err = elaborateCNF(ast)
		if err != nil {
			return err
		}
	} else {
		ast, err := p.parseLogic()
		if err != nil {
			return err
		}
		id, err = elaborateFormula(ast, nil)
		if err != nil {
			return err
		}
	}

	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	if tok.kind == tokComma {
		if err := p.skipAnnotations(); err != nil {
			return err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return err
		}
	} else if tok.kind != tokRParen {
		return p.errorf(tok.pos, "expected ',' or ')' after formula, got %q", tok.text)
	}
	if _, err := p.expect(tokDot, "'.'"); err != nil {
		return err
	}

	switch roleTok.text {
	case "conjecture":
		return b.addConjecture(start.pos, id, false)
	case "negated_conjecture":
		return b.addConjecture(start.pos, id, true)
	default:
		b.addAxiom(id)
		return nil
	}
}

// skipAnnotations consumes the optional source/useful_info annotation
// terms after a formula, tracking bracket depth since they are arbitrary
// nested TPTP terms this prover has no use for.
func (p *parser) skipAnnotations() error {
	depth := 0
	for {
		tok, err := p.lex.peek()
		if err != nil {
			return err
		}
		if tok.kind == tokEOF {
			return p.errorf(tok.pos, "unexpected end of file in annotations")
		}
		if depth == 0 && tok.kind == tokRParen {
			return nil
		}
		p.lex.next()
		switch tok.kind {
		case tokLParen, tokLBracket:
			depth++
		case tokRParen, tokRBracket:
			depth--
		}
	}
}
