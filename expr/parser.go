package expr

import (
	"fmt"
	"io"
	"strconv"
	"text/scanner"

	"github.com/crillab/plugdep/plugin"
)

type parser struct {
	s     scanner.Scanner
	eof   bool   // Have we reached eof yet?
	token string // Last token read
	tok   rune   // Kind of the last token read
}

// Parse parses a formula from the given input Reader.
// Formulas are written using the following operators (from lowest to highest priority) :
//
// - for an equivalence, the "=" operator,
// - for an implication, the "->" operator,
// - for a disjunction ("or"), the "|" operator,
// - for a conjunction ("and"), the "&" operator,
// - for a negation, the "^" unary operator.
//
// Parentheses can be used to group subformulas.
// Variables are double-quoted plugin versions, such as "Sql@2.0.0"; true and false are constants.
// Implications read from text carry no provenance: they are parsed as disjunctions.
func Parse(r io.Reader) (Formula, error) {
	var s scanner.Scanner
	s.Init(r)
	s.Mode = scanner.ScanIdents | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	p := parser{s: s}
	p.scan()
	f, err := p.parseEquiv()
	if err != nil {
		return nil, err
	}
	if !p.eof {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	return f, nil
}

func isOperator(token string) bool {
	return token == "=" || token == "-" || token == "|" || token == "&"
}

func (p *parser) scan() {
	if p.eof {
		return
	}
	p.tok = p.s.Scan()
	p.eof = p.tok == scanner.EOF
	p.token = p.s.TokenText()
}

func (p *parser) parseEquiv() (f Formula, err error) {
	if p.eof {
		return nil, fmt.Errorf("at position %v, expected expression, found EOF", p.s.Pos())
	}
	if isOperator(p.token) {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	f, err = p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "=" {
		return f, nil
	}
	p.scan()
	if p.eof {
		return nil, fmt.Errorf("unexpected EOF")
	}
	f2, err := p.parseEquiv()
	if err != nil {
		return nil, err
	}
	return And(Or(Not(f), f2), Or(f, Not(f2))), nil
}

func (p *parser) parseImplies() (f Formula, err error) {
	f, err = p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "-" {
		return f, nil
	}
	p.scan()
	if p.eof {
		return nil, fmt.Errorf("unexpected EOF")
	}
	if p.token != ">" {
		return nil, fmt.Errorf("invalid token %q at %v", "-"+p.token, p.s.Pos())
	}
	p.scan()
	if p.eof {
		return nil, fmt.Errorf("unexpected EOF")
	}
	f2, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	return Or(Not(f), f2), nil
}

func (p *parser) parseOr() (f Formula, err error) {
	f, err = p.parseAnd()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "|" {
		return f, nil
	}
	p.scan()
	if p.eof {
		return nil, fmt.Errorf("unexpected EOF")
	}
	f2, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	return Or(f, f2), nil
}

func (p *parser) parseAnd() (f Formula, err error) {
	f, err = p.parseNot()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "&" {
		return f, nil
	}
	p.scan()
	if p.eof {
		return nil, fmt.Errorf("unexpected EOF")
	}
	f2, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	return And(f, f2), nil
}

func (p *parser) parseNot() (f Formula, err error) {
	if isOperator(p.token) {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	if p.token != "^" {
		return p.parseBasic()
	}
	p.scan()
	if p.eof {
		return nil, fmt.Errorf("unexpected EOF")
	}
	f, err = p.parseNot()
	if err != nil {
		return nil, err
	}
	return Not(f), nil
}

func (p *parser) parseBasic() (f Formula, err error) {
	if p.eof {
		return nil, fmt.Errorf("at position %v, expected expression, found EOF", p.s.Pos())
	}
	if isOperator(p.token) || p.token == ")" {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	if p.token == "(" {
		p.scan()
		f, err = p.parseEquiv()
		if err != nil {
			return nil, err
		}
		if p.eof {
			return nil, fmt.Errorf("expected closing parenthesis, found EOF at %s", p.s.Pos())
		}
		if p.token != ")" {
			return nil, fmt.Errorf("expected closing parenthesis, found %q at %s", p.token, p.s.Pos())
		}
		p.scan()
		return f, nil
	}
	switch p.tok {
	case scanner.Ident:
		switch p.token {
		case "true":
			f = True
		case "false":
			f = False
		default:
			return nil, fmt.Errorf("invalid identifier %q at %s: variables must be quoted", p.token, p.s.Pos())
		}
	case scanner.String:
		name, err := strconv.Unquote(p.token)
		if err != nil {
			return nil, fmt.Errorf("invalid variable %s at %s: %v", p.token, p.s.Pos(), err)
		}
		sv, err := plugin.ParseSelectedVersion(name)
		if err != nil {
			return nil, fmt.Errorf("invalid variable at %s: %v", p.s.Pos(), err)
		}
		f = Var(sv)
	default:
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	p.scan()
	return f, nil
}
