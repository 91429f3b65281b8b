package parser

import (
	"strconv"

	"github.com/jeremyylimmm/sugar/internal/hir"
	"github.com/jeremyylimmm/sugar/internal/lexer"
)

// expr := term (("+" | "-") term)*
func (p *parser) parseExpr() *hir.Node {
	left := p.parseTerm()
	for p.check(lexer.TokenPlus) || p.check(lexer.TokenMinus) {
		op := p.advance().Type
		right := p.parseTerm()
		if op == lexer.TokenPlus {
			left = p.cur.EmitAdd(left, right)
		} else {
			left = p.cur.EmitSub(left, right)
		}
	}
	return left
}

// term := unary (("*" | "/") unary)*
func (p *parser) parseTerm() *hir.Node {
	left := p.parseUnary()
	for p.check(lexer.TokenStar) || p.check(lexer.TokenSlash) {
		op := p.advance().Type
		right := p.parseUnary()
		if op == lexer.TokenStar {
			left = p.cur.EmitMul(left, right)
		} else {
			left = p.cur.EmitDiv(left, right)
		}
	}
	return left
}

// unary := "-" unary | primary
func (p *parser) parseUnary() *hir.Node {
	if p.match(lexer.TokenMinus) {
		v := p.parseUnary()
		return p.cur.EmitNegate(v)
	}
	return p.parsePrimary()
}

// primary := INT | IDENT | "(" expr ")"
func (p *parser) parsePrimary() *hir.Node {
	switch {
	case p.check(lexer.TokenInt):
		tok := p.advance()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.errorAt(tok, "integer literal out of range")
		}
		return p.cur.EmitIntegerLiteral(value)

	case p.check(lexer.TokenIdent):
		tok := p.advance()
		slot := p.resolveLocal(tok)
		return p.cur.EmitVarRef(slot)

	case p.match(lexer.TokenLParen):
		v := p.parseExpr()
		p.expect(lexer.TokenRParen, "expected ')' to close grouped expression")
		return v

	default:
		p.errorAtCurrent("expected an expression")
		return nil
	}
}
