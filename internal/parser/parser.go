// Package parser is a hand-written recursive-descent parser that
// builds internal/hir directly — there is no separate AST stage. This
// mirrors the pipeline spec.md actually describes (source -> HIR -> MIR
// -> ...) and the way
// _examples/original_source/src/frontend/parse.c is structured, rather
// than the teacher's own tree-walking interpreter, which parses to a
// generic Expr/Stmt AST and compiles that in a second pass — a stage
// this project's pipeline has no use for.
//
// Recursive-descent structure and diagnostic style are grounded on
// _examples/sentra-language-sentra/internal/parser/parser.go.
package parser

import (
	"fmt"
	"strings"

	"github.com/jeremyylimmm/sugar/internal/errors"
	"github.com/jeremyylimmm/sugar/internal/hir"
	"github.com/jeremyylimmm/sugar/internal/lexer"
)

type parser struct {
	file   string
	source string
	tokens []lexer.Token
	pos    int

	proc   *hir.Proc
	cur    *hir.Block
	locals map[string]int64
}

// Parse tokenizes and parses source, returning the HIR for its single
// implicit procedure.
func Parse(file, source string) (proc *hir.Proc, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*errors.Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	p := &parser{
		file:   file,
		source: source,
		tokens: lexer.NewScanner(source).ScanTokens(),
		locals: map[string]int64{},
	}

	p.proc = &hir.Proc{}
	p.cur = p.proc.NewBlock()

	p.parseStmtSeq(func() bool { return p.check(lexer.TokenEOF) })

	p.proc.NumLocals = len(p.locals)
	return p.proc, nil
}

// parseStmtSeq parses statements until stop reports true, opening a
// fresh (necessarily unreachable) block whenever the current one has
// already been terminated by a return/jump/branch but more statements
// still follow — e.g. "return 1; return 2;" (scenario 6).
func (p *parser) parseStmtSeq(stop func() bool) {
	for !stop() {
		if p.cur.Term.Kind != hir.TermNone {
			p.cur = p.proc.NewBlock()
		}
		p.parseStmt()
	}
}

func (p *parser) parseStmt() {
	switch {
	case p.match(lexer.TokenVar):
		p.parseVarDecl()
	case p.check(lexer.TokenIdent) && p.checkNext(lexer.TokenEqual):
		p.parseAssign()
	case p.match(lexer.TokenIf):
		p.parseIf()
	case p.match(lexer.TokenWhile):
		p.parseWhile()
	case p.match(lexer.TokenReturn):
		p.parseReturn()
	case p.check(lexer.TokenLBrace):
		p.advance()
		p.parseBlockBody()
	default:
		p.errorAtCurrent("expected a statement")
	}
}

func (p *parser) parseVarDecl() {
	name := p.expect(lexer.TokenIdent, "expected a variable name after 'var'")
	p.expect(lexer.TokenEqual, "expected '=' in var declaration")
	value := p.parseExpr()
	p.expect(lexer.TokenSemi, "expected ';' after var declaration")

	slot := p.declareLocal(name)
	p.cur.EmitVarDecl(slot, value)
}

func (p *parser) parseAssign() {
	name := p.advance()
	p.advance() // '='
	value := p.parseExpr()
	p.expect(lexer.TokenSemi, "expected ';' after assignment")

	slot := p.resolveLocal(name)
	p.cur.EmitAssign(slot, value)
}

func (p *parser) parseReturn() {
	value := p.parseExpr()
	p.expect(lexer.TokenSemi, "expected ';' after return")
	p.cur.Term = hir.Terminator{Kind: hir.TermReturn, Value: value}
}

func (p *parser) parseIf() {
	p.expect(lexer.TokenLParen, "expected '(' after 'if'")
	pred := p.parseExpr()
	p.expect(lexer.TokenRParen, "expected ')' after if condition")

	branchBlock := p.cur
	thenBlock := p.proc.NewBlock()
	mergeBlock := p.proc.NewBlock()
	elseBlock := mergeBlock

	p.cur = thenBlock
	p.expect(lexer.TokenLBrace, "expected '{' to start if-body")
	p.parseBlockBody()
	if p.cur.Term.Kind == hir.TermNone {
		p.cur.Term = hir.Terminator{Kind: hir.TermJump, Target: mergeBlock}
	}

	if p.match(lexer.TokenElse) {
		elseBlock = p.proc.NewBlock()
		p.cur = elseBlock
		p.expect(lexer.TokenLBrace, "expected '{' to start else-body")
		p.parseBlockBody()
		if p.cur.Term.Kind == hir.TermNone {
			p.cur.Term = hir.Terminator{Kind: hir.TermJump, Target: mergeBlock}
		}
	}

	branchBlock.Term = hir.Terminator{Kind: hir.TermBranch, Predicate: pred, TrueTarget: thenBlock, FalseTarget: elseBlock}
	p.cur = mergeBlock
}

func (p *parser) parseWhile() {
	p.expect(lexer.TokenLParen, "expected '(' after 'while'")

	preheader := p.cur
	header := p.proc.NewBlock()
	preheader.Term = hir.Terminator{Kind: hir.TermJump, Target: header}

	p.cur = header
	pred := p.parseExpr()
	p.expect(lexer.TokenRParen, "expected ')' after while condition")

	bodyBlock := p.proc.NewBlock()
	afterBlock := p.proc.NewBlock()
	header.Term = hir.Terminator{Kind: hir.TermBranch, Predicate: pred, TrueTarget: bodyBlock, FalseTarget: afterBlock}

	p.cur = bodyBlock
	p.expect(lexer.TokenLBrace, "expected '{' to start while-body")
	p.parseBlockBody()
	if p.cur.Term.Kind == hir.TermNone {
		p.cur.Term = hir.Terminator{Kind: hir.TermJump, Target: header}
	}

	p.cur = afterBlock
}

// parseBlockBody parses statements up to (and consuming) a closing '}'.
// The opening '{' must already have been consumed by the caller.
func (p *parser) parseBlockBody() {
	p.parseStmtSeq(func() bool { return p.check(lexer.TokenRBrace) })
	p.expect(lexer.TokenRBrace, "expected '}'")
}

func (p *parser) declareLocal(name lexer.Token) int64 {
	if _, exists := p.locals[name.Lexeme]; exists {
		p.errorAt(name, fmt.Sprintf("%q is already declared", name.Lexeme))
	}
	slot := int64(len(p.locals))
	p.locals[name.Lexeme] = slot
	return slot
}

func (p *parser) resolveLocal(name lexer.Token) int64 {
	slot, ok := p.locals[name.Lexeme]
	if !ok {
		p.errorAt(name, fmt.Sprintf("undeclared variable %q", name.Lexeme))
	}
	return slot
}

// --- token-stream helpers ---

func (p *parser) check(t lexer.TokenType) bool {
	return p.tokens[p.pos].Type == t
}

func (p *parser) checkNext(t lexer.TokenType) bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos+1].Type == t
}

func (p *parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(t lexer.TokenType, msg string) lexer.Token {
	if !p.check(t) {
		p.errorAtCurrent(msg)
	}
	return p.advance()
}

func (p *parser) errorAtCurrent(msg string) {
	p.errorAt(p.tokens[p.pos], msg)
}

func (p *parser) errorAt(tok lexer.Token, msg string) {
	panic(errors.NewSyntaxError(msg, p.file, tok.Line, 1).WithSource(sourceLine(p.source, tok.Line)))
}

func sourceLine(source string, line int) string {
	lines := strings.Split(source, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}
