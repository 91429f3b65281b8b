// Package errors implements source-located diagnostics for the
// compiler frontend. Grounded on
// _examples/sentra-language-sentra/internal/errors/errors.go, trimmed
// to the two kinds this compiler actually raises (there is no runtime,
// so RuntimeError/TypeError/ReferenceError/ImportError have no home
// here) and to a single procedure (no call stack to report).
package errors

import (
	"fmt"
	"strings"
)

// Kind distinguishes a lexer/parser error from one a later pipeline
// stage raises (an unreachable start).
type Kind string

const (
	SyntaxError  Kind = "SyntaxError"
	CompileError Kind = "CompileError"
)

// SourceLocation pinpoints where in the input an error occurred.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

// Error is a diagnostic with enough context to print a caret pointer at
// the offending source line.
type Error struct {
	Kind     Kind
	Message  string
	Location SourceLocation
	Source   string
}

func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s\n", e.Kind, e.Message))

	if e.Location.File != "" {
		sb.WriteString(fmt.Sprintf("  at %s:%d:%d\n", e.Location.File, e.Location.Line, e.Location.Column))

		if e.Source != "" {
			prefix := fmt.Sprintf("  %d | ", e.Location.Line)
			sb.WriteString(fmt.Sprintf("\n%s%s\n", prefix, e.Source))
			sb.WriteString(strings.Repeat(" ", len(prefix)))
			if e.Location.Column > 0 {
				sb.WriteString(strings.Repeat(" ", e.Location.Column-1))
			}
			sb.WriteString("^\n")
		}
	}

	return sb.String()
}

func NewSyntaxError(message, file string, line, column int) *Error {
	return &Error{
		Kind:    SyntaxError,
		Message: message,
		Location: SourceLocation{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

func NewCompileError(message, file string, line, column int) *Error {
	return &Error{
		Kind:    CompileError,
		Message: message,
		Location: SourceLocation{
			File:   file,
			Line:   line,
			Column: column,
		},
	}
}

// WithSource attaches the offending source line for the caret pointer.
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}
