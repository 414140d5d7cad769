package internal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Lexical errors
var (
	ErrUnterminatedString  = errors.New("unterminated string")
	ErrUnexpectedCharacter = errors.New("unexpected character")
)

// Syntax errors
var ErrParse = errors.New("parse error")

// Static errors
var (
	ErrSelfReference          = errors.New("self-referential initializer")
	ErrReturnOutsideFunction  = errors.New("return outside function")
	ErrReturnFromInitializer  = errors.New("return value from initializer")
	ErrThisOutsideClass       = errors.New("'this' outside class")
	ErrSuperOutsideClass      = errors.New("'super' outside class")
	ErrSuperWithoutSuperclass = errors.New("'super' without superclass")
	ErrInheritFromSelf        = errors.New("class inherits from itself")
)

// Runtime errors
var (
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrNotCallable       = errors.New("not callable")
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrRuntimeBinding    = errors.New("runtime binding error")
	ErrUndefinedProperty = errors.New("undefined property")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrOutput            = errors.New("output error")
	ErrNative            = errors.New("native function error")
)

var runtimeKinds = map[error]bool{
	ErrTypeMismatch:      true,
	ErrUndefinedVariable: true,
	ErrNotCallable:       true,
	ErrArityMismatch:     true,
	ErrRuntimeBinding:    true,
	ErrUndefinedProperty: true,
	ErrStackOverflow:     true,
	ErrOutput:            true,
	ErrNative:            true,
}

// Error is a diagnostic tied to a source line. Kind is one of the Err*
// sentinels and is what errors.Is matches against.
type Error struct {
	Kind  error
	Line  int
	Where string
	Msg   string
}

func (e *Error) Error() string {
	if runtimeKinds[e.Kind] {
		return fmt.Sprintf("[line %d] Runtime error: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// IsRuntimeError reports whether err is a fatal error raised while executing.
func IsRuntimeError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return runtimeKinds[e.Kind]
	}
	return false
}

// ErrorList collects the diagnostics of an accumulating phase.
type ErrorList []*Error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Err returns nil for an empty list so callers can write `if err := l.Err()`.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// parseBailout unwinds the parser to the enclosing statement.
type parseBailout struct{}

// interpreterState stores the state of one pass over a source text
type interpreterState struct {
	source string
	tokens []Token
	stmts  []stmt
	errors ErrorList

	logger logrus.FieldLogger
}

func newInterpreterState(source string, logger logrus.FieldLogger) *interpreterState {
	return &interpreterState{
		source: source,
		errors: make(ErrorList, 0),
		logger: logger,
	}
}

func (s *interpreterState) setError(kind error, line int, where, msg string) {
	s.errors = append(s.errors, &Error{
		Kind:  kind,
		Line:  line,
		Where: where,
		Msg:   msg,
	})
}

func (s *interpreterState) tokenError(kind error, tk *Token, msg string) {
	s.setError(kind, tk.Line, where(tk), msg)
}

func (s *interpreterState) fatalError(tk *Token, msg string) {
	s.tokenError(ErrParse, tk, msg)
	panic(parseBailout{})
}

// Valid returns true if no diagnostics were collected
func (s *interpreterState) Valid() bool {
	return len(s.errors) == 0
}

func where(tk *Token) string {
	if tk.Type == EOF {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", tk.Lexeme)
}

func runtimeErr(kind error, tk *Token, format string, a ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Line: tk.Line,
		Msg:  fmt.Sprintf(format, a...),
	}
}
