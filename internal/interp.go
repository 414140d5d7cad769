package internal

import (
	"fmt"
	"io"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/sirupsen/logrus"
)

// DefaultMaxCallDepth bounds nested calls when Config.MaxCallDepth is zero.
const DefaultMaxCallDepth = 10000

// IPrinter printer interface
type IPrinter interface {
	Println(a ...interface{}) (n int, err error)
	Fprintf(w io.Writer, format string, a ...interface{}) (n int, err error)
	Fprintln(w io.Writer, a ...interface{}) (n int, err error)
}

type writerPrinter struct {
	out io.Writer
}

// NewPrinter returns a printer whose Println writes to out.
func NewPrinter(out io.Writer) IPrinter {
	return &writerPrinter{out: out}
}

func (p *writerPrinter) Println(a ...interface{}) (n int, err error) {
	return fmt.Fprintln(p.out, a...)
}

func (p *writerPrinter) Fprintf(w io.Writer, format string, a ...interface{}) (n int, err error) {
	return fmt.Fprintf(w, format, a...)
}

func (p *writerPrinter) Fprintln(w io.Writer, a ...interface{}) (n int, err error) {
	return fmt.Fprintln(w, a...)
}

// Config holds the interpreter settings. Zero values select defaults.
type Config struct {
	Printer      IPrinter
	Logger       logrus.FieldLogger
	MaxCallDepth int
}

// Interpreter runs Lox programs. Globals persist across calls to Run and
// Evaluate on the same Interpreter.
type Interpreter struct {
	exec        *exec
	globalNames mapset.Set
	logger      logrus.FieldLogger
}

func NewInterpreter(cfg Config) *Interpreter {
	if cfg.Printer == nil {
		cfg.Printer = NewPrinter(os.Stdout)
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.MaxCallDepth == 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}

	interp := &Interpreter{
		exec:        newExec(cfg.Printer, cfg.Logger, cfg.MaxCallDepth),
		globalNames: mapset.NewSet(),
		logger:      cfg.Logger,
	}
	defineGlobals(interp.exec.globals)
	for _, name := range nativeNames {
		interp.globalNames.Add(name)
	}
	return interp
}

// DefineNative registers a host function as a global.
func (i *Interpreter) DefineNative(name string, arity int, fn NativeFunc) {
	i.exec.globals.define(name, &nativeFn{
		name:       name,
		arityValue: arity,
		callFn:     fn,
	})
	i.globalNames.Add(name)
}

// Run executes a program. Lexical, syntax and static errors are returned
// together as an ErrorList and nothing runs; a runtime error stops the
// program and is returned as an *Error.
func (i *Interpreter) Run(source string) error {
	state := newInterpreterState(source, i.logger)
	if !i.front(state) {
		return state.errors.Err()
	}

	names := i.globalNames.Clone()
	locals := make(map[expr]int)
	newResolver(state, locals, names).resolve(state.stmts)
	state.logger.WithFields(logrus.Fields{
		"locals": len(locals),
		"errors": len(state.errors),
	}).Debug("resolved")
	if !state.Valid() {
		return state.errors.Err()
	}
	i.commit(names, locals)

	return i.logRuntime(i.exec.interpret(state.stmts))
}

// Evaluate parses source as a single expression and returns its value.
func (i *Interpreter) Evaluate(source string) (Value, error) {
	state := newInterpreterState(source, i.logger)
	newLexer(state).scan()
	e := newParser(state).parseExpression()
	if !state.Valid() {
		return nil, state.errors.Err()
	}

	names := i.globalNames.Clone()
	locals := make(map[expr]int)
	newResolver(state, locals, names).resolveExpr(e)
	if !state.Valid() {
		return nil, state.errors.Err()
	}
	i.commit(names, locals)

	value, err := i.exec.evaluate(e)
	if err != nil {
		i.exec.env = i.exec.globals
		i.exec.depth = 0
		return nil, i.logRuntime(err)
	}
	state.logger.WithField("type", typeName(value)).Debug("evaluated")
	return value, nil
}

// front scans and parses state.source into state.stmts.
func (i *Interpreter) front(state *interpreterState) bool {
	newLexer(state).scan()
	state.logger.WithFields(logrus.Fields{
		"tokens": len(state.tokens),
		"errors": len(state.errors),
	}).Debug("scanned")

	newParser(state).parse()
	state.logger.WithFields(logrus.Fields{
		"statements": len(state.stmts),
		"errors":     len(state.errors),
	}).Debug("parsed")

	return state.Valid()
}

func (i *Interpreter) commit(names mapset.Set, locals map[expr]int) {
	i.globalNames = names
	for e, distance := range locals {
		i.exec.locals[e] = distance
	}
}

func (i *Interpreter) logRuntime(err error) error {
	if e, ok := err.(*Error); ok {
		i.logger.WithFields(logrus.Fields{
			"line": e.Line,
			"kind": e.Kind.Error(),
		}).Debug("runtime error")
	}
	return err
}

// Tokenize scans source completely. The tokens always end with EOF, even
// when lexical errors are returned alongside them.
func Tokenize(source string) ([]Token, error) {
	state := newInterpreterState(source, logrus.StandardLogger())
	newLexer(state).scan()
	return state.tokens, state.errors.Err()
}

// ParseTree parses source as one expression and returns its tree.
func ParseTree(source string) (string, error) {
	state := newInterpreterState(source, logrus.StandardLogger())
	newLexer(state).scan()
	e := newParser(state).parseExpression()
	if !state.Valid() {
		return "", state.errors.Err()
	}
	return exprString(e), nil
}

// ProgramTree parses a whole program and returns one tree per statement.
func ProgramTree(source string) (string, error) {
	state := newInterpreterState(source, logrus.StandardLogger())
	newLexer(state).scan()
	newParser(state).parse()
	if !state.Valid() {
		return "", state.errors.Err()
	}
	lines := make([]string, len(state.stmts))
	for i, s := range state.stmts {
		lines[i] = stmtString(s)
	}
	return strings.Join(lines, "\n"), nil
}

// RunSourceWithPrinter runs source code on a fresh interpreter instance.
// Diagnostics go to stderr through p.
func RunSourceWithPrinter(absPath, source string, p IPrinter) bool {
	interp := NewInterpreter(Config{Printer: p})
	interp.logger = interp.logger.WithField("path", absPath)
	if err := interp.Run(source); err != nil {
		p.Fprintln(os.Stderr, err)
		return false
	}
	return true
}
