package internal

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
)

type functionType int

const (
	ftNone functionType = iota
	ftFunction
	ftInitializer
	ftMethod
)

type classType int

const (
	ctNone classType = iota
	ctClass
	ctSubclass
)

// scope maps a name to whether its initializer has finished resolving.
type scope map[string]bool

// resolver computes hop counts for every local variable reference. A
// reference that no local scope declares is left out of locals and is
// looked up in the globals at runtime.
type resolver struct {
	state  *interpreterState
	locals map[expr]int

	scopes []scope

	// knownGlobals holds natives and names bound by top-level statements
	// already resolved; allGlobals also includes the ones still ahead.
	knownGlobals mapset.Set
	allGlobals   mapset.Set
	pending      string

	currentFunction functionType
	currentClass    classType
}

func newResolver(state *interpreterState, locals map[expr]int, globals mapset.Set) *resolver {
	return &resolver{
		state:        state,
		locals:       locals,
		knownGlobals: globals,
		allGlobals:   globals.Clone(),
	}
}

func (r *resolver) resolve(stmts []stmt) {
	for _, s := range stmts {
		if name := declaredName(s); name != "" {
			r.allGlobals.Add(name)
		}
	}
	for _, s := range stmts {
		r.resolveStmt(s)
		if name := declaredName(s); name != "" {
			r.knownGlobals.Add(name)
		}
	}
}

func declaredName(s stmt) string {
	switch s := s.(type) {
	case *varStmt:
		return s.name.Lexeme
	case *fnStmt:
		return s.name.Lexeme
	case *classStmt:
		return s.name.Lexeme
	}
	return ""
}

func (r *resolver) resolveStmts(stmts []stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *resolver) resolveStmt(s stmt) {
	switch s := s.(type) {
	case *blockStmt:
		r.beginScope()
		r.resolveStmts(s.stmts)
		r.endScope()
	case *classStmt:
		r.resolveClass(s)
	case *exprStmt:
		r.resolveExpr(s.expression)
	case *fnStmt:
		r.declare(s.name)
		r.define(s.name)
		r.resolveFunction(s.params, s.body, ftFunction)
	case *ifStmt:
		r.resolveExpr(s.condition)
		r.resolveStmt(s.thenBranch)
		if s.elseBranch != nil {
			r.resolveStmt(s.elseBranch)
		}
	case *printStmt:
		r.resolveExpr(s.expression)
	case *returnStmt:
		if r.currentFunction == ftNone {
			r.state.tokenError(ErrReturnOutsideFunction, s.keyword, "Can't return from top-level code.")
		}
		if s.value != nil {
			if r.currentFunction == ftInitializer {
				r.state.tokenError(ErrReturnFromInitializer, s.keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpr(s.value)
		}
	case *varStmt:
		r.resolveVar(s)
	case *whileStmt:
		r.resolveExpr(s.condition)
		r.resolveStmt(s.body)
	default:
		panic(fmt.Sprintf("resolver: unhandled statement %T", s))
	}
}

func (r *resolver) resolveVar(s *varStmt) {
	if len(r.scopes) == 0 {
		previous := r.pending
		r.pending = s.name.Lexeme
		defer func() { r.pending = previous }()
	}
	r.declare(s.name)
	if s.initializer != nil {
		r.resolveExpr(s.initializer)
	}
	r.define(s.name)
}

func (r *resolver) resolveClass(s *classStmt) {
	enclosingClass := r.currentClass
	r.currentClass = ctClass
	defer func() { r.currentClass = enclosingClass }()

	r.declare(s.name)
	r.define(s.name)

	if s.superclass != nil {
		if s.superclass.name.Lexeme == s.name.Lexeme {
			r.state.tokenError(ErrInheritFromSelf, s.superclass.name, "A class can't inherit from itself.")
		}
		r.currentClass = ctSubclass
		r.resolveExpr(s.superclass)

		r.beginScope()
		r.peekScope()["super"] = true
	}

	r.beginScope()
	r.peekScope()["this"] = true

	for _, method := range s.methods {
		declaration := ftMethod
		if method.name.Lexeme == "init" {
			declaration = ftInitializer
		}
		r.resolveFunction(method.params, method.body, declaration)
	}

	r.endScope()

	if s.superclass != nil {
		r.endScope()
	}
}

func (r *resolver) resolveExpr(e expr) {
	switch e := e.(type) {
	case *assignExpr:
		r.resolveExpr(e.value)
		r.resolveBinding(e, e.name)
	case *binaryExpr:
		r.resolveExpr(e.left)
		r.resolveExpr(e.right)
	case *callExpr:
		r.resolveExpr(e.callee)
		for _, argument := range e.arguments {
			r.resolveExpr(argument)
		}
	case *functionExpr:
		r.resolveFunction(e.params, e.body, ftFunction)
	case *getExpr:
		r.resolveExpr(e.object)
	case *groupingExpr:
		r.resolveExpr(e.expression)
	case *literalExpr:
	case *logicalExpr:
		r.resolveExpr(e.left)
		r.resolveExpr(e.right)
	case *setExpr:
		r.resolveExpr(e.value)
		r.resolveExpr(e.object)
	case *superExpr:
		if r.currentClass == ctNone {
			r.state.tokenError(ErrSuperOutsideClass, e.keyword, "Can't use 'super' outside of a class.")
		} else if r.currentClass != ctSubclass {
			r.state.tokenError(ErrSuperWithoutSuperclass, e.keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, e.keyword)
	case *thisExpr:
		if r.currentClass == ctNone {
			r.state.tokenError(ErrThisOutsideClass, e.keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, e.keyword)
	case *unaryExpr:
		r.resolveExpr(e.right)
	case *variableExpr:
		r.resolveBinding(e, e.name)
	default:
		panic(fmt.Sprintf("resolver: unhandled expression %T", e))
	}
}

// resolveBinding handles `var x = x;` and `var x = (x = 1);`: a read or
// assignment from inside its own initializer binds to an enclosing x, and
// is an error when there is none.
func (r *resolver) resolveBinding(e expr, tk *Token) {
	name := tk.Lexeme
	if len(r.scopes) == 0 {
		if name == r.pending && !r.knownGlobals.Contains(name) {
			r.state.tokenError(ErrSelfReference, tk, "Can't read local variable in its own initializer.")
		}
		return
	}
	selfReference := false
	for i := len(r.scopes) - 1; i >= 0; i-- {
		ready, ok := r.scopes[i][name]
		if !ok {
			continue
		}
		if !ready {
			selfReference = true
			continue
		}
		r.locals[e] = len(r.scopes) - 1 - i
		return
	}
	if selfReference && !r.globalDeclared(name) {
		r.state.tokenError(ErrSelfReference, tk, "Can't read local variable in its own initializer.")
	}
}

func (r *resolver) globalDeclared(name string) bool {
	if r.currentFunction != ftNone {
		return r.allGlobals.Contains(name)
	}
	return r.knownGlobals.Contains(name) && name != r.pending
}

func (r *resolver) resolveLocal(e expr, name *Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[e] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *resolver) resolveFunction(params []*Token, body []stmt, ft functionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = ft
	defer func() { r.currentFunction = enclosingFunction }()

	r.beginScope()
	for _, param := range params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(body)
	r.endScope()
}

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, make(scope))
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) peekScope() scope {
	return r.scopes[len(r.scopes)-1]
}

// declare marks a new name as not ready. Redeclaring a name that is already
// ready in the same scope keeps it ready: until the new initializer has run
// the old binding is still the one in the frame.
func (r *resolver) declare(name *Token) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.peekScope()
	if _, ok := s[name.Lexeme]; !ok {
		s[name.Lexeme] = false
	}
}

func (r *resolver) define(name *Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peekScope()[name.Lexeme] = true
}
