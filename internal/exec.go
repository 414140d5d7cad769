package internal

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// outcome is the result of executing a statement. returning is set once a
// return statement has run and stays set until the enclosing call.
type outcome struct {
	value     Value
	returning bool
}

type exec struct {
	globals *env
	env     *env
	locals  map[expr]int

	printer IPrinter
	logger  logrus.FieldLogger

	depth    int
	maxDepth int
}

func newExec(printer IPrinter, logger logrus.FieldLogger, maxDepth int) *exec {
	globals := newEnv(nil)
	return &exec{
		globals:  globals,
		env:      globals,
		locals:   make(map[expr]int),
		printer:  printer,
		logger:   logger,
		maxDepth: maxDepth,
	}
}

// interpret runs stmts in order and stops at the first runtime error.
func (e *exec) interpret(stmts []stmt) error {
	for _, s := range stmts {
		if _, err := e.execute(s); err != nil {
			e.env = e.globals
			e.depth = 0
			return err
		}
	}
	return nil
}

func (e *exec) execute(s stmt) (outcome, error) {
	switch s := s.(type) {
	case *blockStmt:
		return e.executeBlock(s.stmts, newEnv(e.env))
	case *classStmt:
		return outcome{}, e.executeClass(s)
	case *exprStmt:
		_, err := e.evaluate(s.expression)
		return outcome{}, err
	case *fnStmt:
		e.env.define(s.name.Lexeme, newFunction(s, e.env, false))
		return outcome{}, nil
	case *ifStmt:
		condition, err := e.evaluate(s.condition)
		if err != nil {
			return outcome{}, err
		}
		if truthy(condition) {
			return e.execute(s.thenBranch)
		} else if s.elseBranch != nil {
			return e.execute(s.elseBranch)
		}
		return outcome{}, nil
	case *printStmt:
		value, err := e.evaluate(s.expression)
		if err != nil {
			return outcome{}, err
		}
		if _, err := e.printer.Println(Stringify(value)); err != nil {
			return outcome{}, &Error{Kind: ErrOutput, Line: s.keyword.Line, Msg: err.Error()}
		}
		return outcome{}, nil
	case *returnStmt:
		var value Value
		if s.value != nil {
			var err error
			if value, err = e.evaluate(s.value); err != nil {
				return outcome{}, err
			}
		}
		return outcome{value: value, returning: true}, nil
	case *varStmt:
		var value Value
		if s.initializer != nil {
			var err error
			if value, err = e.evaluate(s.initializer); err != nil {
				return outcome{}, err
			}
		}
		e.env.define(s.name.Lexeme, value)
		return outcome{}, nil
	case *whileStmt:
		for {
			condition, err := e.evaluate(s.condition)
			if err != nil {
				return outcome{}, err
			}
			if !truthy(condition) {
				return outcome{}, nil
			}
			result, err := e.execute(s.body)
			if err != nil || result.returning {
				return result, err
			}
		}
	}
	panic(fmt.Sprintf("exec: unhandled statement %T", s))
}

func (e *exec) executeBlock(stmts []stmt, env *env) (outcome, error) {
	previous := e.env
	defer func() {
		e.env = previous
	}()
	e.env = env
	for _, s := range stmts {
		result, err := e.execute(s)
		if err != nil || result.returning {
			return result, err
		}
	}
	return outcome{}, nil
}

func (e *exec) executeClass(s *classStmt) error {
	var superclass *loxClass
	if s.superclass != nil {
		value, err := e.evaluate(s.superclass)
		if err != nil {
			return err
		}
		class, ok := value.(*loxClass)
		if !ok {
			return runtimeErr(ErrTypeMismatch, s.superclass.name, "Superclass must be a class.")
		}
		superclass = class
	}

	e.env.define(s.name.Lexeme, nil)

	if superclass != nil {
		e.env = newEnv(e.env)
		e.env.define("super", superclass)
	}

	methods := make(map[string]*loxFunction, len(s.methods))
	for _, method := range s.methods {
		methods[method.name.Lexeme] = newFunction(method, e.env, method.name.Lexeme == "init")
	}

	class := &loxClass{
		name:       s.name.Lexeme,
		superclass: superclass,
		methods:    methods,
	}

	if superclass != nil {
		e.env = e.env.enclosing
	}

	return e.env.assign(s.name, class)
}

func (e *exec) evaluate(ex expr) (Value, error) {
	switch ex := ex.(type) {
	case *assignExpr:
		value, err := e.evaluate(ex.value)
		if err != nil {
			return nil, err
		}
		if distance, ok := e.locals[ex]; ok {
			err = e.env.assignAt(distance, ex.name, value)
		} else {
			err = e.globals.assign(ex.name, value)
		}
		return value, err
	case *binaryExpr:
		return e.binary(ex)
	case *callExpr:
		return e.callExpr(ex)
	case *functionExpr:
		return newLambda(ex, e.env), nil
	case *getExpr:
		object, err := e.evaluate(ex.object)
		if err != nil {
			return nil, err
		}
		if instance, ok := object.(*loxInstance); ok {
			return instance.get(ex.name)
		}
		return nil, runtimeErr(ErrTypeMismatch, ex.name, "Only instances have properties.")
	case *groupingExpr:
		return e.evaluate(ex.expression)
	case *literalExpr:
		return ex.value, nil
	case *logicalExpr:
		left, err := e.evaluate(ex.left)
		if err != nil {
			return nil, err
		}
		if ex.operator.Type == OR {
			if truthy(left) {
				return left, nil
			}
		} else if !truthy(left) {
			return left, nil
		}
		return e.evaluate(ex.right)
	case *setExpr:
		object, err := e.evaluate(ex.object)
		if err != nil {
			return nil, err
		}
		instance, ok := object.(*loxInstance)
		if !ok {
			return nil, runtimeErr(ErrTypeMismatch, ex.name, "Only instances have fields.")
		}
		value, err := e.evaluate(ex.value)
		if err != nil {
			return nil, err
		}
		instance.set(ex.name, value)
		return value, nil
	case *superExpr:
		return e.super(ex)
	case *thisExpr:
		return e.lookUpVariable(ex.keyword, ex)
	case *unaryExpr:
		right, err := e.evaluate(ex.right)
		if err != nil {
			return nil, err
		}
		switch ex.operator.Type {
		case BANG:
			return !truthy(right), nil
		case MINUS:
			n, ok := right.(float64)
			if !ok {
				return nil, runtimeErr(ErrTypeMismatch, ex.operator, "Operand must be a number.")
			}
			return -n, nil
		}
		return nil, nil
	case *variableExpr:
		return e.lookUpVariable(ex.name, ex)
	}
	panic(fmt.Sprintf("exec: unhandled expression %T", ex))
}

func (e *exec) lookUpVariable(name *Token, ex expr) (Value, error) {
	if distance, ok := e.locals[ex]; ok {
		return e.env.getAt(distance, name)
	}
	return e.globals.get(name)
}

func (e *exec) super(ex *superExpr) (Value, error) {
	distance, ok := e.locals[ex]
	if !ok {
		return nil, runtimeErr(ErrRuntimeBinding, ex.keyword, "Unresolved binding for 'super'.")
	}
	value, err := e.env.getAt(distance, ex.keyword)
	if err != nil {
		return nil, err
	}
	superclass := value.(*loxClass)
	object, err := e.env.getAt(distance-1, &Token{Type: THIS, Lexeme: "this", Line: ex.keyword.Line})
	if err != nil {
		return nil, err
	}
	method := superclass.findMethod(ex.method.Lexeme)
	if method == nil {
		return nil, runtimeErr(ErrUndefinedProperty, ex.method, "Undefined property '%s'.", ex.method.Lexeme)
	}
	return method.bind(object.(*loxInstance)), nil
}

func (e *exec) callExpr(ex *callExpr) (Value, error) {
	callee, err := e.evaluate(ex.callee)
	if err != nil {
		return nil, err
	}

	arguments := make([]Value, 0, len(ex.arguments))
	for _, argument := range ex.arguments {
		value, err := e.evaluate(argument)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, value)
	}

	function, ok := callee.(callable)
	if !ok {
		return nil, runtimeErr(ErrNotCallable, ex.paren, "Can only call functions and classes.")
	}
	if len(arguments) != function.arity() {
		return nil, runtimeErr(ErrArityMismatch, ex.paren, "Expected %d arguments but got %d.", function.arity(), len(arguments))
	}
	if e.maxDepth > 0 && e.depth >= e.maxDepth {
		return nil, runtimeErr(ErrStackOverflow, ex.paren, "Stack overflow.")
	}

	e.logger.WithFields(logrus.Fields{
		"callee": function.String(),
		"line":   ex.paren.Line,
		"depth":  e.depth,
	}).Trace("call")

	e.depth++
	defer func() { e.depth-- }()
	result, err := function.call(e, arguments)
	if err != nil {
		if _, ok := err.(*Error); !ok {
			err = runtimeErr(ErrNative, ex.paren, "%v", err)
		}
		return nil, err
	}
	return result, nil
}

func (e *exec) binary(ex *binaryExpr) (Value, error) {
	left, err := e.evaluate(ex.left)
	if err != nil {
		return nil, err
	}
	right, err := e.evaluate(ex.right)
	if err != nil {
		return nil, err
	}

	switch ex.operator.Type {
	case EQUAL_EQUAL:
		return isEqual(left, right), nil
	case BANG_EQUAL:
		return !isEqual(left, right), nil
	case PLUS:
		switch l := left.(type) {
		case float64:
			if r, ok := right.(float64); ok {
				return l + r, nil
			}
		case string:
			if r, ok := right.(string); ok {
				return l + r, nil
			}
		}
		return nil, runtimeErr(ErrTypeMismatch, ex.operator, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(float64)
	r, rok := right.(float64)
	if !lok || !rok {
		return nil, runtimeErr(ErrTypeMismatch, ex.operator, "Operands must be numbers.")
	}

	switch ex.operator.Type {
	case MINUS:
		return l - r, nil
	case STAR:
		return l * r, nil
	case SLASH:
		return l / r, nil
	case GREATER:
		return l > r, nil
	case GREATER_EQUAL:
		return l >= r, nil
	case LESS:
		return l < r, nil
	case LESS_EQUAL:
		return l <= r, nil
	}
	return nil, runtimeErr(ErrTypeMismatch, ex.operator, "Unknown operator '%s'.", ex.operator.Lexeme)
}
