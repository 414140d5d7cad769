package internal

import "fmt"

type callable interface {
	arity() int
	call(exec *exec, arguments []Value) (Value, error)
	String() string
}

type loxFunction struct {
	name          string
	params        []*Token
	body          []stmt
	closure       *env
	isInitializer bool
}

func newFunction(declaration *fnStmt, closure *env, isInitializer bool) *loxFunction {
	return &loxFunction{
		name:          declaration.name.Lexeme,
		params:        declaration.params,
		body:          declaration.body,
		closure:       closure,
		isInitializer: isInitializer,
	}
}

func newLambda(declaration *functionExpr, closure *env) *loxFunction {
	return &loxFunction{
		params:  declaration.params,
		body:    declaration.body,
		closure: closure,
	}
}

func (f *loxFunction) arity() int {
	return len(f.params)
}

func (f *loxFunction) call(exec *exec, arguments []Value) (Value, error) {
	env := newEnv(f.closure)
	for i, param := range f.params {
		env.define(param.Lexeme, arguments[i])
	}

	result, err := exec.executeBlock(f.body, env)
	if err != nil {
		return nil, err
	}

	if f.isInitializer {
		return f.closure.values["this"], nil
	}
	if result.returning {
		return result.value, nil
	}
	return nil, nil
}

func (f *loxFunction) bind(instance *loxInstance) *loxFunction {
	environment := newEnv(f.closure)
	environment.define("this", instance)
	return &loxFunction{
		name:          f.name,
		params:        f.params,
		body:          f.body,
		closure:       environment,
		isInitializer: f.isInitializer,
	}
}

func (f *loxFunction) String() string {
	name := "anonymous"
	if f.name != "" {
		name = f.name
	}
	return fmt.Sprintf("<fn %s>", name)
}

type nativeFn struct {
	name       string
	arityValue int
	callFn     func(arguments []Value) (Value, error)
}

func (n *nativeFn) arity() int {
	return n.arityValue
}

func (n *nativeFn) call(exec *exec, arguments []Value) (Value, error) {
	value, err := n.callFn(arguments)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", n.name, err)
	}
	return value, nil
}

func (n *nativeFn) String() string {
	return "<native fn>"
}
