package internal

// Value is anything a Lox expression can produce: nil, bool, float64,
// string, or one of the callable and instance types in this package.
type Value = interface{}

type env struct {
	enclosing *env
	values    map[string]Value
}

func newEnv(enclosing *env) *env {
	return &env{
		enclosing: enclosing,
		values:    make(map[string]Value),
	}
}

func (e *env) get(name *Token) (Value, error) {
	if value, ok := e.values[name.Lexeme]; ok {
		return value, nil
	}
	if e.enclosing != nil {
		return e.enclosing.get(name)
	}
	return nil, runtimeErr(ErrUndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
}

// define binds name in this frame, replacing any previous binding.
func (e *env) define(name string, value Value) {
	e.values[name] = value
}

func (e *env) assign(name *Token, value Value) error {
	if _, ok := e.values[name.Lexeme]; ok {
		e.values[name.Lexeme] = value
		return nil
	}
	if e.enclosing != nil {
		return e.enclosing.assign(name, value)
	}
	return runtimeErr(ErrUndefinedVariable, name, "Undefined variable '%s'.", name.Lexeme)
}

func (e *env) ancestor(distance int) *env {
	current := e
	for i := 0; i < distance && current != nil; i++ {
		current = current.enclosing
	}
	return current
}

func (e *env) getAt(distance int, name *Token) (Value, error) {
	target := e.ancestor(distance)
	if target != nil {
		if value, ok := target.values[name.Lexeme]; ok {
			return value, nil
		}
	}
	return nil, runtimeErr(ErrRuntimeBinding, name, "Unresolved binding for '%s'.", name.Lexeme)
}

func (e *env) assignAt(distance int, name *Token, value Value) error {
	target := e.ancestor(distance)
	if target == nil {
		return runtimeErr(ErrRuntimeBinding, name, "Unresolved binding for '%s'.", name.Lexeme)
	}
	if _, ok := target.values[name.Lexeme]; !ok {
		return runtimeErr(ErrRuntimeBinding, name, "Unresolved binding for '%s'.", name.Lexeme)
	}
	target.values[name.Lexeme] = value
	return nil
}
