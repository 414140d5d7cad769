package internal

import "fmt"

type loxClass struct {
	name       string
	superclass *loxClass
	methods    map[string]*loxFunction
}

func (c *loxClass) findMethod(name string) *loxFunction {
	if method, ok := c.methods[name]; ok {
		return method
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil
}

func (c *loxClass) arity() int {
	if init := c.findMethod("init"); init != nil {
		return init.arity()
	}
	return 0
}

func (c *loxClass) call(exec *exec, arguments []Value) (Value, error) {
	instance := &loxInstance{class: c, fields: make(map[string]Value)}
	if init := c.findMethod("init"); init != nil {
		if _, err := init.bind(instance).call(exec, arguments); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (c *loxClass) String() string {
	return c.name
}

type loxInstance struct {
	class  *loxClass
	fields map[string]Value
}

// get looks up fields before methods, so a field shadows a method of the
// same name.
func (i *loxInstance) get(name *Token) (Value, error) {
	if value, ok := i.fields[name.Lexeme]; ok {
		return value, nil
	}
	if method := i.class.findMethod(name.Lexeme); method != nil {
		return method.bind(i), nil
	}
	return nil, runtimeErr(ErrUndefinedProperty, name, "Undefined property '%s'.", name.Lexeme)
}

func (i *loxInstance) set(name *Token, value Value) {
	i.fields[name.Lexeme] = value
}

func (i *loxInstance) String() string {
	return fmt.Sprintf("%s instance", i.class.name)
}
