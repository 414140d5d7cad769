package internal

import (
	"fmt"
	"math"
	"strconv"
)

func truthy(value Value) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	}
	return true
}

// isEqual compares numbers, strings and booleans by value and everything
// else by identity. NaN is not equal to itself.
func isEqual(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case float64:
		n, ok := b.(float64)
		return ok && a == n
	case string:
		s, ok := b.(string)
		return ok && a == s
	case bool:
		v, ok := b.(bool)
		return ok && a == v
	}
	return a == b
}

// Stringify returns the text print writes for value.
func Stringify(value Value) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(v)
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", value)
}

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func typeName(value Value) string {
	switch value.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case callable:
		return "function"
	case *loxInstance:
		return "instance"
	}
	return fmt.Sprintf("%T", value)
}
