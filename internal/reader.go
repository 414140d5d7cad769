package internal

import (
	"fmt"
	"strings"
)

// stmtString renders a statement as a parenthesized tree.
func stmtString(s stmt) string {
	switch s := s.(type) {
	case *blockStmt:
		return "(block" + joinStmts(s.stmts) + ")"
	case *classStmt:
		out := "(class " + s.name.Lexeme
		if s.superclass != nil {
			out += " < " + s.superclass.name.Lexeme
		}
		for _, method := range s.methods {
			out += " " + functionString(method.name.Lexeme, method.params, method.body)
		}
		return out + ")"
	case *exprStmt:
		return exprString(s.expression)
	case *fnStmt:
		return functionString(s.name.Lexeme, s.params, s.body)
	case *ifStmt:
		out := fmt.Sprintf("(if %s %s", exprString(s.condition), stmtString(s.thenBranch))
		if s.elseBranch != nil {
			out += " " + stmtString(s.elseBranch)
		}
		return out + ")"
	case *printStmt:
		return fmt.Sprintf("(print %s)", exprString(s.expression))
	case *returnStmt:
		if s.value == nil {
			return "(return)"
		}
		return fmt.Sprintf("(return %s)", exprString(s.value))
	case *varStmt:
		if s.initializer == nil {
			return "(var " + s.name.Lexeme + ")"
		}
		return fmt.Sprintf("(var %s %s)", s.name.Lexeme, exprString(s.initializer))
	case *whileStmt:
		return fmt.Sprintf("(while %s %s)", exprString(s.condition), stmtString(s.body))
	}
	return fmt.Sprintf("(unknown %T)", s)
}

// exprString renders an expression the way the parse command shows it:
// `(* (- 123.0) (group 45.67))`.
func exprString(e expr) string {
	switch e := e.(type) {
	case *assignExpr:
		return fmt.Sprintf("(= %s %s)", e.name.Lexeme, exprString(e.value))
	case *binaryExpr:
		return fmt.Sprintf("(%s %s %s)", e.operator.Lexeme, exprString(e.left), exprString(e.right))
	case *callExpr:
		out := "(call " + exprString(e.callee)
		for _, argument := range e.arguments {
			out += " " + exprString(argument)
		}
		return out + ")"
	case *functionExpr:
		return functionString("", e.params, e.body)
	case *getExpr:
		return fmt.Sprintf("(. %s %s)", exprString(e.object), e.name.Lexeme)
	case *groupingExpr:
		return fmt.Sprintf("(group %s)", exprString(e.expression))
	case *literalExpr:
		switch v := e.value.(type) {
		case float64:
			return formatNumberLiteral(v)
		case nil:
			return "nil"
		}
		return Stringify(e.value)
	case *logicalExpr:
		return fmt.Sprintf("(%s %s %s)", e.operator.Lexeme, exprString(e.left), exprString(e.right))
	case *setExpr:
		return fmt.Sprintf("(= (. %s %s) %s)", exprString(e.object), e.name.Lexeme, exprString(e.value))
	case *superExpr:
		return "(super " + e.method.Lexeme + ")"
	case *thisExpr:
		return "this"
	case *unaryExpr:
		return fmt.Sprintf("(%s %s)", e.operator.Lexeme, exprString(e.right))
	case *variableExpr:
		return e.name.Lexeme
	}
	return fmt.Sprintf("(unknown %T)", e)
}

func functionString(name string, params []*Token, body []stmt) string {
	names := make([]string, len(params))
	for i, param := range params {
		names[i] = param.Lexeme
	}
	out := "(fun "
	if name != "" {
		out += name + " "
	}
	out += "(" + strings.Join(names, " ") + ")"
	return out + joinStmts(body) + ")"
}

func joinStmts(stmts []stmt) string {
	out := ""
	for _, s := range stmts {
		out += " " + stmtString(s)
	}
	return out
}
