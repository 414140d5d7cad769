package main

import (
	"fmt"
	"go/format"
	"os"
	"strings"
)

//go:generate sh -c "go run . Expr > ../../internal/expr.go"
//go:generate sh -c "go run . Stmt > ../../internal/stmt.go"

var nodes = map[string][]string{
	"Stmt": {
		"Block: stmts []stmt",
		"Class: name *Token, superclass *variableExpr, methods []*fnStmt",
		"Expr: expression expr",
		"Fn: name *Token, params []*Token, body []stmt",
		"If: keyword *Token, condition expr, thenBranch stmt, elseBranch stmt",
		"Print: keyword *Token, expression expr",
		"Return: keyword *Token, value expr",
		"Var: name *Token, initializer expr",
		"While: keyword *Token, condition expr, body stmt",
	},
	"Expr": {
		"Assign: name *Token, value expr",
		"Binary: left expr, operator *Token, right expr",
		"Call: callee expr, paren *Token, arguments []expr",
		"Function: keyword *Token, params []*Token, body []stmt",
		"Get: object expr, name *Token",
		"Grouping: expression expr",
		"Literal: value interface{}",
		"Logical: left expr, operator *Token, right expr",
		"Set: object expr, name *Token, value expr",
		"Super: keyword *Token, method *Token",
		"This: keyword *Token",
		"Unary: operator *Token, right expr",
		"Variable: name *Token",
	},
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: ast Expr|Stmt")
		os.Exit(2)
	}
	types, ok := nodes[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown node family %q\n", os.Args[1])
		os.Exit(2)
	}
	src, err := format.Source([]byte(generateAst(os.Args[1], types)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Print(string(src))
}

func generateAst(baseName string, types []string) string {
	base := strings.ToLower(baseName)
	out := "// Code generated by cmd/ast. DO NOT EDIT.\n\n"
	out += "package internal\n\n"

	// Start base interface
	out += fmt.Sprintf("// %s is implemented only by the node types in this file.\n", base)
	out += "type " + base + " interface {\n"
	out += "\t" + base + "Node()\n"
	out += "}\n\n"
	// End base interface

	// Start structs
	for _, t := range types {
		typeDef := strings.SplitN(t, ":", 2)
		structName := strings.TrimSpace(typeDef[0])
		structFields := strings.TrimSpace(typeDef[1])
		out += generateType(baseName, structName, structFields)
	}
	// End structs

	return out
}

func generateType(baseName, name, fields string) string {
	// Start Structure Definition
	structName := strings.ToLower(string(name[0])) + name[1:] + baseName
	out := "type " + structName + " struct {\n"
	for _, field := range strings.Split(fields, ",") {
		out += "\t" + strings.TrimSpace(field) + "\n"
	}
	out += "}\n\n"
	// End Structure Definition

	// Start Marker Definition
	out += "func (*" + structName + ") " + strings.ToLower(baseName) + "Node() {}\n\n"
	// End Marker Definition

	return out
}
