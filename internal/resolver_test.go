package internal

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	mapset "github.com/deckarep/golang-set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveSource(t *testing.T, source string) (*interpreterState, map[expr]int) {
	t.Helper()
	state := parseSource(source)
	require.True(t, state.Valid(), spew.Sdump(state.errors))
	locals := make(map[expr]int)
	newResolver(state, locals, mapset.NewSet("clock")).resolve(state.stmts)
	return state, locals
}

func staticErrors(t *testing.T, source string) []string {
	t.Helper()
	state, _ := resolveSource(t, source)
	var msgs []string
	for _, e := range state.errors {
		msgs = append(msgs, e.Error())
	}
	return msgs
}

func TestResolveHops(t *testing.T) {
	state, locals := resolveSource(t, `
{
	var a = 1;
	{
		var b = a;
		print b;
	}
}
`)
	require.Empty(t, state.errors)

	outer := state.stmts[0].(*blockStmt)
	inner := outer.stmts[1].(*blockStmt)
	initializer := inner.stmts[0].(*varStmt).initializer
	printed := inner.stmts[1].(*printStmt).expression

	assert.Equal(t, 1, locals[initializer])
	assert.Equal(t, 0, locals[printed])
}

func TestResolveGlobalsStayUnresolved(t *testing.T) {
	state, locals := resolveSource(t, `
var g = 1;
fun f(p) { return g + p; }
`)
	require.Empty(t, state.errors)

	ret := state.stmts[1].(*fnStmt).body[0].(*returnStmt)
	sum := ret.value.(*binaryExpr)

	_, resolved := locals[sum.left]
	assert.False(t, resolved, "globals are looked up at runtime")
	assert.Equal(t, 0, locals[sum.right])
}

func TestResolveIdentity(t *testing.T) {
	state, locals := resolveSource(t, `
fun f(x) {
	print x;
	{
		print x;
	}
}
`)
	require.Empty(t, state.errors)
	body := state.stmts[0].(*fnStmt).body
	first := body[0].(*printStmt).expression
	second := body[1].(*blockStmt).stmts[0].(*printStmt).expression

	// Two identical references resolve independently.
	assert.Equal(t, 0, locals[first])
	assert.Equal(t, 1, locals[second])
}

func TestResolveSelfReference(t *testing.T) {
	const msg = "[line 1] Error at 'a': Can't read local variable in its own initializer."

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{"global without outer", "var a = a;", []string{msg}},
		{"local without outer", "{ var a = a; }", []string{msg}},
		{"nested without outer", "{ { var a = 1 + a; } }", []string{msg}},
		{"global shadowed by local", "var a = 1; { var a = a; }", nil},
		{"local shadowed by local", "{ var a = 1; { var a = a; } }", nil},
		{"redeclared global", "var a = 1; var a = a;", nil},
		{"redeclared local", "{ var a = 1; var a = a; }", nil},
		{"native", "var clock = clock;", nil},
		{"global declared later inside function", "fun f() { { var a = a; } } var a = 1;", nil},
		{"global declared later at top level", "{ var a = a; } var a = 1;", []string{msg}},
		{"assignment without outer", "{ var a = (a = 2); }", []string{msg}},
		{"assignment to shadowed global", "var a = 1; { var a = (a = 2); }", nil},
		{"assignment to shadowed local", "{ var a = 1; { var a = (a = 2); } }", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, staticErrors(t, tt.source))
		})
	}
}

func TestResolveRedeclaredLocalUsesOldBinding(t *testing.T) {
	state, locals := resolveSource(t, "{ var a = 1; var a = a + 1; }")
	require.Empty(t, state.errors)
	block := state.stmts[0].(*blockStmt)
	sum := block.stmts[1].(*varStmt).initializer.(*binaryExpr)
	assert.Equal(t, 0, locals[sum.left])
}

func TestResolveAssignmentInOwnInitializer(t *testing.T) {
	state, locals := resolveSource(t, "{ var a = 1; { var a = (a = 2); } }")
	require.Empty(t, state.errors)
	inner := state.stmts[0].(*blockStmt).stmts[1].(*blockStmt)
	assign := inner.stmts[0].(*varStmt).initializer.(*groupingExpr).expression
	assert.Equal(t, 1, locals[assign])

	state, locals = resolveSource(t, "var a = 1; { var a = (a = 2); }")
	require.Empty(t, state.errors)
	block := state.stmts[1].(*blockStmt)
	assign = block.stmts[0].(*varStmt).initializer.(*groupingExpr).expression
	_, resolved := locals[assign]
	assert.False(t, resolved, "assigns the global")
}

func TestResolveStaticErrors(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"return 1;", "[line 1] Error at 'return': Can't return from top-level code."},
		{"print this;", "[line 1] Error at 'this': Can't use 'this' outside of a class."},
		{"fun f() { return this; }", "[line 1] Error at 'this': Can't use 'this' outside of a class."},
		{"print super.x;", "[line 1] Error at 'super': Can't use 'super' outside of a class."},
		{"class A { m() { super.m(); } }", "[line 1] Error at 'super': Can't use 'super' in a class with no superclass."},
		{"class A < A {}", "[line 1] Error at 'A': A class can't inherit from itself."},
		{"class A { init() { return 1; } }", "[line 1] Error at 'return': Can't return a value from an initializer."},
	}

	for _, tt := range tests {
		assert.Equal(t, []string{tt.want}, staticErrors(t, tt.source), tt.source)
	}
}

func TestResolveAllowed(t *testing.T) {
	for _, source := range []string{
		"fun f() { return 1; }",
		"fun f() { return; }",
		"class A { init() { return; } }",
		"class A { m() { return this; } }",
		"class A {} class B < A { m() { return super.m; } }",
		"var f = fun () { return 1; };",
	} {
		assert.Empty(t, staticErrors(t, source), source)
	}
}

func TestResolveReportsAll(t *testing.T) {
	errs := staticErrors(t, `
return 1;
var a = a;
print this;
`)
	assert.Len(t, errs, 3)
}
