package internal

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSource(source string) *interpreterState {
	state := newInterpreterState(source, nil)
	newLexer(state).scan()
	newParser(state).parse()
	return state
}

func TestParseTree(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1 + 2 * 3", "(+ 1.0 (* 2.0 3.0))"},
		{"(1 + 2) * 3", "(* (group (+ 1.0 2.0)) 3.0)"},
		{"-123 * (45.67)", "(* (- 123.0) (group 45.67))"},
		{"1 - 2 - 3", "(- (- 1.0 2.0) 3.0)"},
		{"!!true", "(! (! true))"},
		{`"a" == "b" != nil`, "(!= (== a b) nil)"},
		{"1 < 2 == 3 >= 4", "(== (< 1.0 2.0) (>= 3.0 4.0))"},
		{"a or b and c", "(or a (and b c))"},
		{"a = b = c", "(= a (= b c))"},
		{"f(1)(2, x)", "(call (call f 1.0) 2.0 x)"},
		{"a.b.c = 1", "(= (. (. a b) c) 1.0)"},
		{"fun (x) { return x; }", "(fun (x) (return x))"},
	}

	for _, tt := range tests {
		got, err := ParseTree(tt.source)
		require.NoError(t, err, tt.source)
		assert.Equal(t, tt.want, got, tt.source)
	}
}

func TestProgramTree(t *testing.T) {
	got, err := ProgramTree(`
var a = 1;
for (var i = 0; i < 2; i = i + 1) print i;
if (a) print a; else print nil;
fun f(x, y) { return; }
class B < A { m() { this.x = super.m; } }
`)
	require.NoError(t, err)
	assert.Equal(t, `(var a 1.0)
(block (var i 0.0) (while (< i 2.0) (block (print i) (= i (+ i 1.0)))))
(if a (print a) (print nil))
(fun f (x y) (return))
(class B < A (fun m () (= (. this x) (super m))))`, got)
}

func TestParseForWithoutClauses(t *testing.T) {
	state := parseSource("for (;;) print 1;")
	require.True(t, state.Valid(), spew.Sdump(state.errors))
	require.Len(t, state.stmts, 1)

	loop, ok := state.stmts[0].(*whileStmt)
	require.True(t, ok, spew.Sdump(state.stmts))
	cond, ok := loop.condition.(*literalExpr)
	require.True(t, ok, spew.Sdump(loop.condition))
	assert.Equal(t, true, cond.value)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source string
		want   []string
	}{
		{"print 1", []string{"[line 1] Error at end: Expect ';' after value."}},
		{"var = 1;", []string{"[line 1] Error at '=': Expect variable name."}},
		{"1 = 2;", []string{"[line 1] Error at '=': Invalid assignment target."}},
		{"(1 + 2;", []string{"[line 1] Error at ';': Expect ')' after expression."}},
		{"print ;", []string{"[line 1] Error at ';': Expect expression."}},
		{"{ print 1;", []string{"[line 1] Error at end: Expect '}' after block."}},
		{"fun (a) {}", []string{"[line 1] Error at end: Expect ';' after expression."}},
		{"class { }", []string{"[line 1] Error at '{': Expect class name."}},
	}

	for _, tt := range tests {
		state := parseSource(tt.source)
		var got []string
		for _, e := range state.errors {
			got = append(got, e.Error())
		}
		assert.Equal(t, tt.want, got, tt.source)
	}
}

func TestParseSynchronizes(t *testing.T) {
	state := parseSource(`
var a = ;
print a;
var = 2;
print 3 4;
var b = 5;
`)
	require.Len(t, state.errors, 3, spew.Sdump(state.errors))
	assert.Equal(t, 2, state.errors[0].Line)
	assert.Equal(t, 4, state.errors[1].Line)
	assert.Equal(t, 5, state.errors[2].Line)
	for _, e := range state.errors {
		assert.True(t, errors.Is(e, ErrParse))
	}

	// The statements around the errors still parse.
	require.Len(t, state.stmts, 2, spew.Sdump(state.stmts))
	assert.IsType(t, &printStmt{}, state.stmts[0])
	assert.IsType(t, &varStmt{}, state.stmts[1])
}

func TestParseTooManyArguments(t *testing.T) {
	args := "0"
	for i := 1; i <= maxFunctionParams; i++ {
		args += ", 0"
	}
	state := parseSource("f(" + args + ");")
	require.Len(t, state.errors, 1)
	assert.Equal(t, "Can't have more than 255 arguments.", state.errors[0].Msg)
	// Reported without discarding the statement.
	assert.Len(t, state.stmts, 1)
}

func TestParseExpressionTrailing(t *testing.T) {
	_, err := ParseTree("1 2")
	require.Error(t, err)
	assert.Equal(t, "[line 1] Error at '2': Expect end of expression.", err.Error())
}
