package internal

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPrinter struct {
	printed string
}

func (t *testPrinter) Println(a ...interface{}) (n int, err error) {
	for i, e := range a {
		if i != 0 {
			t.printed += " "
		}
		t.printed += fmt.Sprintf("%v", e)
	}
	t.printed += "\n"
	return 0, nil
}

func (t *testPrinter) Fprintf(w io.Writer, format string, a ...interface{}) (n int, err error) {
	return t.Println(fmt.Sprintf(format, a...))
}

func (t *testPrinter) Fprintln(w io.Writer, a ...interface{}) (n int, err error) {
	return t.Println(a...)
}

func (t *testPrinter) Equals(p string) bool {
	if t.printed == p+"\n" {
		t.Reset()
		return true
	}
	return false
}

func (t *testPrinter) Reset() {
	t.printed = ""
}

func checkExpression(t *testing.T, exp string, result ...string) {
	t.Helper()
	source := "print " + exp + ";"
	tp := &testPrinter{}
	RunSourceWithPrinter("test.lox", source, tp)
	any := false
	for _, r := range result {
		if tp.Equals(r) {
			any = true
			break
		}
	}
	if !any {
		t.Errorf(
			"Error on: \n%s\n\tResult should be equal to %s instead of %s",
			exp,
			result,
			tp.printed,
		)
	}
}

func checkErrorMsg(t *testing.T, source string, errorMsg string, line int) {
	t.Helper()
	result := fmt.Sprintf("[line %d] Runtime error: %s", line, errorMsg)

	tp := &testPrinter{}
	RunSourceWithPrinter("test.lox", source, tp)
	if !strings.HasSuffix(tp.printed, result+"\n") {
		t.Errorf(
			"\nSource:\n----\n%s\n----\nExpected:\n----\n%s\n----\nFound:\n----\n%s----",
			source,
			result,
			tp.printed,
		)
	}
}

func checkStatements(t *testing.T, code string, resultVar string, result string) {
	t.Helper()
	source := code + "\nprint " + resultVar + ";"
	tp := &testPrinter{}
	RunSourceWithPrinter("test.lox", source, tp)
	if !tp.Equals(result) {
		t.Errorf(
			"Error on: \n%s\n\t%s should be equal to %s instead of %s",
			code,
			resultVar,
			result,
			tp.printed,
		)
	}
}

// runOutput runs source on a fresh interpreter and returns what it printed.
func runOutput(t *testing.T, source string) (string, error) {
	t.Helper()
	tp := &testPrinter{}
	err := NewInterpreter(Config{Printer: tp}).Run(source)
	return tp.printed, err
}

func TestExpressions(t *testing.T) {

	// Arithmethic
	{
		// Number
		checkExpression(t, "1", "1")
		checkExpression(t, "1.5", "1.5")

		// Negative
		checkExpression(t, "-1", "-1")

		// Add numbers
		checkExpression(t, "1 + 2 + 3", "6")

		// Subtract numbers
		checkExpression(t, "8 - 2", "6")

		// Multiply numbers
		checkExpression(t, "1 * 2 * 3", "6")

		// Divide numbers
		checkExpression(t, "12 / 2", "6")
		checkExpression(t, "7 / 2", "3.5")

		// Precedence
		checkExpression(t, "1 + 2 * 3", "7")
		checkExpression(t, "(1 + 2) * 3", "9")
		checkExpression(t, "10 - 4 - 3", "3")
		checkExpression(t, "-2 * -3", "6")

		// Division by zero follows IEEE 754
		checkExpression(t, "1 / 0", "inf")
		checkExpression(t, "-1 / 0", "-inf")
		checkExpression(t, "0 / 0", "nan")
	}

	// Logical
	{
		// 'true' literal
		checkExpression(t, "true", "true")

		// 'false' literal
		checkExpression(t, "false", "false")

		// nil literal
		checkExpression(t, "nil", "nil")

		// not
		checkExpression(t, "!false", "true")
		checkExpression(t, "!true", "false")
		checkExpression(t, "!nil", "true")
		checkExpression(t, `!""`, "false")
		checkExpression(t, "!0", "false")
		checkExpression(t, "!!0", "true")

		// and
		checkExpression(t, "true and true", "true")
		checkExpression(t, "false and true", "false")
		checkExpression(t, "true and false", "false")
		checkExpression(t, "false and false", "false")

		// or
		checkExpression(t, "false or false", "false")
		checkExpression(t, "false or true", "true")
		checkExpression(t, "true or true", "true")
		checkExpression(t, "true or false", "true")

		// The operand itself is the result
		checkExpression(t, `nil or "yes"`, "yes")
		checkExpression(t, `"left" or "right"`, "left")
		checkExpression(t, "1 and 2", "2")
		checkExpression(t, "nil and 2", "nil")

		// Short-circuit
		checkExpression(t, `false and ("a" - 1)`, "false")
		checkExpression(t, `true or undefinedName`, "true")
	}

	// Strings
	{
		// String literal
		checkExpression(t, `"test"`, "test")

		// String concat
		checkExpression(t, `"te" + "st"`, "test")
		checkExpression(t, `"a" + "b" + "c"`, "abc")
		checkExpression(t, `"" + ""`, "")
	}

	// Comparisons
	{
		// String Equality
		checkExpression(t, `"test" == "test"`, "true")
		checkExpression(t, `"test" != "test"`, "false")

		// Number Equality
		checkExpression(t, `2*2 == 8-4`, "true")
		checkExpression(t, `2*2 != 8-4`, "false")

		// Mixed kinds are never equal
		checkExpression(t, `1 == "1"`, "false")
		checkExpression(t, `nil == false`, "false")
		checkExpression(t, `nil == nil`, "true")
		checkExpression(t, `true == true`, "true")
		checkExpression(t, `(0/0) == (0/0)`, "false")

		// Number gt
		checkExpression(t, `10 > 5`, "true")

		// Number lt
		checkExpression(t, `10 < 5`, "false")

		// Number gte
		checkExpression(t, `5 >= 5`, "true")
		checkExpression(t, `4 >= 5`, "false")

		// Number lte
		checkExpression(t, `5 <= 5`, "true")
		checkExpression(t, `10 <= 5`, "false")

		// Grouping
		checkExpression(t, `(5 <= 5) and (!true or ((1*(1+4)) == 5))`, "true")
	}

	// Callables
	{
		checkExpression(t, "clock", "<native fn>")
		checkExpression(t, "fun (a) { return a; }", "<fn anonymous>")
		checkExpression(t, "clock == clock", "true")
		checkExpression(t, "clock() > 0", "true")
	}
}

func TestStatements(t *testing.T) {

	// Variables
	{
		checkStatements(t, "var a = 1;", "a", "1")
		checkStatements(t, "var a;", "a", "nil")
		checkStatements(t, "var a = 1; a = a + 1;", "a", "2")
		checkStatements(t, "var a; var b; a = b = 3;", "a + b", "6")
		checkStatements(t, "var a = 1; var a = 2;", "a", "2")
	}

	// Blocks and shadowing
	{
		checkStatements(t, "var a = 1; { var a = 2; }", "a", "1")
		checkStatements(t, "var a = 1; { a = 2; }", "a", "2")
		checkStatements(t, "var a = 1; { var b = a + 1; a = b; }", "a", "2")
		checkStatements(t, "var a = 1; { var a = a + 1; a = a * 10; }", "a", "1")
	}

	// Conditionals
	{
		checkStatements(t, "var a = 0; if (true) a = 1; else a = 2;", "a", "1")
		checkStatements(t, "var a = 0; if (nil) a = 1; else a = 2;", "a", "2")
		checkStatements(t, "var a = 0; if (0) a = 1;", "a", "1")
		checkStatements(t, "var a = 0; if (false) if (true) a = 1; else a = 2;", "a", "0")
	}

	// Loops
	{
		checkStatements(t, "var i = 0; while (i < 10) i = i + 1;", "i", "10")
		checkStatements(t, "var s = 0; for (var i = 0; i < 5; i = i + 1) s = s + i;", "s", "10")
		checkStatements(t, "var s = 0; var i = 0; for (; i < 3;) { s = s + 1; i = i + 1; }", "s", "3")
		checkStatements(t, `var s = ""; for (var i = 0; i < 3; i = i + 1) { var c = "x"; s = s + c; }`, "s", "xxx")
	}

	// Functions
	{
		checkStatements(t, "fun add(a, b) { return a + b; } var r = add(1, 2);", "r", "3")
		checkStatements(t, "fun f() {} var r = f();", "r", "nil")
		checkStatements(t, "fun f() { return; } var r = f();", "r", "nil")
		checkStatements(t, "fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); } var r = fib(15);", "r", "610")
		checkStatements(t, "fun f() { while (true) { { return 7; } } } var r = f();", "r", "7")
		checkStatements(t, "fun f() { for (var i = 0; ; i = i + 1) if (i == 3) return i; } var r = f();", "r", "3")
		checkStatements(t, "fun f() {}", "f", "<fn f>")
		checkStatements(t, "var add = fun (a, b) { return a + b; };", "add(2, 3)", "5")
	}

	// Closures
	{
		checkStatements(t, `
fun makeCounter() {
	var i = 0;
	fun count() {
		i = i + 1;
		return i;
	}
	return count;
}
var counter = makeCounter();
counter();
counter();
`, "counter()", "3")

		checkStatements(t, `
var a = "global";
var r = "";
{
	fun show() { r = r + a; }
	show();
	var a = "block";
	show();
}
`, "r", "globalglobal")
	}
}

func TestClasses(t *testing.T) {
	checkStatements(t, "class Foo {}", "Foo", "Foo")
	checkStatements(t, "class Foo {}", "Foo()", "Foo instance")
	checkStatements(t, "class Foo {} var f = Foo(); f.x = 1;", "f.x", "1")
	checkStatements(t, `
class Point {
	init(x, y) {
		this.x = x;
		this.y = y;
	}
	sum() { return this.x + this.y; }
}
var p = Point(1, 2);
`, "p.sum()", "3")

	// Bound methods keep their receiver
	checkStatements(t, `
class Box {
	init(v) { this.v = v; }
	get() { return this.v; }
}
var g = Box(4).get;
`, "g()", "4")

	// Initializers return this even on a bare return
	checkStatements(t, `
class A {
	init() { this.n = 1; return; }
}
var a = A();
`, "a.init().n", "1")

	// Inheritance and super
	checkStatements(t, `
class A {
	name() { return "A"; }
	greet() { return "hi " + this.name(); }
}
class B < A {
	name() { return "B" + super.name(); }
}
`, "B().greet()", "hi BA")

	// Fields shadow methods
	checkStatements(t, "class A { m() { return 1; } } var a = A(); a.m = 2;", "a.m", "2")
}

func TestRuntimeErrors(t *testing.T) {
	checkErrorMsg(t, `print 1 + "a";`, "Operands must be two numbers or two strings.", 1)
	checkErrorMsg(t, `print "a" - "b";`, "Operands must be numbers.", 1)
	checkErrorMsg(t, `print 1 < "b";`, "Operands must be numbers.", 1)
	checkErrorMsg(t, `print -"a";`, "Operand must be a number.", 1)
	checkErrorMsg(t, "print x;", "Undefined variable 'x'.", 1)
	checkErrorMsg(t, "x = 1;", "Undefined variable 'x'.", 1)
	checkErrorMsg(t, "var a = 1;\n\na();", "Can only call functions and classes.", 3)
	checkErrorMsg(t, `"str"();`, "Can only call functions and classes.", 1)
	checkErrorMsg(t, "fun f(a) {}\nf();", "Expected 1 arguments but got 0.", 2)
	checkErrorMsg(t, "fun f(a) {}\nf(1, 2);", "Expected 1 arguments but got 2.", 2)
	checkErrorMsg(t, "clock(1);", "Expected 0 arguments but got 1.", 1)
	checkErrorMsg(t, "var a = 1; print a.b;", "Only instances have properties.", 1)
	checkErrorMsg(t, "var a = 1; a.b = 2;", "Only instances have fields.", 1)
	checkErrorMsg(t, "class A {} print A().b;", "Undefined property 'b'.", 1)
	checkErrorMsg(t, "var NotAClass = 1; class B < NotAClass {}", "Superclass must be a class.", 1)
	checkErrorMsg(t, "fun f() { return f(); }\nf();", "Stack overflow.", 1)
}

func TestRuntimeErrorStopsExecution(t *testing.T) {
	out, err := runOutput(t, `
print "before";
print nope;
print "after";
`)
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.Equal(t, "before\n", out)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 3, e.Line)
	assert.ErrorIs(t, err, ErrUndefinedVariable)
}

func TestArityCheckedBeforeBody(t *testing.T) {
	out, err := runOutput(t, `
fun f(a) { print "body"; }
f();
`)
	assert.ErrorIs(t, err, ErrArityMismatch)
	assert.Empty(t, out)

	out, err = runOutput(t, `
fun f(a) { print "body"; }
f(1, 2);
`)
	assert.ErrorIs(t, err, ErrArityMismatch)
	assert.Empty(t, out)
}

func TestFilterScenario(t *testing.T) {
	out, err := runOutput(t, `
fun makeFilter(min) {
	fun filter(n) {
		if (n < min) {
			return false;
		}
		return true;
	}
	return filter;
}

fun applyToNumbers(f, count) {
	var n = 0;
	while (n < count) {
		if (f(n)) {
			print n;
		}
		n = n + 1;
	}
}

var greaterThanX = makeFilter(74);
var greaterThanY = makeFilter(28);
print "Numbers >= 74:";
applyToNumbers(greaterThanX, 80);
`)
	require.NoError(t, err)
	assert.Equal(t, "Numbers >= 74:\n74\n75\n76\n77\n78\n79\n", out)
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	out, err := runOutput(t, `
fun f() { print "evaluated"; return true; }
print false and f();
print true or f();
print nil and f();
print "x" or f();
`)
	require.NoError(t, err)
	assert.Equal(t, "false\ntrue\nnil\nx\n", out)

	out, err = runOutput(t, `
fun f() { print "evaluated"; return true; }
print true and f();
print false or f();
`)
	require.NoError(t, err)
	assert.Equal(t, "evaluated\ntrue\nevaluated\ntrue\n", out)
}

func TestAssignmentInOwnInitializer(t *testing.T) {
	out, err := runOutput(t, "var a = 1; { var a = (a = 2); print a; } print a;")
	require.NoError(t, err)
	assert.Equal(t, "2\n2\n", out)

	out, err = runOutput(t, "{ var a = 1; { var a = (a = 3); print a; } print a; }")
	require.NoError(t, err)
	assert.Equal(t, "3\n3\n", out)

	out, err = runOutput(t, "{ var b = (b = 2); print b; }")
	require.Error(t, err)
	assert.False(t, IsRuntimeError(err))
	assert.True(t, errors.Is(err.(ErrorList)[0], ErrSelfReference))
	assert.Empty(t, out)
}

func TestClosuresCaptureByReference(t *testing.T) {
	out, err := runOutput(t, `
fun outer() {
	var x = "before";
	fun show() { print x; }
	x = "after";
	return show;
}
outer()();
`)
	require.NoError(t, err)
	assert.Equal(t, "after\n", out)
}

func TestIndependentClosures(t *testing.T) {
	out, err := runOutput(t, `
fun makeAdder(n) {
	return fun (x) { return x + n; };
}
var add1 = makeAdder(1);
var add10 = makeAdder(10);
print add1(1);
print add10(1);
print add1(2);
`)
	require.NoError(t, err)
	assert.Equal(t, "2\n11\n3\n", out)
}

func TestConcatenationAssociativity(t *testing.T) {
	for _, c := range []struct{ a, b, c string }{
		{"a", "b", "c"},
		{"", "x", ""},
		{"foo", "", "bar"},
	} {
		left, err := runOutput(t, fmt.Sprintf(`print ("%s" + "%s") + "%s";`, c.a, c.b, c.c))
		require.NoError(t, err)
		right, err := runOutput(t, fmt.Sprintf(`print "%s" + ("%s" + "%s");`, c.a, c.b, c.c))
		require.NoError(t, err)
		assert.Equal(t, left, right)
	}
}

func TestPrintRoundTrip(t *testing.T) {
	for _, n := range []string{"0", "1", "42", "3.5", "0.25", "1234567"} {
		out, err := runOutput(t, "print "+n+";")
		require.NoError(t, err)
		assert.Equal(t, n+"\n", out)
	}
}

func TestMaxCallDepth(t *testing.T) {
	out, err := runOutput(t, "fun sum(n) { if (n == 0) return 0; return n + sum(n - 1); } print sum(1000);")
	require.NoError(t, err)
	assert.Equal(t, "500500\n", out)

	tp := &testPrinter{}
	interp := NewInterpreter(Config{Printer: tp, MaxCallDepth: 3})

	require.NoError(t, interp.Run("fun f(n) { if (n > 0) return f(n - 1); return 0; } print f(2);"))
	assert.True(t, tp.Equals("0"))

	err = interp.Run("print f(3);")
	assert.ErrorIs(t, err, ErrStackOverflow)

	// The interpreter recovers after a runtime error
	require.NoError(t, interp.Run("print f(1);"))
	assert.True(t, tp.Equals("0"))
}

type failingPrinter struct {
	testPrinter
}

func (f *failingPrinter) Println(a ...interface{}) (n int, err error) {
	return 0, io.ErrClosedPipe
}

func TestOutputError(t *testing.T) {
	err := NewInterpreter(Config{Printer: &failingPrinter{}}).Run(`print "x";`)
	assert.ErrorIs(t, err, ErrOutput)
	assert.True(t, IsRuntimeError(err))
}
