package main

import (
	"fmt"
	"io"
	"os"

	"github.com/labstack/gommon/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mliezun/lox/internal"
	"github.com/olekukonko/tablewriter"
)

const (
	exitStatic  = 65
	exitRuntime = 70
)

// reporter writes diagnostics to stderr, in red when stderr is a terminal.
type reporter struct {
	out   io.Writer
	color *color.Color
}

func newReporter(enableColor bool) *reporter {
	out := io.Writer(os.Stderr)
	tty := isatty.IsTerminal(os.Stderr.Fd())
	if tty {
		out = colorable.NewColorableStderr()
	}

	c := color.New()
	c.SetOutput(out)
	if enableColor && tty {
		c.Enable()
	} else {
		c.Disable()
	}
	return &reporter{out: out, color: c}
}

func (r *reporter) report(err error) {
	if list, ok := err.(internal.ErrorList); ok {
		for _, e := range list {
			fmt.Fprintln(r.out, r.color.Red(e.Error()))
		}
		return
	}
	fmt.Fprintln(r.out, r.color.Red(err.Error()))
}

func (r *reporter) warn(msg string) {
	fmt.Fprintln(r.out, r.color.Yellow(msg))
}

func exitCode(err error) int {
	if internal.IsRuntimeError(err) {
		return exitRuntime
	}
	return exitStatic
}

func writeTokens(w io.Writer, tokens []internal.Token) {
	for _, tk := range tokens {
		fmt.Fprintln(w, tk.String())
	}
}

func writeTokenTable(w io.Writer, tokens []internal.Token) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Type", "Lexeme", "Literal"})
	table.SetAutoFormatHeaders(false)
	for _, tk := range tokens {
		table.Append([]string{fmt.Sprint(tk.Line), tk.Type.String(), tk.Lexeme, tk.LiteralString()})
	}
	table.Render()
}
