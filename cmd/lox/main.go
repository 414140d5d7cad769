package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/mliezun/lox/internal"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
)

var (
	tableFlag = cli.BoolFlag{
		Name:  "table",
		Usage: "Render tokens as a table",
	}
	programFlag = cli.BoolFlag{
		Name:  "program",
		Usage: "Parse a whole program instead of a single expression",
	}

	tokenizeCommand = cli.Command{
		Action:    withConfig(tokenize),
		Name:      "tokenize",
		Usage:     "Print the tokens of a source file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{tableFlag},
	}
	parseCommand = cli.Command{
		Action:    withConfig(parse),
		Name:      "parse",
		Usage:     "Print the syntax tree of a source file",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{programFlag},
	}
	evaluateCommand = cli.Command{
		Action:    withConfig(evaluate),
		Name:      "evaluate",
		Usage:     "Evaluate a single expression and print its value",
		ArgsUsage: "<file>",
	}
	runCommand = cli.Command{
		Action:    withConfig(run),
		Name:      "run",
		Usage:     "Run a program",
		ArgsUsage: "<file>",
	}
	replCommand = cli.Command{
		Action: withConfig(repl),
		Name:   "repl",
		Usage:  "Start an interactive session",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "lox"
	app.Usage = "tree-walking interpreter for the Lox language"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		configFileFlag,
		logLevelFlag,
		noColorFlag,
		maxDepthFlag,
	}
	app.Commands = []cli.Command{
		tokenizeCommand,
		parseCommand,
		evaluateCommand,
		runCommand,
		replCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is what every command gets once configuration is loaded.
type session struct {
	cfg      loxConfig
	logger   *logrus.Logger
	reporter *reporter
}

func (s *session) interpreter() *internal.Interpreter {
	return internal.NewInterpreter(internal.Config{
		Printer:      internal.NewPrinter(os.Stdout),
		Logger:       s.logger,
		MaxCallDepth: s.cfg.MaxCallDepth,
	})
}

// fail reports err and returns an error that makes the CLI exit with the
// status matching its kind.
func (s *session) fail(err error) error {
	s.reporter.report(err)
	return cli.NewExitError("", exitCode(err))
}

func withConfig(action func(*session, *cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		cfg, err := makeConfig(ctx)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		logger, err := cfg.logger()
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		return action(&session{
			cfg:      cfg,
			logger:   logger,
			reporter: newReporter(cfg.Color),
		}, ctx)
	}
}

func readSource(s *session, ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", cli.NewExitError(fmt.Sprintf("Usage: lox %s <file>", ctx.Command.Name), exitStatic)
	}
	absPath, err := filepath.Abs(ctx.Args().First())
	if err != nil {
		return "", s.fail(err)
	}
	b, err := ioutil.ReadFile(absPath)
	if err != nil {
		return "", s.fail(err)
	}
	s.logger.WithField("path", absPath).Debug("read source")
	return string(b), nil
}

func tokenize(s *session, ctx *cli.Context) error {
	source, err := readSource(s, ctx)
	if err != nil {
		return err
	}
	tokens, err := internal.Tokenize(source)
	if ctx.Bool(tableFlag.Name) {
		writeTokenTable(os.Stdout, tokens)
	} else {
		writeTokens(os.Stdout, tokens)
	}
	if err != nil {
		return s.fail(err)
	}
	return nil
}

func parse(s *session, ctx *cli.Context) error {
	source, err := readSource(s, ctx)
	if err != nil {
		return err
	}
	var tree string
	if ctx.Bool(programFlag.Name) {
		tree, err = internal.ProgramTree(source)
	} else {
		tree, err = internal.ParseTree(source)
	}
	if err != nil {
		return s.fail(err)
	}
	fmt.Println(tree)
	return nil
}

func evaluate(s *session, ctx *cli.Context) error {
	source, err := readSource(s, ctx)
	if err != nil {
		return err
	}
	value, err := s.interpreter().Evaluate(source)
	if err != nil {
		return s.fail(err)
	}
	fmt.Println(internal.Stringify(value))
	return nil
}

func run(s *session, ctx *cli.Context) error {
	source, err := readSource(s, ctx)
	if err != nil {
		return err
	}
	if err := s.interpreter().Run(source); err != nil {
		return s.fail(err)
	}
	return nil
}
