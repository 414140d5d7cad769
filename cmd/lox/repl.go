package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mliezun/lox/internal"
	"github.com/peterh/liner"
	"gopkg.in/urfave/cli.v1"
)

func repl(s *session, ctx *cli.Context) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if err := loadHistory(ln, s.cfg.HistoryFile); err != nil {
		s.logger.WithError(err).Warn("history not loaded")
	}
	defer func() {
		if err := saveHistory(ln, s.cfg.HistoryFile); err != nil {
			s.logger.WithError(err).Warn("history not saved")
		}
	}()

	interp := s.interpreter()
	for {
		line, err := ln.Prompt(s.cfg.Prompt)
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Println()
			return nil
		}
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}

		source := strings.TrimSpace(line)
		if source == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(source, ":") {
			if source == ":quit" {
				return nil
			}
			s.reporter.warn("unknown command. Type :quit to exit.")
			continue
		}

		if isExpression(source) {
			value, err := interp.Evaluate(source)
			if err != nil {
				s.reporter.report(err)
				continue
			}
			fmt.Println(internal.Stringify(value))
			continue
		}
		if err := interp.Run(source); err != nil {
			s.reporter.report(err)
		}
	}
}

// loadHistory reads a history file. A missing file is not an error.
func loadHistory(ln *liner.State, file string) error {
	f, err := os.Open(file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = ln.ReadHistory(f)
	return err
}

func saveHistory(ln *liner.State, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if _, err := ln.WriteHistory(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// isExpression tells a bare expression from statements by its last character.
func isExpression(source string) bool {
	return !strings.HasSuffix(source, ";") && !strings.HasSuffix(source, "}")
}
