package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/mliezun/lox/internal"
	"github.com/naoina/toml"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "loglevel",
		Usage: "Log level (panic, fatal, error, warn, info, debug, trace)",
	}
	noColorFlag = cli.BoolFlag{
		Name:  "nocolor",
		Usage: "Disable coloured diagnostics",
	}
	maxDepthFlag = cli.IntFlag{
		Name:  "maxdepth",
		Usage: "Maximum nested call depth",
	}
)

// Unknown keys are errors so typos in the file do not go unnoticed.
var tomlSettings = toml.Config{
	NormFieldName: toml.DefaultConfig.NormFieldName,
	FieldToKey:    toml.DefaultConfig.FieldToKey,
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

type loxConfig struct {
	LogLevel     string `toml:"log_level"`
	Color        bool   `toml:"color"`
	HistoryFile  string `toml:"history_file"`
	Prompt       string `toml:"prompt"`
	MaxCallDepth int    `toml:"max_call_depth"`
}

func defaultConfig() loxConfig {
	history := ".lox_history"
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, history)
	}
	return loxConfig{
		LogLevel:     "warn",
		Color:        true,
		HistoryFile:  history,
		Prompt:       "> ",
		MaxCallDepth: internal.DefaultMaxCallDepth,
	}
}

func loadConfig(file string, cfg *loxConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig layers defaults, the config file and command line flags.
func makeConfig(ctx *cli.Context) (loxConfig, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if ctx.GlobalIsSet(logLevelFlag.Name) {
		cfg.LogLevel = ctx.GlobalString(logLevelFlag.Name)
	}
	if ctx.GlobalBool(noColorFlag.Name) {
		cfg.Color = false
	}
	if ctx.GlobalIsSet(maxDepthFlag.Name) {
		cfg.MaxCallDepth = ctx.GlobalInt(maxDepthFlag.Name)
	}
	if cfg.MaxCallDepth < 0 {
		return cfg, fmt.Errorf("max call depth must not be negative, got %d", cfg.MaxCallDepth)
	}
	return cfg, nil
}

func (c loxConfig) logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	return logger, nil
}
