package main

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-doctemplate/internal/config"
)

// app is the state shared by subcommands once the root command has loaded
// the configuration.
type app struct {
	stdout   io.Writer
	prompter Prompter

	configPath string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd(stdout io.Writer, prompter Prompter) *cobra.Command {
	a := &app{stdout: stdout, prompter: prompter}

	root := &cobra.Command{
		Use:           "docgen",
		Short:         "Renders documents from section templates.",
		Long:          "docgen renders hierarchical documents by composing template sections, including reference documentation for OpenAPI documents.",
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "configuration file (YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides the configuration)")

	root.AddCommand(newRenderCmd(a), newAPICmd(a), newInitCmd(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		if _, err := os.Stat("docgen.yaml"); err == nil {
			path = "docgen.yaml"
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config")
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = newLogger(cfg.Logging, cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(a.logger.WithContext(ctx))
	return nil
}

// newLogger builds the root logger the same way for every command: JSON by
// default, a console writer when text output is requested.
func newLogger(c config.LoggingConfig, out io.Writer) zerolog.Logger {
	if c.Text {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	if c.Level == "" {
		return logger
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		logger.Warn().Msgf("Invalid log level %q, using the default level instead", c.Level)
		return logger
	}
	return logger.Level(level)
}
