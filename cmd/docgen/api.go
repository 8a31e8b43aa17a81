package main

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-doctemplate/internal/config"
	"github.com/goliatone/go-doctemplate/internal/openapi/loader"
	"github.com/goliatone/go-doctemplate/pkg/apidoc"
	"github.com/goliatone/go-doctemplate/pkg/formats"
	"github.com/goliatone/go-doctemplate/pkg/openapi"
)

type apiFlags struct {
	format        string
	output        string
	operation     string
	templatePaths []string
	set           []string
}

func newAPICmd(a *app) *cobra.Command {
	var flags apiFlags

	cmd := &cobra.Command{
		Use:   "api [document]",
		Short: "Renders reference documentation for an OpenAPI document.",
		Long: "Renders reference documentation for an OpenAPI document given as a file " +
			"path or an http(s) URL, using the built-in api templates unless template " +
			"paths are configured.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.API.Document = args[0]
			}
			applyAPIFlags(a.cfg, flags)
			opts, err := parseSetFlags(flags.set)
			if err != nil {
				return err
			}
			a.cfg.Options = a.cfg.Options.Merge(opts)
			if err := a.cfg.Validate(); err != nil {
				return errors.Wrap(err, "invalid configuration")
			}

			out, err := generateAPI(cmd, a.cfg)
			if err != nil {
				return err
			}
			return writeOutput(a.stdout, a.cfg.Output, out)
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format (html, text, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&flags.operation, "operation", "", "render a single operation by id")
	cmd.Flags().StringArrayVarP(&flags.templatePaths, "template-path", "t", nil, "template directory replacing the built-in api templates (repeatable)")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "option as key=value, value parsed as YAML (repeatable)")
	return cmd
}

func applyAPIFlags(cfg *config.Config, flags apiFlags) {
	if flags.format != "" {
		cfg.Format = flags.format
	}
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if flags.operation != "" {
		cfg.API.Operation = flags.operation
	}
	if len(flags.templatePaths) > 0 {
		cfg.TemplatePaths = flags.templatePaths
	}
}

func generateAPI(cmd *cobra.Command, cfg *config.Config) ([]byte, error) {
	ctx := cmd.Context()

	if cfg.API.Document == "" {
		return nil, errors.New("an OpenAPI document is required")
	}
	src, err := openapi.SourceFor(cfg.API.Document)
	if err != nil {
		return nil, errors.Wrap(err, "invalid document location")
	}
	format, err := cfg.RenderFormat()
	if err != nil {
		return nil, err
	}
	registry, err := loadRegistry(cfg.TemplatePaths)
	if err != nil {
		return nil, err
	}

	gen := apidoc.New(
		apidoc.WithLoader(loader.New(openapi.NewLoaderOptions(openapi.WithHTTPFallback(cfg.API.Timeout)))),
		apidoc.WithRegistry(registry),
		apidoc.WithFormatSettings(formats.Settings{Theme: cfg.Theme.RendererConfig(), Width: cfg.Width}),
	)

	// The template defaults to api, so only an explicitly configured template
	// is forwarded.
	template := ""
	if cfg.Template != config.DefaultTemplate {
		template = cfg.Template
	}

	out, err := gen.Generate(ctx, apidoc.Request{
		Source:      src,
		Format:      format,
		Template:    template,
		OperationID: cfg.API.Operation,
		Options:     cfg.Options,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed generating documentation for %s", cfg.API.Document)
	}

	zerolog.Ctx(ctx).Info().
		Str("document", cfg.API.Document).
		Str("format", string(format)).
		Str("operation", cfg.API.Operation).
		Int("bytes", len(out)).
		Msg("generated api documentation")
	return out, nil
}
