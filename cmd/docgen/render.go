package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-doctemplate/internal/config"
	"github.com/goliatone/go-doctemplate/pkg/apidoc"
	"github.com/goliatone/go-doctemplate/pkg/formats"
	"github.com/goliatone/go-doctemplate/pkg/options"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/render/template/gotemplate"
	"github.com/goliatone/go-doctemplate/pkg/section"
)

type renderFlags struct {
	format        string
	output        string
	layout        string
	templatePaths []string
	set           []string
}

func newRenderCmd(a *app) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [template]",
		Short: "Renders a template with the configured options.",
		Long: "Renders a template from the template paths (or the built-in templates) " +
			"with the options from the configuration file and --set flags.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.cfg.Template = args[0]
			}
			applyRenderFlags(a.cfg, flags)
			opts, err := parseSetFlags(flags.set)
			if err != nil {
				return err
			}
			a.cfg.Options = a.cfg.Options.Merge(opts)
			if err := a.cfg.Validate(); err != nil {
				return errors.Wrap(err, "invalid configuration")
			}

			out, err := renderTemplate(cmd, a.cfg)
			if err != nil {
				return err
			}
			return writeOutput(a.stdout, a.cfg.Output, []byte(out))
		},
	}
	cmd.Flags().StringVarP(&flags.format, "format", "f", "", "output format (html, text, markdown)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&flags.layout, "layout", "", "layout file replacing the template's default sections")
	cmd.Flags().StringArrayVarP(&flags.templatePaths, "template-path", "t", nil, "template directory (repeatable)")
	cmd.Flags().StringArrayVar(&flags.set, "set", nil, "option as key=value, value parsed as YAML (repeatable)")
	return cmd
}

func applyRenderFlags(cfg *config.Config, flags renderFlags) {
	if flags.format != "" {
		cfg.Format = flags.format
	}
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if flags.layout != "" {
		cfg.Layout = flags.layout
	}
	if len(flags.templatePaths) > 0 {
		cfg.TemplatePaths = flags.templatePaths
	}
}

// parseSetFlags turns key=value pairs into options. Values are decoded as
// YAML so numbers, booleans and lists keep their type.
func parseSetFlags(pairs []string) (options.Options, error) {
	out := make(options.Options, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("invalid --set %q, expected key=value", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, errors.Wrapf(err, "invalid value for %s", key)
		}
		if value == nil {
			value = raw
		}
		out[key] = value
	}
	return out, nil
}

// loadRegistry loads every template path into one registry, or the built-in
// templates when there are none. The api methods are installed either way.
func loadRegistry(paths []string) (*render.Registry, error) {
	if len(paths) == 0 {
		registry, err := apidoc.NewRegistry()
		return registry, errors.Wrap(err, "failed loading built-in templates")
	}

	registry := render.NewRegistry()
	for _, dir := range paths {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid template path %s", dir)
		}
		if err := registry.LoadFS(filepath.ToSlash(abs), "", os.DirFS(abs)); err != nil {
			return nil, errors.Wrapf(err, "failed loading templates from %s", dir)
		}
	}
	apidoc.InstallMethods(registry)
	return registry, nil
}

func renderTemplate(cmd *cobra.Command, cfg *config.Config) (string, error) {
	ctx := cmd.Context()
	logger := zerolog.Ctx(ctx)

	format, err := cfg.RenderFormat()
	if err != nil {
		return "", err
	}
	caps, err := formats.For(format, formats.Settings{Theme: cfg.Theme.RendererConfig(), Width: cfg.Width})
	if err != nil {
		return "", err
	}
	registry, err := loadRegistry(cfg.TemplatePaths)
	if err != nil {
		return "", err
	}
	engineOpts := []gotemplate.Option{gotemplate.WithGlobalData(map[string]any{"generator": "docgen"})}
	for _, dir := range cfg.TemplatePaths {
		engineOpts = append(engineOpts, gotemplate.WithFS(os.DirFS(dir)))
	}
	engine, err := gotemplate.New(engineOpts...)
	if err != nil {
		return "", errors.Wrap(err, "failed creating template engine")
	}

	renderCfg := render.Config{
		Options:      cfg.Options,
		Format:       format,
		Capabilities: caps,
		Evaluator:    engine,
		Registry:     registry,
	}
	tmpl, err := registry.Instantiate(ctx, cfg.Template, renderCfg)
	if err != nil {
		return "", errors.Wrapf(err, "failed loading template %s", cfg.Template)
	}

	if cfg.Layout != "" {
		sections, err := loadLayout(cmd, tmpl, cfg.Layout, renderCfg)
		if err != nil {
			return "", err
		}
		if err := tmpl.SetSections(sections); err != nil {
			return "", errors.Wrap(err, "invalid layout")
		}
	}

	out, err := tmpl.Run(ctx, nil, nil)
	if err != nil {
		return "", errors.Wrapf(err, "failed rendering %s", cfg.Template)
	}
	logger.Info().
		Str("template", cfg.Template).
		Str("format", string(format)).
		Int("bytes", len(out)).
		Msg("rendered template")
	return out, nil
}

func loadLayout(cmd *cobra.Command, tmpl *render.Template, path string, cfg render.Config) (section.List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed reading layout %s", path)
	}
	layout, err := section.ParseLayout(path, data)
	if err != nil {
		return nil, err
	}
	sections, err := tmpl.Definition().Resolve(cmd.Context(), layout, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed resolving layout %s", path)
	}
	return sections, nil
}
