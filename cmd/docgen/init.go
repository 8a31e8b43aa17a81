package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-doctemplate/pkg/render"
)

type initFlags struct {
	dir   string
	yes   bool
	force bool
}

// scaffold is the answer set collected by init.
type scaffold struct {
	Name   string
	Format render.Format
	Config bool
}

func newInitCmd(a *app) *cobra.Command {
	var flags initFlags

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Scaffolds a template directory and a docgen.yaml.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answers := scaffold{Name: "doc", Format: render.Format(a.cfg.Format), Config: true}
			if len(args) == 1 {
				answers.Name = args[0]
			}
			if !flags.yes {
				var err error
				if answers, err = askScaffold(cmd, a.prompter, answers); err != nil {
					return err
				}
			}
			return writeScaffold(cmd, flags, answers)
		},
	}
	cmd.Flags().StringVar(&flags.dir, "dir", ".", "directory to scaffold into")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "accept the defaults without prompting")
	cmd.Flags().BoolVar(&flags.force, "force", false, "overwrite existing files")
	return cmd
}

func askScaffold(cmd *cobra.Command, p Prompter, def scaffold) (scaffold, error) {
	ctx := cmd.Context()
	out := def

	name, err := p.Input(ctx, "Template name", def.Name)
	if err != nil {
		return out, err
	}
	out.Name = strings.Trim(strings.TrimSpace(name), "/")

	names := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		names = append(names, string(f))
	}
	format, err := p.Select(ctx, "Output format", names, string(def.Format))
	if err != nil {
		return out, err
	}
	out.Format = render.Format(format)

	if out.Config, err = p.Confirm(ctx, "Write docgen.yaml?", def.Config); err != nil {
		return out, err
	}
	return out, nil
}

func writeScaffold(cmd *cobra.Command, flags initFlags, s scaffold) error {
	if s.Name == "" {
		return errors.New("template name is required")
	}
	if _, err := render.ParseFormat(string(s.Format)); err != nil {
		return errors.Wrap(err, "invalid format")
	}

	files := scaffoldFiles(s)
	for _, name := range sortedKeys(files) {
		path := filepath.Join(flags.dir, filepath.FromSlash(name))
		if !flags.force {
			if _, err := os.Stat(path); err == nil {
				return errors.Errorf("%s already exists, use --force to overwrite", path)
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrapf(err, "failed creating directory for %s", path)
		}
		if err := atomic.WriteFile(path, bytes.NewReader(files[name])); err != nil {
			return errors.Wrapf(err, "failed writing %s", path)
		}
		zerolog.Ctx(cmd.Context()).Info().Str("file", path).Msg("scaffolded")
	}
	return nil
}

// scaffoldFiles returns the files init writes keyed by slash separated path
// relative to the target directory.
func scaffoldFiles(s scaffold) map[string][]byte {
	ext := "." + string(s.Format) + ".tpl"
	base := "templates/" + s.Name + "/"

	files := map[string][]byte{
		base + "layout.yaml": []byte("sections:\n  - page\n  - - title\n    - body\n"),
		base + "page" + ext:  []byte(pageLeaf(s.Format)),
		base + "title" + ext: []byte(titleLeaf(s.Format)),
		base + "body" + ext:  []byte("{{ body }}\n"),
	}

	if s.Config {
		files["docgen.yaml"] = scaffoldConfig(s)
	}
	return files
}

// scaffoldConfig renders a docgen.yaml holding only the keys init sets.
func scaffoldConfig(s scaffold) []byte {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	// Encoding plain maps and strings cannot fail.
	_ = enc.Encode(map[string]any{
		"format":         string(s.Format),
		"template":       s.Name,
		"template_paths": []string{"templates"},
		"options": map[string]any{
			"title": s.Name,
			"body":  "Hello from docgen.",
		},
	})
	_ = enc.Close()
	return buf.Bytes()
}

func pageLeaf(f render.Format) string {
	if f == render.FormatHTML {
		return "<article>\n{{ yieldall() }}</article>\n"
	}
	return "{{ yieldall() }}"
}

func titleLeaf(f render.Format) string {
	if f == render.FormatHTML {
		return "<h1>{{ title }}</h1>\n"
	}
	return "{{ heading(1, title) }}\n"
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
