package apidoc

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-doctemplate/pkg/options"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/section"
)

const (
	// DocumentTemplate renders a whole document.
	DocumentTemplate = "api"
	// OperationTemplate renders one operation.
	OperationTemplate = "api/operation"
)

// InstallMethods attaches the Go backed sections to the api template tree in
// registry. Templates missing from the registry are skipped, so a custom tree
// may provide only some of them.
func InstallMethods(registry *render.Registry) {
	if def, err := registry.Get(DocumentTemplate); err == nil {
		def.HandleMethod("operations", renderOperations)
	}
	if def, err := registry.Get(OperationTemplate); err == nil {
		def.HandleMethod("deprecation", renderDeprecation)
	}
}

// renderOperations renders the api/operation template once per entry of the
// "operations" option, reusing one instance so leaf files are read once.
func renderOperations(ctx context.Context, t *render.Template, rc render.RenderContext, _ section.Continuation) (string, error) {
	raw, _ := rc.Option("operations")
	ops, _ := raw.([]map[string]any)
	if len(ops) == 0 {
		return "", nil
	}

	sub, err := t.Sub(ctx, OperationTemplate)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, op := range ops {
		text, err := sub.Run(ctx, options.Options{"operation": op}, nil)
		if err != nil {
			return "", fmt.Errorf("apidoc: render operation %v: %w", op["key"], err)
		}
		out.WriteString(text)
	}
	return out.String(), nil
}

func renderDeprecation(_ context.Context, t *render.Template, rc render.RenderContext, _ section.Continuation) (string, error) {
	raw, _ := rc.Option("operation")
	op, _ := raw.(map[string]any)
	if deprecated, _ := op["deprecated"].(bool); !deprecated {
		return "", nil
	}
	switch t.Format() {
	case render.FormatHTML:
		return "<p class=\"deprecated\">Deprecated</p>\n", nil
	case render.FormatMarkdown:
		return "> **Deprecated**\n\n", nil
	default:
		return "DEPRECATED\n\n", nil
	}
}
