package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// Registry stores template definitions by path, providing discovery and
// duplication safeguards.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		definitions: make(map[string]*Definition),
	}
}

// Register adds a definition by its Path. Duplicate paths return an error.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return fmt.Errorf("render: definition is required")
	}
	name := strings.Trim(def.Path, "/")
	if name == "" {
		return fmt.Errorf("render: definition path is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[name]; exists {
		return fmt.Errorf("render: template %q already registered", name)
	}

	r.definitions[name] = def
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(def *Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Get retrieves a definition by path.
func (r *Registry) Get(name string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[strings.Trim(name, "/")]
	if !ok {
		return nil, &LookupError{Name: name, Template: "registry"}
	}
	return def, nil
}

// MustGet panics if the definition is missing.
func (r *Registry) MustGet(name string) *Definition {
	def, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return def
}

// List returns a sorted list of registered paths.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a definition is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.definitions[strings.Trim(name, "/")]
	return ok
}

// Instantiate resolves name and builds an instance with cfg. The registry is
// attached to cfg when cfg has none.
func (r *Registry) Instantiate(ctx context.Context, name string, cfg Config) (*Template, error) {
	def, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if cfg.Registry == nil {
		cfg.Registry = r
	}
	return def.Instantiate(ctx, cfg)
}

// LoadFS registers a definition for every directory of fsys that holds a
// LayoutFile. Each definition includes the definition of its closest
// ancestor directory, so leaf files and methods are inherited down the tree.
// Paths are prefixed with prefix (which may be empty). Root names are
// qualified with label to keep search paths from different bundles distinct.
// A LayoutFile at the root of fsys is registered as prefix, or as the last
// element of label when prefix is empty.
func (r *Registry) LoadFS(label, prefix string, fsys fs.FS) error {
	if fsys == nil {
		return errors.New("render: template filesystem is required")
	}

	var dirs []string
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || entry.Name() != LayoutFile {
			return nil
		}
		dirs = append(dirs, path.Dir(p))
		return nil
	})
	if err != nil {
		return fmt.Errorf("render: walk templates %s: %w", label, err)
	}
	// Parents sort before their children.
	sort.Strings(dirs)

	loaded := make(map[string]*Definition, len(dirs))
	for _, dir := range dirs {
		sub, err := fs.Sub(fsys, dir)
		if err != nil {
			return fmt.Errorf("render: open %s/%s: %w", label, dir, err)
		}

		var includes []PathProvider
		if parent := closestLoaded(loaded, dir); parent != nil {
			includes = append(includes, parent)
		}

		name := path.Join(prefix, dir)
		if dir == "." {
			name = prefix
			if name == "" {
				name = path.Base(path.Clean(label))
			}
		}
		root := FSPath(path.Join(label, dir), sub)
		def, err := LoadDefinition(name, root, includes...)
		if err != nil {
			return err
		}
		if err := r.Register(def); err != nil {
			return err
		}
		loaded[dir] = def
	}
	return nil
}

func closestLoaded(loaded map[string]*Definition, dir string) *Definition {
	for dir != "." && dir != "/" && dir != "" {
		dir = path.Dir(dir)
		if def, ok := loaded[dir]; ok {
			return def
		}
	}
	return nil
}
