package render

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SearchPath is a named root that template files are looked up in. Name
// identifies the root for deduplication and error messages.
type SearchPath struct {
	Name string
	FS   fs.FS
}

// DirPath returns a SearchPath over a directory on disk.
func DirPath(dir string) SearchPath {
	clean := filepath.Clean(dir)
	return SearchPath{Name: clean, FS: os.DirFS(clean)}
}

// FSPath returns a SearchPath over an fs.FS, such as an embedded template
// bundle.
func FSPath(name string, fsys fs.FS) SearchPath {
	return SearchPath{Name: name, FS: fsys}
}

// Valid reports whether the path can be searched.
func (p SearchPath) Valid() bool {
	return p.Name != "" && p.FS != nil
}

// File is a file found on a SearchPath.
type File struct {
	Root SearchPath
	Name string
}

// Path returns the root-qualified location, for messages.
func (f File) Path() string {
	if f.Root.Name == "" {
		return f.Name
	}
	return path.Join(filepath.ToSlash(f.Root.Name), f.Name)
}

// Read returns the file contents.
func (f File) Read() ([]byte, error) {
	return fs.ReadFile(f.Root.FS, f.Name)
}

func (p SearchPath) locate(basename string) (File, bool) {
	if !p.Valid() {
		return File{}, false
	}
	name := strings.TrimPrefix(path.Clean(filepath.ToSlash(basename)), "/")
	if !fs.ValidPath(name) {
		return File{}, false
	}
	info, err := fs.Stat(p.FS, name)
	if err != nil || !info.Mode().IsRegular() {
		return File{}, false
	}
	return File{Root: p, Name: name}, true
}
