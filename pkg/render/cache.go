package render

import "fmt"

// Lookup resolves a basename to a file on a template's search paths.
type Lookup func(basename string) (File, bool)

type cacheEntry struct {
	source string
	origin File
}

// ContentCache loads leaf template sources once per section name and keeps
// them for the lifetime of the owning template instance.
type ContentCache struct {
	owner    string
	filename func(sectionName string) string
	entries  map[string]cacheEntry
}

// NewContentCache builds an empty cache. Owner names the template in lookup
// errors; filename derives the file to look up from a section name.
func NewContentCache(owner string, filename func(sectionName string) string) *ContentCache {
	if filename == nil {
		filename = func(name string) string { return name }
	}
	return &ContentCache{
		owner:    owner,
		filename: filename,
		entries:  make(map[string]cacheEntry),
	}
}

// Get returns the source for key, calling lookup only on the first request.
func (c *ContentCache) Get(key string, lookup Lookup) (string, error) {
	if entry, ok := c.entries[key]; ok {
		return entry.source, nil
	}

	basename := c.filename(key)
	if lookup == nil {
		return "", &LookupError{Name: basename, Template: c.owner}
	}
	file, ok := lookup(basename)
	if !ok {
		return "", &LookupError{Name: basename, Template: c.owner}
	}

	data, err := file.Read()
	if err != nil {
		return "", fmt.Errorf("render: read %s: %w", file.Path(), err)
	}

	source := string(data)
	c.entries[key] = cacheEntry{source: source, origin: file}
	return source, nil
}

// Origin returns the file a cached key was loaded from.
func (c *ContentCache) Origin(key string) (File, bool) {
	entry, ok := c.entries[key]
	return entry.origin, ok
}

// Len reports how many sections are cached.
func (c *ContentCache) Len() int {
	return len(c.entries)
}
