package render

import "fmt"

// LookupError reports a file (leaf template or resource) missing from every
// search path of a template, or a template path missing from a Registry.
type LookupError struct {
	Name     string
	Template string
}

func (e *LookupError) Error() string {
	if e.Template == "" {
		return fmt.Sprintf("render: no file for %q", e.Name)
	}
	return fmt.Sprintf("render: no file for %q in %s", e.Name, e.Template)
}

// StructureError reports a subsection request that the section tree cannot
// satisfy.
type StructureError struct {
	Section string
	Reason  string
}

func (e *StructureError) Error() string {
	if e.Section == "" {
		return "render: " + e.Reason
	}
	return fmt.Sprintf("render: section %q: %s", e.Section, e.Reason)
}

// ConfigurationError reports a malformed or missing configuration value.
type ConfigurationError struct {
	Key    string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("render: invalid configuration %q: %s", e.Key, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func errNoSubsections(sectionName string) error {
	return &StructureError{Section: sectionName, Reason: "no subsections"}
}
