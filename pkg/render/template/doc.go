// Package template defines the leaf template seam used by the section engine.
// Implementations live in subpackages; gotemplate provides the pongo2-backed
// default.
package template
