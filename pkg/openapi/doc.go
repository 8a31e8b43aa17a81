// Package openapi defines the documentation source contracts: where an
// OpenAPI document comes from (Source, Loader) and the normalised view of it
// that documentation templates render (Parser, Spec, Operation).
// Implementations live under internal/openapi so kin-openapi stays out of the
// public API.
package openapi
