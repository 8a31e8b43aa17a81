// Package options holds the key/value mapping visible to every section while a
// document renders, and the Scope type that merges, snapshots and restores it
// around nested render calls.
package options
