// Package render is the section rendering engine.
//
// A Definition describes a template type: where its files live, which
// templates it includes, the methods it provides and its default section
// layout. Instantiating a Definition yields a Template, which walks a
// section.List in order and renders each entry: methods run Go code, file
// sections evaluate a leaf template loaded through a ContentCache, literals
// are copied and composables run their own sections.
//
// Producers never render their subsections implicitly. They receive a
// section.Continuation and call it once per subsection they want included,
// which re-enters the engine through YieldNext. Position and options travel in
// an immutable RenderContext, so a nested render can never disturb the
// iteration of the caller that triggered it.
package render
