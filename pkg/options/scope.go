package options

// Projector receives the mapping each time a Scope installs a new one. The
// renderer uses it to refresh the bindings leaf templates read from.
type Projector func(Options)

// Scope owns the current Options of a template instance.
//
// Merges either persist (Merge) or last for the duration of a body
// (WithMerged). Scoped merges restore the previous mapping on every exit path,
// including a panic unwinding through the body.
type Scope struct {
	current Options
	project Projector
}

// NewScope returns a Scope seeded with a copy of initial.
func NewScope(initial Options, project Projector) *Scope {
	s := &Scope{project: project}
	s.install(initial.Clone())
	return s
}

// Current returns a copy of the installed mapping.
func (s *Scope) Current() Options {
	if s == nil {
		return Options{}
	}
	out := s.current.Clone()
	if out == nil {
		out = Options{}
	}
	return out
}

// Merge overlays opts onto the current mapping and keeps the result. A nil
// opts leaves the mapping untouched.
func (s *Scope) Merge(opts Options) {
	if opts == nil {
		return
	}
	s.install(s.current.Merge(opts))
}

// WithMerged runs body with opts merged into the current mapping, then puts
// the previous mapping back. With nil opts the body runs against the current
// mapping unchanged. With a nil body the merge persists, same as Merge.
func (s *Scope) WithMerged(opts Options, body func(Options) error) error {
	if opts == nil {
		if body == nil {
			return nil
		}
		return body(s.Current())
	}
	if body == nil {
		s.Merge(opts)
		return nil
	}

	snapshot := s.current
	defer s.install(snapshot)

	s.install(s.current.Merge(opts))
	return body(s.Current())
}

func (s *Scope) install(opts Options) {
	s.current = opts
	if s.project != nil {
		s.project(s.Current())
	}
}
