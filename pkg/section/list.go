package section

import (
	"errors"
	"fmt"
)

// List is an ordered sequence of entries. A nested List holds the
// subsections of the Ref immediately before it.
type List []Entry

func (List) entry() {}

// ErrOrphanGroup reports a nested list with no section before it to own it.
var ErrOrphanGroup = errors.New("section: nested list must follow a section")

// Subsections returns the group of subsections owned by the entry at cursor:
// the entry at cursor+1 when it is a nested List.
func Subsections(list List, cursor int) (List, bool) {
	next := cursor + 1
	if cursor < 0 || next >= len(list) {
		return nil, false
	}
	sub, ok := list[next].(List)
	if !ok {
		return nil, false
	}
	return sub, true
}

// Refs returns the top-level renderable entries with their indexes, skipping
// nested groups.
func (l List) Refs() []int {
	out := make([]int, 0, len(l))
	for i, entry := range l {
		if _, ok := entry.(Ref); ok {
			out = append(out, i)
		}
	}
	return out
}

// Validate checks that every nested list is owned by the section before it,
// recursively.
func (l List) Validate() error {
	for i, entry := range l {
		switch v := entry.(type) {
		case Ref:
		case List:
			if i == 0 {
				return ErrOrphanGroup
			}
			if _, prevIsGroup := l[i-1].(List); prevIsGroup {
				return fmt.Errorf("%w (position %d)", ErrOrphanGroup, i)
			}
			if err := v.Validate(); err != nil {
				return err
			}
		case nil:
			return fmt.Errorf("section: nil entry at position %d", i)
		default:
			return fmt.Errorf("section: unsupported entry %T at position %d", entry, i)
		}
	}
	return nil
}
