// Package section describes the ordered, nested section lists that make up a
// document template.
//
// A List holds Entries. An Entry is either a Ref (something that renders) or
// a nested List, which is the group of subsections belonging to the Ref right
// before it. Nested lists are never rendered on their own; the owning
// section's producer pulls them in one at a time through a Continuation.
package section
