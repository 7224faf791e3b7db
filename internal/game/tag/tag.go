package tag

import "sort"

// Tag is an opaque gameplay marker, e.g. "state.stunned".
// Dots carry no hierarchy semantics; two tags match only when equal.
type Tag string

// Set is the per-entity tag collection.
//
// Membership is plain set semantics for Add/Remove. Grant/Revoke keep a
// reference count per tag so that two effects granting the same tag do not
// strip it from each other. A tag stays present while it was Added or holds
// at least one grant; Revoke never drops an Added tag, only Remove does.
//
// A nil *Set answers every query as an empty set and ignores mutation.
// Not safe for concurrent use.
type Set struct {
	tags   map[Tag]struct{}
	added  map[Tag]struct{}
	grants map[Tag]int
}

// NewSet creates a Set holding the given tags.
func NewSet(tags ...Tag) *Set {
	s := &Set{
		tags:   make(map[Tag]struct{}, len(tags)),
		added:  make(map[Tag]struct{}, len(tags)),
		grants: make(map[Tag]int),
	}
	s.AddAll(tags)
	return s
}

// Add inserts a tag. Adding a present tag is a no-op.
func (s *Set) Add(t Tag) {
	if s == nil {
		return
	}
	s.tags[t] = struct{}{}
	s.added[t] = struct{}{}
}

// AddAll inserts every tag.
func (s *Set) AddAll(tags []Tag) {
	for _, t := range tags {
		s.Add(t)
	}
}

// Remove deletes a tag together with any outstanding grants on it.
func (s *Set) Remove(t Tag) {
	if s == nil {
		return
	}
	delete(s.tags, t)
	delete(s.added, t)
	delete(s.grants, t)
}

// RemoveAll deletes every tag.
func (s *Set) RemoveAll(tags []Tag) {
	for _, t := range tags {
		s.Remove(t)
	}
}

// Clear drops all tags and grants.
func (s *Set) Clear() {
	if s == nil {
		return
	}
	clear(s.tags)
	clear(s.added)
	clear(s.grants)
}

// Grant adds tags on behalf of a timed source.
func (s *Set) Grant(tags []Tag) {
	if s == nil {
		return
	}
	for _, t := range tags {
		s.grants[t]++
		s.tags[t] = struct{}{}
	}
}

// Revoke releases one grant per tag. A tag disappears when its last grant is
// released unless it was also Added. Revoking a tag without grants is a no-op.
func (s *Set) Revoke(tags []Tag) {
	if s == nil {
		return
	}
	for _, t := range tags {
		n, ok := s.grants[t]
		if !ok {
			continue
		}
		if n > 1 {
			s.grants[t] = n - 1
			continue
		}
		delete(s.grants, t)
		if _, innate := s.added[t]; !innate {
			delete(s.tags, t)
		}
	}
}

// Has reports whether the tag is present.
func (s *Set) Has(t Tag) bool {
	if s == nil {
		return false
	}
	_, ok := s.tags[t]
	return ok
}

// HasAll reports whether every tag is present. True for an empty list.
func (s *Set) HasAll(tags []Tag) bool {
	for _, t := range tags {
		if !s.Has(t) {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one tag is present. False for an empty list.
func (s *Set) HasAny(tags []Tag) bool {
	for _, t := range tags {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct tags.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.tags)
}

// Tags returns a sorted copy of the present tags.
func (s *Set) Tags() []Tag {
	if s == nil {
		return nil
	}
	out := make([]Tag, 0, len(s.tags))
	for t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FromStrings converts raw identifiers to tags.
func FromStrings(ss []string) []Tag {
	if len(ss) == 0 {
		return nil
	}
	out := make([]Tag, len(ss))
	for i, s := range ss {
		out[i] = Tag(s)
	}
	return out
}

// Strings converts tags back to raw identifiers.
func Strings(tags []Tag) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
