// Package proxy aggregates the per-map copies of one logical entity so a
// single edit reaches every copy.
//
// Proxies are values rebuilt from a fresh query every time; they hold handles
// into the maps but never outlive the query that produced them.
package proxy

import (
	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

// Ref is one copy of a proxied entity and the map holding it.
type Ref[T any] struct {
	Map  mapstore.Map
	Item T
}

// For aggregates one copy of T per map, in map-visit order.
type For[T model.Fixture] struct {
	refs []Ref[T]
}

func (p *For[T]) Add(m mapstore.Map, item T) {
	p.refs = append(p.refs, Ref[T]{Map: m, Item: item})
}

func (p *For[T]) Refs() []Ref[T] {
	out := make([]Ref[T], len(p.refs))
	copy(out, p.refs)
	return out
}

func (p *For[T]) Proxied() []T {
	out := make([]T, len(p.refs))
	for i, r := range p.refs {
		out[i] = r.Item
	}
	return out
}

func (p *For[T]) Len() int { return len(p.refs) }

// first is the copy reads are served from.
func (p *For[T]) first() (T, bool) {
	if len(p.refs) == 0 {
		var zero T
		return zero, false
	}
	return p.refs[0].Item, true
}

// each applies fn to every copy and marks its map modified.
func (p *For[T]) each(fn func(T)) {
	for _, r := range p.refs {
		fn(r.Item)
		r.Map.SetModified(true)
	}
}

// MemberHandle is a unit member, either a plain fixture or a *Member proxy.
type MemberHandle interface {
	ID() int
	Tag() model.Tag
}

// Member aggregates the copies of one unit member (same variant and ID).
type Member struct {
	For[model.UnitMember]
	tag model.Tag
	id  int
}

func (m *Member) ID() int        { return m.id }
func (m *Member) Tag() model.Tag { return m.tag }

// Name is the first copy's name, or "" for members without one.
func (m *Member) Name() string {
	f, ok := m.first()
	if !ok {
		return ""
	}
	if n, ok := f.(model.HasName); ok {
		return n.Name()
	}
	return ""
}
