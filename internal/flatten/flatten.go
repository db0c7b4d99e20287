// Package flatten turns fixtures into flat sequences for searching.
//
// Two top-level modes exist and must stay distinct: WithContents yields a
// fortress and then its members (ownership scans), Contents yields only the
// members (unit searches, where the fortress itself is not a candidate).
// Neither expands units; UnitMembers and Deep do.
package flatten

import (
	"fmt"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

// Located is a fixture found while flattening a map. Container is the unit or
// fortress directly holding it, nil for top-level fixtures.
type Located struct {
	Point     model.Point
	Fixture   model.Fixture
	Container model.Fixture
}

func WithContents(f model.Fixture) []model.Fixture {
	if fort, ok := f.(*model.Fortress); ok {
		out := []model.Fixture{fort}
		for _, m := range fort.Members() {
			out = append(out, m)
		}
		return out
	}
	return []model.Fixture{f}
}

func Contents(f model.Fixture) []model.Fixture {
	if fort, ok := f.(*model.Fortress); ok {
		members := fort.Members()
		out := make([]model.Fixture, 0, len(members))
		for _, m := range members {
			out = append(out, m)
		}
		return out
	}
	return []model.Fixture{f}
}

func UnitMembers(u *model.Unit) []model.UnitMember {
	return u.Members()
}

// Members lists the direct contents of a container. Anything other than a
// unit or fortress is outside this function's domain and panics.
func Members(container model.Fixture) []model.Fixture {
	switch c := container.(type) {
	case *model.Unit:
		members := c.Members()
		out := make([]model.Fixture, 0, len(members))
		for _, m := range members {
			out = append(out, m)
		}
		return out
	case *model.Fortress:
		return Contents(c)
	default:
		panic(fmt.Sprintf("flatten: %s %d is not a container", container.Tag(), container.ID()))
	}
}

// Deep yields f and, recursively, everything held by the units and
// fortresses under it.
func Deep(p model.Point, f model.Fixture) []Located {
	return deep(p, f, nil, nil)
}

func deep(p model.Point, f, container model.Fixture, out []Located) []Located {
	out = append(out, Located{Point: p, Fixture: f, Container: container})
	if model.IsContainer(f) {
		for _, m := range Members(f) {
			out = deep(p, m, f, out)
		}
	}
	return out
}

// MapWithContents flattens every top-level fixture of m with WithContents.
func MapWithContents(m mapstore.Map) []Located {
	var out []Located
	for _, loc := range m.AllFixtures() {
		for _, f := range WithContents(loc.Fixture) {
			out = append(out, located(loc, f))
		}
	}
	return out
}

// MapContents flattens every top-level fixture of m with Contents.
func MapContents(m mapstore.Map) []Located {
	var out []Located
	for _, loc := range m.AllFixtures() {
		for _, f := range Contents(loc.Fixture) {
			out = append(out, located(loc, f))
		}
	}
	return out
}

// MapDeep flattens every fixture of m with Deep.
func MapDeep(m mapstore.Map) []Located {
	var out []Located
	for _, loc := range m.AllFixtures() {
		out = append(out, Deep(loc.Point, loc.Fixture)...)
	}
	return out
}

func located(loc mapstore.Located, f model.Fixture) Located {
	l := Located{Point: loc.Point, Fixture: f}
	if f != loc.Fixture {
		l.Container = loc.Fixture
	}
	return l
}
