package multimap

import (
	"fmt"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

// The helpers below edit a fixture where it lives: loose at p when container
// is nil, otherwise inside the unit or fortress holding it. Any other holder,
// or a fixture its holder cannot take, is a programming error and panics.

func detach(mp mapstore.Map, p model.Point, container, f model.Fixture) {
	switch c := container.(type) {
	case nil:
		mp.RemoveFixture(p, f)
	case *model.Unit:
		c.RemoveMember(asUnitMember(f))
	case *model.Fortress:
		c.RemoveMember(asFortressMember(f))
	default:
		panic(fmt.Sprintf("multimap: %s %d cannot hold fixtures", c.Tag(), c.ID()))
	}
}

func attach(mp mapstore.Map, p model.Point, container, f model.Fixture) {
	switch c := container.(type) {
	case nil:
		mp.AddFixture(p, f)
	case *model.Unit:
		c.AddMember(asUnitMember(f))
	case *model.Fortress:
		c.AddMember(asFortressMember(f))
	default:
		panic(fmt.Sprintf("multimap: %s %d cannot hold fixtures", c.Tag(), c.ID()))
	}
}

func replace(mp mapstore.Map, p model.Point, container, old, repl model.Fixture) {
	switch c := container.(type) {
	case nil:
		mp.ReplaceFixture(p, old, repl)
	case *model.Unit:
		c.ReplaceMember(asUnitMember(old), asUnitMember(repl))
	case *model.Fortress:
		c.ReplaceMember(asFortressMember(old), asFortressMember(repl))
	default:
		panic(fmt.Sprintf("multimap: %s %d cannot hold fixtures", c.Tag(), c.ID()))
	}
}

func asUnitMember(f model.Fixture) model.UnitMember {
	m, ok := f.(model.UnitMember)
	if !ok {
		panic(fmt.Sprintf("multimap: %s %d is not a unit member", f.Tag(), f.ID()))
	}
	return m
}

func asFortressMember(f model.Fixture) model.FortressMember {
	m, ok := f.(model.FortressMember)
	if !ok {
		panic(fmt.Sprintf("multimap: %s %d is not a fortress member", f.Tag(), f.ID()))
	}
	return m
}

// containerLabel describes where a fixture lives, for journals and proposals.
func containerLabel(container model.Fixture) string {
	switch c := container.(type) {
	case nil:
		return "tile"
	case model.HasName:
		return fmt.Sprintf("%s %q", c.Tag(), c.Name())
	default:
		return c.Tag().String()
	}
}
