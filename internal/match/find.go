package match

import (
	"mapsync.ai/internal/flatten"
	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

// First returns the first fixture of type T in scope satisfying pred.
func First[T model.Fixture](scope []flatten.Located, pred func(T) bool) (T, flatten.Located, bool) {
	for _, loc := range scope {
		v, ok := loc.Fixture.(T)
		if ok && pred(v) {
			return v, loc, true
		}
	}
	var zero T
	return zero, flatten.Located{}, false
}

// At is the scope of the top-level fixtures at p.
func At(m mapstore.Map, p model.Point) []flatten.Located {
	fixtures := m.Fixtures(p)
	out := make([]flatten.Located, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, flatten.Located{Point: p, Fixture: f})
	}
	return out
}

// OwnedBy narrows scope to fixtures owned by the player with ownerID.
// Fixtures without an owner are dropped.
func OwnedBy(scope []flatten.Located, ownerID int) []flatten.Located {
	var out []flatten.Located
	for _, loc := range scope {
		if o, ok := loc.Fixture.(model.HasOwner); ok && o.Owner().ID == ownerID {
			out = append(out, loc)
		}
	}
	return out
}

func FindUnit(m mapstore.Map, key UnitKey) (*model.Unit, flatten.Located, bool) {
	return First(flatten.MapContents(m), key.Matches)
}

// FindUnitByOwner matches a unit on owner and ID alone.
func FindUnitByOwner(m mapstore.Map, ownerID, id int) (*model.Unit, flatten.Located, bool) {
	return First(flatten.MapContents(m), func(u *model.Unit) bool {
		return u.Owner().ID == ownerID && u.ID() == id
	})
}

// FindWorker searches the members of every unit in m; the unit holding the
// match is returned with it.
func FindWorker(m mapstore.Map, key WorkerKey) (*model.Worker, *model.Unit, bool) {
	for _, loc := range flatten.MapContents(m) {
		u, ok := loc.Fixture.(*model.Unit)
		if !ok {
			continue
		}
		for _, member := range flatten.UnitMembers(u) {
			if w, ok := member.(*model.Worker); ok && key.Matches(w) {
				return w, u, true
			}
		}
	}
	return nil, nil, false
}

func FindFortress(m mapstore.Map, key FortressKey) (*model.Fortress, model.Point, bool) {
	f, loc, ok := First(flatten.MapWithContents(m), key.Matches)
	return f, loc.Point, ok
}

// FindContainer finds the unit or fortress matching key anywhere in m.
func FindContainer(m mapstore.Map, key ContainerKey) (model.Fixture, model.Point, bool) {
	f, loc, ok := First(flatten.MapWithContents(m), key.Matches)
	return f, loc.Point, ok
}

// FindResource searches every level of m, so piles held by units inside
// fortresses are found too. loc.Container is the holder, nil if top-level.
func FindResource(m mapstore.Map, key ResourceKey) (*model.ResourcePile, flatten.Located, bool) {
	return First(flatten.MapDeep(m), key.Matches)
}

// FindMember finds a unit member by variant and ID in any unit of m. Members
// equal in value to want are preferred over ones that only share the ID.
func FindMember(m mapstore.Map, want model.Fixture) (model.UnitMember, *model.Unit, bool) {
	var (
		fallback     model.UnitMember
		fallbackUnit *model.Unit
	)
	key := FixtureKeyOf(want)
	for _, loc := range flatten.MapContents(m) {
		u, ok := loc.Fixture.(*model.Unit)
		if !ok {
			continue
		}
		for _, member := range flatten.UnitMembers(u) {
			if !key.Matches(member) {
				continue
			}
			if model.Equal(member, want) {
				return member, u, true
			}
			if fallback == nil {
				fallback, fallbackUnit = member, u
			}
		}
	}
	return fallback, fallbackUnit, fallback != nil
}
