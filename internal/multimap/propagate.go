package multimap

import (
	"math/rand"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

// Notice is how likely a player at some point is to notice a fixture.
type Notice uint8

const (
	NoticeNever Notice = iota
	NoticeSometimes
	NoticeAlways
)

// Noticer decides what an observer at from would notice of f at p.
type Noticer interface {
	WouldNotice(from, p model.Point, f model.Fixture) Notice
}

type NoticerFunc func(from, p model.Point, f model.Fixture) Notice

func (fn NoticerFunc) WouldNotice(from, p model.Point, f model.Fixture) Notice { return fn(from, p, f) }

// PropagateTerrain copies what the main map knows about p into subordinate
// maps that know nothing about it yet. A subordinate whose terrain type is
// known and differs from the main map's is left alone entirely.
func (m *Manager) PropagateTerrain(p model.Point) bool {
	main := m.set.Main()
	terrain := main.BaseTerrain(p)
	changed := false
	for _, sub := range m.set.Subordinates() {
		own := sub.BaseTerrain(p)
		if own != model.TileUnknown && terrain != model.TileUnknown && own != terrain {
			continue
		}
		if propagateTile(main, sub, p) {
			m.touched(sub, "propagate_terrain", p, nil, terrain.String())
			changed = true
		}
	}
	return changed
}

func propagateTile(main, sub mapstore.Map, p model.Point) bool {
	changed := false
	if t := main.BaseTerrain(p); t != model.TileUnknown && sub.BaseTerrain(p) == model.TileUnknown {
		sub.SetBaseTerrain(p, t)
		changed = true
	}
	if rivers := main.Rivers(p); len(rivers) > 0 && len(sub.Rivers(p)) == 0 {
		sub.AddRivers(p, rivers...)
		changed = true
	}
	if roads := main.Roads(p); len(roads) > 0 && len(sub.Roads(p)) == 0 {
		for d, level := range roads {
			sub.SetRoadLevel(p, d, level)
		}
		changed = true
	}
	if main.Mountainous(p) && !sub.Mountainous(p) {
		sub.SetMountainous(p, true)
		changed = true
	}
	return changed
}

// PropagateNoticed copies into every subordinate map the main-map fixtures
// around ref that an observer at ref would notice. Every fixture the noticer
// always notices is copied; of those it only sometimes notices, one per
// neighbouring location is drawn from rng. The same draw applies to every
// subordinate. Copies are zeroed, and a subordinate already holding a fixture
// of the same variant and ID at that location is not given another.
func (m *Manager) PropagateNoticed(ref model.Point, noticer Noticer, rng *rand.Rand) bool {
	main := m.set.Main()
	changed := false
	for _, p := range main.Dimensions().Surrounding(ref, 1) {
		var noticed, maybe []model.Fixture
		for _, f := range main.Fixtures(p) {
			switch noticer.WouldNotice(ref, p, f) {
			case NoticeAlways:
				noticed = append(noticed, f)
			case NoticeSometimes:
				maybe = append(maybe, f)
			}
		}
		if len(maybe) > 0 {
			noticed = append(noticed, maybe[rng.Intn(len(maybe))])
		}
		for _, sub := range m.set.Subordinates() {
			for _, f := range noticed {
				if holdsFixture(sub, p, f) {
					continue
				}
				if o, ok := f.(model.HasOwner); ok {
					ensurePlayer(sub, o.Owner())
				}
				c := f.Copy(model.Zero)
				sub.AddFixture(p, c)
				m.touched(sub, "propagate_fixture", p, c, "")
				changed = true
			}
		}
	}
	return changed
}

func holdsFixture(mp mapstore.Map, p model.Point, f model.Fixture) bool {
	for _, x := range mp.Fixtures(p) {
		if x.Tag() == f.Tag() && x.ID() == f.ID() {
			return true
		}
	}
	return false
}
