package multimap

import (
	"mapsync.ai/internal/flatten"
	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/match"
	"mapsync.ai/internal/model"
	"mapsync.ai/internal/proxy"
)

// Item is anything an edit can target: a fixture, a unit handle or a member
// proxy.
type Item interface {
	ID() int
}

// matcher finds the copy of an item in one map.
type matcher func(mp mapstore.Map) (model.Fixture, model.Point, bool)

// matcherFor builds the per-map search for item using the key appropriate to
// its kind. The key is captured up front, so edits to earlier maps' copies do
// not change what later maps are searched for.
func matcherFor(item Item) matcher {
	switch v := item.(type) {
	case proxy.UnitHandle:
		key := unitKeyOf(v)
		return func(mp mapstore.Map) (model.Fixture, model.Point, bool) {
			u, loc, ok := match.FindUnit(mp, key)
			return u, loc.Point, ok
		}
	case *proxy.Member:
		rep := representative(v)
		if rep == nil {
			return nil
		}
		return matcherFor(rep)
	case *model.Worker:
		key := match.WorkerKeyOf(v)
		return func(mp mapstore.Map) (model.Fixture, model.Point, bool) {
			w, _, ok := match.FindWorker(mp, key)
			return w, model.InvalidPoint, ok
		}
	case *model.Fortress:
		key := match.FortressKeyOf(v)
		return func(mp mapstore.Map) (model.Fixture, model.Point, bool) {
			return match.FindFortress(mp, key)
		}
	case *model.ResourcePile:
		key := match.ResourceKeyOf(v)
		return func(mp mapstore.Map) (model.Fixture, model.Point, bool) {
			r, loc, ok := match.FindResource(mp, key)
			return r, loc.Point, ok
		}
	case model.Fixture:
		key := match.KindKeyOf(v)
		return func(mp mapstore.Map) (model.Fixture, model.Point, bool) {
			f, loc, ok := match.First(flatten.MapDeep(mp), func(f model.Fixture) bool { return key.Matches(f) })
			return f, loc.Point, ok
		}
	default:
		return nil
	}
}

// eachMatch runs fn on the copy of item in every map where one is found and
// fn accepts it. fn reports whether it changed anything.
func (m *Manager) eachMatch(item Item, op, detail string, fn func(mp mapstore.Map, f model.Fixture) bool) bool {
	find := matcherFor(item)
	if find == nil {
		return false
	}
	changed := false
	for _, mp := range m.maps() {
		f, p, ok := find(mp)
		if !ok || !fn(mp, f) {
			continue
		}
		m.touched(mp, op, p, f, detail)
		changed = true
	}
	return changed
}

// RenameItem renames every copy of item.
func (m *Manager) RenameItem(item Item, name string) bool {
	return m.eachMatch(item, "rename", name, func(_ mapstore.Map, f model.Fixture) bool {
		n, ok := f.(model.HasMutableName)
		if ok {
			n.SetName(name)
		}
		return ok
	})
}

// ChangeKind changes the kind of every copy of item. For workers the kind is
// the race.
func (m *Manager) ChangeKind(item Item, kind string) bool {
	return m.eachMatch(item, "change_kind", kind, func(_ mapstore.Map, f model.Fixture) bool {
		k, ok := f.(model.HasMutableKind)
		if ok {
			k.SetKind(kind)
		}
		return ok
	})
}

// ChangeOwner hands every copy of item to owner, registering the player in
// maps that do not know it yet.
func (m *Manager) ChangeOwner(item Item, owner model.Player) bool {
	return m.eachMatch(item, "change_owner", owner.Name, func(mp mapstore.Map, f model.Fixture) bool {
		o, ok := f.(model.HasMutableOwner)
		if !ok {
			return false
		}
		ensurePlayer(mp, owner)
		o.SetOwner(owner)
		return true
	})
}
