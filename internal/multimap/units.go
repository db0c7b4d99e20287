package multimap

import (
	"fmt"
	"sort"

	"mapsync.ai/internal/flatten"
	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/match"
	"mapsync.ai/internal/model"
	"mapsync.ai/internal/proxy"
)

// Units returns the player's units. With no subordinate maps these are the
// main map's own units, in map order; otherwise one proxy per unit ID present
// in any map, sorted by name.
func (m *Manager) Units(player model.Player) []proxy.UnitHandle {
	if !m.set.HasSubordinates() {
		units := unitsOwnedBy(m.set.Main(), player.ID)
		out := make([]proxy.UnitHandle, len(units))
		for i, u := range units {
			out[i] = u
		}
		return out
	}
	var perMap []proxy.MapUnits
	for _, mp := range m.maps() {
		perMap = append(perMap, proxy.MapUnits{Map: mp, Units: unitsOwnedBy(mp, player.ID)})
	}
	proxies := proxy.BuildUnitProxies(perMap)
	out := make([]proxy.UnitHandle, len(proxies))
	for i, p := range proxies {
		out[i] = p
	}
	return out
}

// Unit returns the player's unit with the given ID, or nil.
func (m *Manager) Unit(player model.Player, id int) proxy.UnitHandle {
	for _, u := range m.Units(player) {
		if u.ID() == id {
			return u
		}
	}
	return nil
}

// UnitKinds lists the distinct kinds of the player's units, sorted.
func (m *Manager) UnitKinds(player model.Player) []string {
	seen := map[string]bool{}
	var out []string
	for _, u := range m.Units(player) {
		if !seen[u.Kind()] {
			seen[u.Kind()] = true
			out = append(out, u.Kind())
		}
	}
	sort.Strings(out)
	return out
}

// Fortresses lists the player's fortresses in the main map.
func (m *Manager) Fortresses(player model.Player) []*model.Fortress {
	var out []*model.Fortress
	for _, loc := range flatten.MapWithContents(m.set.Main()) {
		if f, ok := loc.Fixture.(*model.Fortress); ok && f.Owner().ID == player.ID {
			out = append(out, f)
		}
	}
	return out
}

// unitsOwnedBy lists the owner's units in mp, keeping the first of any
// repeated ID.
func unitsOwnedBy(mp mapstore.Map, ownerID int) []*model.Unit {
	seen := map[int]bool{}
	var out []*model.Unit
	for _, loc := range flatten.MapContents(mp) {
		u, ok := loc.Fixture.(*model.Unit)
		if !ok || u.Owner().ID != ownerID || seen[u.ID()] {
			continue
		}
		seen[u.ID()] = true
		out = append(out, u)
	}
	return out
}

func unitKeyOf(h proxy.UnitHandle) match.UnitKey {
	return match.UnitKey{OwnerID: h.Owner().ID, Kind: h.Kind(), Name: h.Name(), ID: h.ID()}
}

// shareOnce hands out f the first time and fresh copies after that, so no
// fixture object ends up in two maps.
func shareOnce[T model.Fixture](f T) func() T {
	used := false
	return func() T {
		if !used {
			used = true
			return f
		}
		return f.Copy(model.KeepAll).(T)
	}
}

// AddUnit places unit in every map at the location of one of its owner's
// fortresses in the main map: the one named HQ if any, else the first found.
// A player with no fortress gets nothing added.
func (m *Manager) AddUnit(unit *model.Unit) bool {
	owner := unit.Owner()
	var (
		hq, first     *model.Fortress
		hqAt, firstAt model.Point
	)
	for _, loc := range flatten.MapWithContents(m.set.Main()) {
		f, ok := loc.Fixture.(*model.Fortress)
		if !ok || f.Owner().ID != owner.ID {
			continue
		}
		if f.Name() == m.hqName {
			hq, hqAt = f, loc.Point
			break
		}
		if first == nil {
			first, firstAt = f, loc.Point
		}
	}
	switch {
	case hq != nil:
		return m.AddUnitAt(unit, hqAt)
	case first != nil:
		m.log.Printf("warning: %s has no fortress named %q; adding unit %q to %q at %v",
			owner, m.hqName, unit.Name(), first.Name(), firstAt)
		return m.AddUnitAt(unit, firstAt)
	case !owner.Independent():
		m.log.Printf("warning: %s has no fortress; unit %q not added", owner, unit.Name())
	}
	return false
}

// AddUnitAt adds unit at p in every map, inside a fortress of the same owner
// at p when the map has one, loose otherwise.
func (m *Manager) AddUnitAt(unit *model.Unit, p model.Point) bool {
	next := shareOnce(unit)
	for _, mp := range m.maps() {
		u := next()
		ensurePlayer(mp, unit.Owner())
		if fort := ownedFortressAt(mp, p, unit.Owner().ID); fort != nil {
			fort.AddMember(u)
			m.touched(mp, "add_unit", p, u, "fortress "+fort.Name())
			continue
		}
		mp.AddFixture(p, u)
		m.touched(mp, "add_unit", p, u, "")
	}
	return true
}

func ownedFortressAt(mp mapstore.Map, p model.Point, ownerID int) *model.Fortress {
	for _, f := range mp.Fixtures(p) {
		if fort, ok := f.(*model.Fortress); ok && fort.Owner().ID == ownerID {
			return fort
		}
	}
	return nil
}

// RemoveUnit removes the unit from every map holding it, or from none. Every
// map's copy (matched on owner and ID) must be empty and have the requested
// kind and name; a single failing copy aborts the whole operation before any
// map is changed.
func (m *Manager) RemoveUnit(unit proxy.UnitHandle) bool {
	type removal struct {
		mp   mapstore.Map
		unit *model.Unit
		loc  flatten.Located
	}
	var plan []removal
	for _, mp := range m.maps() {
		u, loc, ok := match.FindUnitByOwner(mp, unit.Owner().ID, unit.ID())
		if !ok {
			continue
		}
		if !u.Empty() {
			m.log.Printf("warning: %s: unit %d (%s) is not empty; not removing from any map", mp.Filename(), u.ID(), u.Name())
			return false
		}
		if u.Kind() != unit.Kind() || u.Name() != unit.Name() {
			m.log.Printf("warning: %s: unit %d is %q (%s), expected %q (%s); not removing from any map",
				mp.Filename(), u.ID(), u.Name(), u.Kind(), unit.Name(), unit.Kind())
			return false
		}
		plan = append(plan, removal{mp: mp, unit: u, loc: loc})
	}
	for _, r := range plan {
		switch c := r.loc.Container.(type) {
		case nil:
			r.mp.RemoveFixture(r.loc.Point, r.unit)
		case *model.Fortress:
			c.RemoveMember(r.unit)
		default:
			panic(fmt.Sprintf("multimap: unit %d held by %s", r.unit.ID(), c.Tag()))
		}
		m.touched(r.mp, "remove_unit", r.loc.Point, r.unit, "")
	}
	return len(plan) > 0
}

// MoveMember moves member from one unit to another in every map. Proxies of
// equal cardinality are moved position by position; anything else falls
// back to matching the units and the member in each map separately.
func (m *Manager) MoveMember(member proxy.MemberHandle, from, to proxy.UnitHandle) bool {
	pm, isProxy := member.(*proxy.Member)
	if isProxy {
		pf, okFrom := from.(*proxy.Unit)
		pt, okTo := to.(*proxy.Unit)
		if okFrom && okTo && proxy.MoveLockStep(pm, pf, pt) {
			for _, r := range pm.Refs() {
				m.touched(r.Map, "move_member", model.InvalidPoint, r.Item, fmt.Sprintf("unit %d -> %d", from.ID(), to.ID()))
			}
			return true
		}
	}
	want := representative(member)
	if want == nil {
		return false
	}
	fromKey, toKey := unitKeyOf(from), unitKeyOf(to)
	changed := false
	for _, mp := range m.maps() {
		old, oldLoc, ok := match.FindUnit(mp, fromKey)
		if !ok {
			continue
		}
		dest, _, ok := match.FindUnit(mp, toKey)
		if !ok {
			continue
		}
		mem := memberOf(old, want)
		if mem == nil {
			continue
		}
		old.RemoveMember(mem)
		dest.AddMember(mem)
		m.touched(mp, "move_member", oldLoc.Point, mem, fmt.Sprintf("unit %d -> %d", from.ID(), to.ID()))
		changed = true
	}
	return changed
}

// representative is the fixture a member handle stands for.
func representative(h proxy.MemberHandle) model.Fixture {
	switch v := h.(type) {
	case *proxy.Member:
		if items := v.Proxied(); len(items) > 0 {
			return items[0]
		}
		return nil
	case model.Fixture:
		return v
	default:
		return nil
	}
}

// memberOf finds want among u's members, preferring an equal value over one
// that only shares variant and ID.
func memberOf(u *model.Unit, want model.Fixture) model.UnitMember {
	key := match.FixtureKeyOf(want)
	var fallback model.UnitMember
	for _, mem := range u.Members() {
		if !key.Matches(mem) {
			continue
		}
		if model.Equal(mem, want) {
			return mem
		}
		if fallback == nil {
			fallback = mem
		}
	}
	return fallback
}

// DismissMember removes member from whichever unit holds it in every map.
func (m *Manager) DismissMember(member proxy.MemberHandle) bool {
	want := representative(member)
	if want == nil {
		return false
	}
	changed := false
	for _, mp := range m.maps() {
		mem, u, ok := match.FindMember(mp, want)
		if !ok {
			continue
		}
		u.RemoveMember(mem)
		m.touched(mp, "dismiss_member", model.InvalidPoint, mem, fmt.Sprintf("from unit %d", u.ID()))
		changed = true
	}
	return changed
}

// AddSibling adds sibling to the unit holding base, in every map where base
// is found.
func (m *Manager) AddSibling(base proxy.MemberHandle, sibling model.UnitMember) bool {
	want := representative(base)
	if want == nil {
		return false
	}
	next := shareOnce(sibling)
	changed := false
	for _, mp := range m.maps() {
		_, u, ok := match.FindMember(mp, want)
		if !ok {
			continue
		}
		s := next()
		u.AddMember(s)
		m.touched(mp, "add_sibling", model.InvalidPoint, s, fmt.Sprintf("unit %d", u.ID()))
		changed = true
	}
	return changed
}

func (m *Manager) SetOrders(unit proxy.UnitHandle, turn int, orders string) bool {
	return m.eachUnit(unit, "set_orders", func(u *model.Unit) { u.SetOrders(turn, orders) })
}

func (m *Manager) SetResults(unit proxy.UnitHandle, turn int, results string) bool {
	return m.eachUnit(unit, "set_results", func(u *model.Unit) { u.SetResults(turn, results) })
}

// SortFixtureContents orders the unit's members in every map: workers, then
// animals, implements and resources, each by name or kind, then ID.
func (m *Manager) SortFixtureContents(unit proxy.UnitHandle) bool {
	return m.eachUnit(unit, "sort_contents", func(u *model.Unit) { u.SortMembers(memberLess) })
}

// eachUnit applies fn to the unit's match in every map.
func (m *Manager) eachUnit(unit proxy.UnitHandle, op string, fn func(*model.Unit)) bool {
	key := unitKeyOf(unit)
	changed := false
	for _, mp := range m.maps() {
		u, loc, ok := match.FindUnit(mp, key)
		if !ok {
			continue
		}
		fn(u)
		m.touched(mp, op, loc.Point, u, "")
		changed = true
	}
	return changed
}

var memberOrder = map[model.Tag]int{
	model.TagWorker:       0,
	model.TagAnimal:       1,
	model.TagImplement:    2,
	model.TagResourcePile: 3,
}

func memberLess(a, b model.UnitMember) bool {
	if oa, ob := memberOrder[a.Tag()], memberOrder[b.Tag()]; oa != ob {
		return oa < ob
	}
	if la, lb := memberLabel(a), memberLabel(b); la != lb {
		return la < lb
	}
	return a.ID() < b.ID()
}

func memberLabel(f model.Fixture) string {
	if n, ok := f.(model.HasName); ok {
		return n.Name()
	}
	if k, ok := f.(model.HasKind); ok {
		return k.Kind()
	}
	return ""
}
