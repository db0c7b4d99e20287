package proxy

import (
	"sort"

	"golang.org/x/text/cases"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/match"
	"mapsync.ai/internal/model"
)

// UnitHandle is what unit queries return: a *model.Unit when the map set has
// a single map, a *Unit proxy otherwise.
type UnitHandle interface {
	ID() int
	Owner() model.Player
	Kind() string
	SetKind(kind string)
	Name() string
	SetName(name string)
	Orders(turn int) string
	SetOrders(turn int, orders string)
	Results(turn int) string
	SetResults(turn int, results string)
}

var (
	_ UnitHandle = (*model.Unit)(nil)
	_ UnitHandle = (*Unit)(nil)
)

// Unit aggregates same-ID units drawn one per map. Reads are served from the
// first copy (the main map's when it has one); writes go to every copy.
type Unit struct {
	For[*model.Unit]
	id int
}

func (u *Unit) ID() int { return u.id }

func (u *Unit) Owner() model.Player {
	if f, ok := u.first(); ok {
		return f.Owner()
	}
	return model.Player{}
}

func (u *Unit) Kind() string {
	if f, ok := u.first(); ok {
		return f.Kind()
	}
	return ""
}

func (u *Unit) Name() string {
	if f, ok := u.first(); ok {
		return f.Name()
	}
	return ""
}

func (u *Unit) Orders(turn int) string {
	if f, ok := u.first(); ok {
		return f.Orders(turn)
	}
	return ""
}

func (u *Unit) Results(turn int) string {
	if f, ok := u.first(); ok {
		return f.Results(turn)
	}
	return ""
}

func (u *Unit) SetKind(kind string) { u.each(func(x *model.Unit) { x.SetKind(kind) }) }
func (u *Unit) SetName(name string) { u.each(func(x *model.Unit) { x.SetName(name) }) }

func (u *Unit) SetOrders(turn int, orders string) {
	u.each(func(x *model.Unit) { x.SetOrders(turn, orders) })
}

func (u *Unit) SetResults(turn int, results string) {
	u.each(func(x *model.Unit) { x.SetResults(turn, results) })
}

// Members groups the members of every copy by variant and ID, in order of
// first appearance.
func (u *Unit) Members() []*Member {
	byKey := map[match.FixtureKey]*Member{}
	var out []*Member
	for _, r := range u.refs {
		for _, m := range r.Item.Members() {
			k := match.FixtureKeyOf(m)
			pm := byKey[k]
			if pm == nil {
				pm = &Member{tag: k.Tag, id: k.ID}
				byKey[k] = pm
				out = append(out, pm)
			}
			pm.Add(r.Map, m)
		}
	}
	return out
}

// Underlying lists the concrete units behind h.
func Underlying(h UnitHandle) []*model.Unit {
	switch v := h.(type) {
	case *model.Unit:
		return []*model.Unit{v}
	case *Unit:
		return v.Proxied()
	default:
		return nil
	}
}

// MapUnits is one map's contribution to BuildUnitProxies. The caller
// guarantees at most one unit per ID.
type MapUnits struct {
	Map   mapstore.Map
	Units []*model.Unit
}

// BuildUnitProxies keys units by ID in map-visit order and sorts the result
// by case-insensitive name; ties keep visit order.
func BuildUnitProxies(perMap []MapUnits) []*Unit {
	byID := map[int]*Unit{}
	var out []*Unit
	for _, mu := range perMap {
		for _, u := range mu.Units {
			p := byID[u.ID()]
			if p == nil {
				p = &Unit{id: u.ID()}
				byID[u.ID()] = p
				out = append(out, p)
			}
			p.Add(mu.Map, u)
		}
	}
	SortByName(out)
	return out
}

// SortByName orders units by case-folded name, keeping the relative order of
// equal names.
func SortByName[U interface{ Name() string }](units []U) {
	fold := cases.Fold()
	keys := make(map[string]string, len(units))
	key := func(name string) string {
		k, ok := keys[name]
		if !ok {
			k = fold.String(name)
			keys[name] = k
		}
		return k
	}
	sort.SliceStable(units, func(i, j int) bool {
		return key(units[i].Name()) < key(units[j].Name())
	})
}
