package multimap

import (
	"fmt"
	"sync"

	"mapsync.ai/internal/flatten"
	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/match"
	"mapsync.ai/internal/model"
	"mapsync.ai/internal/proxy"
)

// AddResource adds pile to every map's copy of container, a unit handle or a
// fortress. The first map receives pile itself, later maps their own copies.
func (m *Manager) AddResource(container Item, pile *model.ResourcePile) bool {
	next := shareOnce(pile)
	return m.eachMatch(container, "add_resource", pile.Kind(), func(_ mapstore.Map, f model.Fixture) bool {
		switch c := f.(type) {
		case *model.Unit:
			c.AddMember(next())
		case *model.Fortress:
			c.AddMember(next())
		default:
			return false
		}
		return true
	})
}

// AddAnimal adds animal to every map's copy of unit.
func (m *Manager) AddAnimal(unit Item, animal *model.Animal) bool {
	next := shareOnce(animal)
	return m.eachMatch(unit, "add_animal", animal.Kind(), func(_ mapstore.Map, f model.Fixture) bool {
		u, ok := f.(*model.Unit)
		if ok {
			u.AddMember(next())
		}
		return ok
	})
}

// ReduceResourceBy takes amount away from every map's copy of pile, looking
// only in units and fortresses owned by owner. A copy left with nothing is
// removed. Non-positive amounts change nothing.
func (m *Manager) ReduceResourceBy(pile *model.ResourcePile, amount float64, owner model.Player) bool {
	if amount <= 0 {
		return false
	}
	key := match.ResourceKeyOf(pile)
	changed := false
	for _, mp := range m.maps() {
		r, loc, ok := match.First(ownedContents(mp, owner.ID), key.Matches)
		if !ok {
			continue
		}
		if r.Quantity.Number <= amount {
			detach(mp, loc.Point, loc.Container, r)
			m.touched(mp, "reduce_resource", loc.Point, r, "exhausted")
		} else {
			r.Quantity.Number -= amount
			m.touched(mp, "reduce_resource", loc.Point, r, fmt.Sprintf("-%g %s", amount, r.Quantity.Units))
		}
		changed = true
	}
	return changed
}

// ownedContents lists every fixture held by a unit or fortress owned by the
// player, at any depth.
func ownedContents(mp mapstore.Map, ownerID int) []flatten.Located {
	var out []flatten.Located
	for _, loc := range flatten.MapDeep(mp) {
		if o, ok := loc.Container.(model.HasOwner); ok && o.Owner().ID == ownerID {
			out = append(out, loc)
		}
	}
	return out
}

// TransferResource moves quantity of pile into dest, a unit handle or a
// fortress, independently in every map holding both. When quantity covers a
// map's whole pile the pile itself moves; otherwise a split pile is created
// in dest. newID is called at most once per transfer, and every split shares
// that ID.
func (m *Manager) TransferResource(pile *model.ResourcePile, dest Item, quantity float64, newID func() int) bool {
	if quantity <= 0 {
		return false
	}
	destKey, ok := containerKeyOf(dest)
	if !ok {
		return false
	}
	key := match.ResourceKeyOf(pile)
	splitID := sync.OnceValue(newID)
	changed := false
	for _, mp := range m.maps() {
		r, from, ok := match.FindResource(mp, key)
		if !ok {
			continue
		}
		to, at, ok := match.FindContainer(mp, destKey)
		if !ok {
			continue
		}
		if quantity >= r.Quantity.Number {
			detach(mp, from.Point, from.Container, r)
			attach(mp, at, to, r)
			m.touched(mp, "transfer_resource", at, r, "to "+containerLabel(to))
		} else {
			split := r.Split(splitID(), quantity)
			r.Quantity.Number -= quantity
			attach(mp, at, to, split)
			m.touched(mp, "transfer_resource", at, split, fmt.Sprintf("split from %d to %s", r.ID(), containerLabel(to)))
		}
		changed = true
	}
	return changed
}

func containerKeyOf(item Item) (match.ContainerKey, bool) {
	switch v := item.(type) {
	case *model.Fortress:
		return match.ContainerKeyOf(v), true
	case proxy.UnitHandle:
		return match.ContainerKey{Tag: model.TagUnit, Name: v.Name(), ID: v.ID()}, true
	default:
		return match.ContainerKey{}, false
	}
}
