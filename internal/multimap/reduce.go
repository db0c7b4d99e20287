package multimap

import (
	"fmt"

	"mapsync.ai/internal/flatten"
	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/match"
	"mapsync.ai/internal/model"
)

// reduction is the state threaded through the map list by ReducePopulation
// and ReduceExtent.
type reduction uint8

const (
	// reduceFirst: no map has matched yet. The next match is reduced with
	// the caller's copy behaviour.
	reduceFirst reduction = iota
	// reduceNormal: later matches are reduced by their own amount and
	// replaced with zeroed copies.
	reduceNormal
	// reduceDepleted: the first match ran out, so every later match is
	// removed whatever its own amount.
	reduceDepleted
)

// measure reports a fixture's remaining quantity after taking amount away,
// and whether its quantity is known at all.
type measure func(f model.Fixture) (remaining float64, known bool)

// shrink builds the reduced replacement of f.
type shrink func(f model.Fixture, remaining float64, zero model.CopyBehavior) model.Fixture

// ReducePopulation lowers the population of fixture at p by amount in every
// map. See reduce for how the maps interact.
func (m *Manager) ReducePopulation(p model.Point, fixture model.HasPopulation, zero model.CopyBehavior, amount int) bool {
	if amount <= 0 {
		return false
	}
	return m.reduce(p, fixture, zero, "reduce_population",
		func(f model.Fixture) (float64, bool) {
			hp := f.(model.HasPopulation)
			return float64(hp.Population() - amount), hp.Population() > 0
		},
		func(f model.Fixture, remaining float64, zero model.CopyBehavior) model.Fixture {
			return f.(model.HasPopulation).WithPopulation(int(remaining), zero)
		})
}

// ReduceExtent lowers the acreage of fixture at p by acres in every map.
func (m *Manager) ReduceExtent(p model.Point, fixture model.HasExtent, zero model.CopyBehavior, acres float64) bool {
	if acres <= 0 {
		return false
	}
	return m.reduce(p, fixture, zero, "reduce_extent",
		func(f model.Fixture) (float64, bool) {
			he := f.(model.HasExtent)
			return he.Acres() - acres, he.Acres() > 0
		},
		func(f model.Fixture, remaining float64, zero model.CopyBehavior) model.Fixture {
			return f.(model.HasExtent).WithAcres(remaining, zero)
		})
}

// reduce folds over the maps, main first. The first map holding a match
// decides: if its copy survives the reduction it is replaced by a reduced copy
// built with zero, and later maps reduce their own copies independently with
// zeroed replacements; if it runs out it is removed and every later map's
// copy is removed too, without looking at its amount. Copies whose quantity
// is unknown are left alone unless the stock is depleted.
func (m *Manager) reduce(p model.Point, fixture model.Fixture, zero model.CopyBehavior, op string, amountOf measure, reduced shrink) bool {
	key := match.KindKeyOf(fixture)
	state := reduceFirst
	changed := false
	for _, mp := range m.maps() {
		f, loc, ok := match.First(deepAt(mp, p), func(f model.Fixture) bool { return key.Matches(f) })
		if !ok {
			continue
		}
		if state == reduceDepleted {
			detach(mp, p, loc.Container, f)
			m.touched(mp, op, p, f, "depleted")
			changed = true
			continue
		}
		behavior := model.Zero
		if state == reduceFirst {
			behavior = zero
		}
		remaining, known := amountOf(f)
		wasFirst := state == reduceFirst
		state = reduceNormal
		if !known {
			continue
		}
		if remaining > 0 {
			repl := reduced(f, remaining, behavior)
			replace(mp, p, loc.Container, f, repl)
			m.touched(mp, op, p, repl, fmt.Sprintf("%g left", remaining))
		} else {
			detach(mp, p, loc.Container, f)
			m.touched(mp, op, p, f, "removed")
			if wasFirst {
				state = reduceDepleted
			}
		}
		changed = true
	}
	return changed
}

// deepAt lists every fixture at p, including those held by units and
// fortresses there.
func deepAt(mp mapstore.Map, p model.Point) []flatten.Located {
	var out []flatten.Located
	for _, f := range mp.Fixtures(p) {
		out = append(out, flatten.Deep(p, f)...)
	}
	return out
}
