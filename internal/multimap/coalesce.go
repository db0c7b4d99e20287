package multimap

import (
	"fmt"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

// Combiner merges like fixtures of one variant.
type Combiner struct {
	// Plural labels a group in proposals, e.g. "resource piles".
	Plural string
	// Key groups fixtures that can be merged; ok is false for fixtures that
	// must stay separate.
	Key func(f model.Fixture) (key string, ok bool)
	// Combine builds the merged fixture. It keeps the ID of the first.
	Combine func(fs []model.Fixture) model.Fixture
}

// Combiners maps each variant to its Combiner. Variants without one are never
// coalesced.
type Combiners map[model.Tag]Combiner

// ProposedCombine is a group of like fixtures in one holder of one map. Combine
// replaces them with a single merged fixture.
type ProposedCombine struct {
	Combine func()
	Context string
	Plural  string
	Matched []model.Fixture
}

// ConditionallyCoalesceResources proposes, for every map, merging like
// fixtures at p: among the fixtures loose on the tile, and among the members
// of each unit and fortress there. Talking animals and fixtures whose count
// or area is unknown are left out.
func (m *Manager) ConditionallyCoalesceResources(p model.Point, combiners Combiners) []ProposedCombine {
	var out []ProposedCombine
	for _, mp := range m.maps() {
		out = append(out, m.coalesceIn(mp, p, nil, mp.Fixtures(p), combiners)...)
		for _, loc := range deepAt(mp, p) {
			if c := loc.Fixture; model.IsContainer(c) {
				out = append(out, m.coalesceIn(mp, p, c, membersOf(c), combiners)...)
			}
		}
	}
	return out
}

func membersOf(container model.Fixture) []model.Fixture {
	var out []model.Fixture
	switch c := container.(type) {
	case *model.Unit:
		for _, mem := range c.Members() {
			out = append(out, mem)
		}
	case *model.Fortress:
		for _, mem := range c.Members() {
			out = append(out, mem)
		}
	}
	return out
}

func (m *Manager) coalesceIn(mp mapstore.Map, p model.Point, container model.Fixture, fixtures []model.Fixture, combiners Combiners) []ProposedCombine {
	type group struct {
		tag   model.Tag
		items []model.Fixture
	}
	byKey := map[string]*group{}
	var order []*group
	for _, f := range fixtures {
		c, ok := combiners[f.Tag()]
		if !ok || !coalescible(f) {
			continue
		}
		k, ok := c.Key(f)
		if !ok {
			continue
		}
		k = f.Tag().String() + "\x00" + k
		g := byKey[k]
		if g == nil {
			g = &group{tag: f.Tag()}
			byKey[k] = g
			order = append(order, g)
		}
		g.items = append(g.items, f)
	}
	context := fmt.Sprintf("%s at %v in %s", containerLabel(container), p, mp.Filename())
	var out []ProposedCombine
	for _, g := range order {
		if len(g.items) < 2 {
			continue
		}
		c := combiners[g.tag]
		items := g.items
		out = append(out, ProposedCombine{
			Combine: func() {
				merged := c.Combine(items)
				for _, f := range items {
					detach(mp, p, container, f)
				}
				attach(mp, p, container, merged)
				m.touched(mp, "coalesce", p, merged, fmt.Sprintf("%d %s", len(items), c.Plural))
			},
			Context: context,
			Plural:  c.Plural,
			Matched: items,
		})
	}
	return out
}

func coalescible(f model.Fixture) bool {
	switch v := f.(type) {
	case *model.Animal:
		return !v.Talking && v.Population() > 0
	case model.HasPopulation:
		return v.Population() > 0
	case model.HasExtent:
		return v.Acres() > 0
	default:
		return true
	}
}

// DefaultCombiners covers resource piles, animals, implements and the
// countable terrain fixtures.
func DefaultCombiners() Combiners {
	return Combiners{
		model.TagResourcePile: {
			Plural: "resource piles",
			Key: func(f model.Fixture) (string, bool) {
				r := f.(*model.ResourcePile)
				return fmt.Sprintf("%s|%s|%s", r.Kind(), r.Contents, r.Quantity.Units), true
			},
			Combine: func(fs []model.Fixture) model.Fixture {
				first := fs[0].(*model.ResourcePile)
				total := 0.0
				created := first.Created
				for _, f := range fs {
					r := f.(*model.ResourcePile)
					total += r.Quantity.Number
					if r.Created > created {
						created = r.Created
					}
				}
				out := first.Split(first.ID(), total)
				out.Created = created
				return out
			},
		},
		model.TagAnimal: {
			Plural: "animals",
			Key: func(f model.Fixture) (string, bool) {
				a := f.(*model.Animal)
				return fmt.Sprintf("%s|%s|%d", a.Kind(), a.Status, a.Born), true
			},
			Combine: func(fs []model.Fixture) model.Fixture {
				return sumPopulation(fs)
			},
		},
		model.TagImplement: {
			Plural: "implements",
			Key: func(f model.Fixture) (string, bool) {
				return f.(*model.Implement).Kind(), true
			},
			Combine: func(fs []model.Fixture) model.Fixture {
				first := fs[0].(*model.Implement)
				count := 0
				for _, f := range fs {
					count += max(f.(*model.Implement).Count, 1)
				}
				return model.NewImplement(first.Kind(), count, first.ID())
			},
		},
		model.TagForest: {
			Plural: "forests",
			Key: func(f model.Fixture) (string, bool) {
				v := f.(*model.Forest)
				return fmt.Sprintf("%s|%t", v.Kind(), v.Rows), true
			},
			Combine: func(fs []model.Fixture) model.Fixture { return sumAcres(fs) },
		},
		model.TagMeadow: {
			Plural: "fields and meadows",
			Key: func(f model.Fixture) (string, bool) {
				v := f.(*model.Meadow)
				return fmt.Sprintf("%s|%t|%t|%s", v.Kind(), v.Field, v.Cultivated, v.Status), true
			},
			Combine: func(fs []model.Fixture) model.Fixture { return sumAcres(fs) },
		},
		model.TagGrove: {
			Plural: "groves and orchards",
			Key: func(f model.Fixture) (string, bool) {
				v := f.(*model.Grove)
				return fmt.Sprintf("%s|%t|%t", v.Kind(), v.Orchard, v.Cultivated), true
			},
			Combine: func(fs []model.Fixture) model.Fixture { return sumPopulation(fs) },
		},
		model.TagShrub: {
			Plural: "shrubs",
			Key: func(f model.Fixture) (string, bool) {
				return f.(*model.Shrub).Kind(), true
			},
			Combine: func(fs []model.Fixture) model.Fixture { return sumPopulation(fs) },
		},
	}
}

func sumPopulation(fs []model.Fixture) model.Fixture {
	total := 0
	for _, f := range fs {
		total += f.(model.HasPopulation).Population()
	}
	return fs[0].(model.HasPopulation).WithPopulation(total, model.KeepAll)
}

func sumAcres(fs []model.Fixture) model.Fixture {
	total := 0.0
	for _, f := range fs {
		total += f.(model.HasExtent).Acres()
	}
	return fs[0].(model.HasExtent).WithAcres(total, model.KeepAll)
}
