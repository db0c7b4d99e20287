package multimap

import (
	"strings"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

// ProposedRemoval is a set of fixtures at one location that duplicate an
// original. Nothing is removed until Remove is called.
type ProposedRemoval struct {
	Remove      func()
	MapFilename string
	Point       model.Point
	Original    model.Fixture
	Duplicates  []model.Fixture
}

// ConditionallyRemoveDuplicates proposes, for every map, the removal of
// fixtures at p that equal an earlier fixture there in everything but ID.
// Fixtures that carry a count or an area, caches and units whose kind is
// still a placeholder are never proposed.
func (m *Manager) ConditionallyRemoveDuplicates(p model.Point) []ProposedRemoval {
	var out []ProposedRemoval
	for _, mp := range m.maps() {
		out = append(out, m.duplicatesAt(mp, p)...)
	}
	return out
}

// ConditionallyRemoveAllDuplicates runs ConditionallyRemoveDuplicates over
// every location.
func (m *Manager) ConditionallyRemoveAllDuplicates() []ProposedRemoval {
	var out []ProposedRemoval
	for _, p := range m.set.Main().Locations() {
		out = append(out, m.ConditionallyRemoveDuplicates(p)...)
	}
	return out
}

func (m *Manager) duplicatesAt(mp mapstore.Map, p model.Point) []ProposedRemoval {
	fixtures := mp.Fixtures(p)
	checked := make([]bool, len(fixtures))
	var out []ProposedRemoval
	for i, f := range fixtures {
		if checked[i] || !dedupable(f) {
			continue
		}
		checked[i] = true
		var dups []model.Fixture
		for j := i + 1; j < len(fixtures); j++ {
			if checked[j] || !dedupable(fixtures[j]) || !f.EqualsIgnoringID(fixtures[j]) {
				continue
			}
			checked[j] = true
			dups = append(dups, fixtures[j])
		}
		if len(dups) == 0 {
			continue
		}
		out = append(out, ProposedRemoval{
			Remove: func() {
				for _, d := range dups {
					if mp.RemoveFixture(p, d) {
						m.touched(mp, "remove_duplicate", p, d, "")
					}
				}
			},
			MapFilename: mp.Filename(),
			Point:       p,
			Original:    f,
			Duplicates:  dups,
		})
	}
	return out
}

func dedupable(f model.Fixture) bool {
	switch v := f.(type) {
	case *model.Unit:
		if strings.Contains(v.Kind(), "TODO") {
			return false
		}
	case *model.Cache:
		return false
	case model.HasPopulation:
		if v.Population() > 0 {
			return false
		}
	case model.HasExtent:
		if v.Acres() > 0 {
			return false
		}
	}
	return true
}
