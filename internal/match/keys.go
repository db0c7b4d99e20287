// Package match finds, within one map, the fixture corresponding to a fixture
// from another map. Copies of one logical entity can drift between maps, so
// each entity kind is matched on the subset of fields that stays reliable.
//
// Every search is evaluated against a single map. When several candidates
// match, the first in iteration order wins: locations row-major, fixtures in
// map order, flattened contents after their container.
package match

import "mapsync.ai/internal/model"

type UnitKey struct {
	OwnerID int
	Kind    string
	Name    string
	ID      int
}

func UnitKeyOf(u *model.Unit) UnitKey {
	return UnitKey{OwnerID: u.Owner().ID, Kind: u.Kind(), Name: u.Name(), ID: u.ID()}
}

func (k UnitKey) Matches(u *model.Unit) bool { return UnitKeyOf(u) == k }

type WorkerKey struct {
	Race string
	Name string
	ID   int
}

func WorkerKeyOf(w *model.Worker) WorkerKey {
	return WorkerKey{Race: w.Race(), Name: w.Name(), ID: w.ID()}
}

func (k WorkerKey) Matches(w *model.Worker) bool { return WorkerKeyOf(w) == k }

type ResourceKey struct {
	Kind     string
	Contents string
	Created  int
	Units    string
	ID       int
}

func ResourceKeyOf(r *model.ResourcePile) ResourceKey {
	return ResourceKey{Kind: r.Kind(), Contents: r.Contents, Created: r.Created, Units: r.Quantity.Units, ID: r.ID()}
}

func (k ResourceKey) Matches(r *model.ResourcePile) bool { return ResourceKeyOf(r) == k }

type FortressKey struct {
	Name string
	ID   int
}

func FortressKeyOf(f *model.Fortress) FortressKey {
	return FortressKey{Name: f.Name(), ID: f.ID()}
}

func (k FortressKey) Matches(f *model.Fortress) bool { return FortressKeyOf(f) == k }

// ContainerKey identifies a unit or fortress by name and ID.
type ContainerKey struct {
	Tag  model.Tag
	Name string
	ID   int
}

// ContainerKeyOf panics if c is not a unit or fortress.
func ContainerKeyOf(c model.Fixture) ContainerKey {
	switch v := c.(type) {
	case *model.Unit:
		return ContainerKey{Tag: model.TagUnit, Name: v.Name(), ID: v.ID()}
	case *model.Fortress:
		return ContainerKey{Tag: model.TagFortress, Name: v.Name(), ID: v.ID()}
	default:
		panic("match: container key of non-container " + c.Tag().String())
	}
}

func (k ContainerKey) Matches(f model.Fixture) bool {
	return model.IsContainer(f) && ContainerKeyOf(f) == k
}

// FixtureKey matches any fixture by variant and ID.
type FixtureKey struct {
	Tag model.Tag
	ID  int
}

func FixtureKeyOf(f model.Fixture) FixtureKey { return FixtureKey{Tag: f.Tag(), ID: f.ID()} }

func (k FixtureKey) Matches(f model.Fixture) bool { return FixtureKeyOf(f) == k }

// KindKey matches by variant, ID and kind, for fixtures that carry a kind.
type KindKey struct {
	Tag  model.Tag
	Kind string
	ID   int
}

func KindKeyOf(f model.Fixture) KindKey {
	k := KindKey{Tag: f.Tag(), ID: f.ID()}
	if hk, ok := f.(model.HasKind); ok {
		k.Kind = hk.Kind()
	}
	return k
}

func (k KindKey) Matches(f model.Fixture) bool { return KindKeyOf(f) == k }
