package match

import (
	"testing"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

var owner = model.Player{ID: 7, Name: "seven"}

func newMap(t *testing.T) *mapstore.Memory {
	t.Helper()
	return mapstore.NewMemory(t.Name()+".map", model.Dimensions{Rows: 2, Cols: 2})
}

func TestFindUnit_MatchesAcrossContainers(t *testing.T) {
	m := newMap(t)
	fort := model.NewFortress(owner, "HQ", 1)
	inFort := model.NewUnit(owner, "scout", "A", 10)
	fort.AddMember(inFort)
	m.AddFixture(model.Point{Row: 1, Col: 1}, fort)

	u, loc, ok := FindUnit(m, UnitKey{OwnerID: 7, Kind: "scout", Name: "A", ID: 10})
	if !ok || u != inFort || loc.Container != fort {
		t.Fatalf("FindUnit: got %v %+v %v", u, loc, ok)
	}
	if _, _, ok := FindUnit(m, UnitKey{OwnerID: 7, Kind: "scout", Name: "B", ID: 10}); ok {
		t.Fatalf("name is part of the unit key")
	}
	if _, _, ok := FindUnitByOwner(m, 7, 10); !ok {
		t.Fatalf("FindUnitByOwner should ignore kind and name")
	}
}

func TestFindUnit_FirstInIterationOrderWins(t *testing.T) {
	m := newMap(t)
	a := model.NewUnit(owner, "k", "dup", 1)
	b := model.NewUnit(owner, "k", "dup", 1)
	m.AddFixture(model.Point{Row: 1, Col: 0}, b)
	m.AddFixture(model.Point{Row: 0, Col: 1}, a)
	u, _, ok := FindUnit(m, UnitKeyOf(a))
	if !ok || u != a {
		t.Fatalf("expected the row-major first unit")
	}
}

func TestFindWorker(t *testing.T) {
	m := newMap(t)
	u := model.NewUnit(owner, "k", "u", 1)
	w := model.NewWorker("Ann", "elf", 2)
	u.AddMember(w)
	m.AddFixture(model.Point{}, u)

	got, holder, ok := FindWorker(m, WorkerKey{Race: "elf", Name: "Ann", ID: 2})
	if !ok || got != w || holder != u {
		t.Fatalf("FindWorker failed")
	}
	if _, _, ok := FindWorker(m, WorkerKey{Race: "human", Name: "Ann", ID: 2}); ok {
		t.Fatalf("race is part of the worker key")
	}
}

func TestFindResource_SearchesEveryLevel(t *testing.T) {
	m := newMap(t)
	fort := model.NewFortress(owner, "HQ", 1)
	u := model.NewUnit(owner, "k", "u", 2)
	pile := model.NewResourcePile("food", "bread", model.Quantity{Number: 5, Units: "loaves"}, 3)
	pile.Created = 12
	u.AddMember(pile)
	fort.AddMember(u)
	m.AddFixture(model.Point{}, fort)

	key := ResourceKeyOf(pile)
	got, loc, ok := FindResource(m, key)
	if !ok || got != pile || loc.Container != u {
		t.Fatalf("FindResource: got %v %+v %v", got, loc, ok)
	}
	key.Created = 11
	if _, _, ok := FindResource(m, key); ok {
		t.Fatalf("created date is part of the resource key")
	}
}

func TestFindContainer(t *testing.T) {
	m := newMap(t)
	fort := model.NewFortress(owner, "Keep", 5)
	m.AddFixture(model.Point{Row: 0, Col: 1}, fort)

	f, p, ok := FindContainer(m, ContainerKey{Tag: model.TagFortress, Name: "Keep", ID: 5})
	if !ok || f != fort || p != (model.Point{Row: 0, Col: 1}) {
		t.Fatalf("FindContainer: got %v %v %v", f, p, ok)
	}
	if _, _, ok := FindContainer(m, ContainerKey{Tag: model.TagUnit, Name: "Keep", ID: 5}); ok {
		t.Fatalf("a unit key must not match a fortress")
	}
}

func TestFindMember_PrefersEqualValue(t *testing.T) {
	m := newMap(t)
	u1 := model.NewUnit(owner, "k", "one", 1)
	u2 := model.NewUnit(owner, "k", "two", 2)
	drifted := model.NewAnimal("horse", "wild", 3, 9)
	exact := model.NewAnimal("horse", "domesticated", 3, 9)
	u1.AddMember(drifted)
	u2.AddMember(exact)
	m.AddFixture(model.Point{}, u1)
	m.AddFixture(model.Point{}, u2)

	want := model.NewAnimal("horse", "domesticated", 3, 9)
	got, holder, ok := FindMember(m, want)
	if !ok || got != exact || holder != u2 {
		t.Fatalf("FindMember should prefer the equal copy")
	}
	other := model.NewAnimal("horse", "feral", 3, 9)
	got, holder, ok = FindMember(m, other)
	if !ok || got != drifted || holder != u1 {
		t.Fatalf("FindMember should fall back to the first same-ID member")
	}
}

func TestContainerKeyOfPanicsOnNonContainer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	ContainerKeyOf(model.NewCache("c", "x", 1))
}

func TestOwnedBy(t *testing.T) {
	m := newMap(t)
	m.AddFixture(model.Point{}, model.NewUnit(owner, "k", "mine", 1))
	m.AddFixture(model.Point{}, model.NewUnit(model.Player{ID: 8}, "k", "theirs", 2))
	m.AddFixture(model.Point{}, model.NewCache("c", "x", 3))
	got := OwnedBy(At(m, model.Point{}), 7)
	if len(got) != 1 || got[0].Fixture.ID() != 1 {
		t.Fatalf("OwnedBy: got %+v", got)
	}
}
