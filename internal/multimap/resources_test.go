package multimap

import (
	"testing"

	"mapsync.ai/internal/model"
)

func bread(qty float64, id int) *model.ResourcePile {
	r := model.NewResourcePile("food", "bread", model.Quantity{Number: qty, Units: "loaves"}, id)
	r.Created = 5
	return r
}

func TestTransferResource_SplitIDGeneratedOnce(t *testing.T) {
	h := newHarness(t, 1)
	piles := []*model.ResourcePile{bread(10, 50), bread(4, 50)}
	var dests []*model.Unit
	h.place(here, func(i int) model.Fixture {
		src := model.NewUnit(alice, "k", "depot", 1)
		src.AddMember(piles[i])
		return src
	})
	h.place(here, func(int) model.Fixture {
		d := model.NewUnit(alice, "k", "caravan", 2)
		dests = append(dests, d)
		return d
	})

	calls := 0
	newID := func() int {
		calls++
		return 900 + calls
	}
	// Main needs a split (10 > 6); the subordinate's pile of 4 moves whole.
	if !h.mgr.TransferResource(piles[0], dests[0], 6, newID) {
		t.Fatalf("TransferResource failed")
	}
	if calls != 1 {
		t.Fatalf("id factory called %d times want 1", calls)
	}
	mainGot := dests[0].Members()
	if len(mainGot) != 1 || mainGot[0].ID() != 901 || mainGot[0].(*model.ResourcePile).Quantity.Number != 6 {
		t.Fatalf("main destination: %v", mainGot)
	}
	if piles[0].Quantity.Number != 4 {
		t.Fatalf("main source left with %g want 4", piles[0].Quantity.Number)
	}
	subGot := dests[1].Members()
	if len(subGot) != 1 || subGot[0] != piles[1] {
		t.Fatalf("sub pile should move whole")
	}

	// Both maps splitting share the one generated ID.
	h2 := newHarness(t, 1)
	piles2 := []*model.ResourcePile{bread(10, 60), bread(10, 60)}
	var dests2 []*model.Unit
	h2.place(here, func(i int) model.Fixture {
		src := model.NewUnit(alice, "k", "depot", 1)
		src.AddMember(piles2[i])
		return src
	})
	h2.place(here, func(int) model.Fixture {
		d := model.NewUnit(alice, "k", "caravan", 2)
		dests2 = append(dests2, d)
		return d
	})
	calls = 0
	h2.mgr.TransferResource(piles2[0], dests2[0], 3, newID)
	if calls != 1 {
		t.Fatalf("id factory called %d times want 1", calls)
	}
	a, b := dests2[0].Members()[0], dests2[1].Members()[0]
	if a.ID() != b.ID() || a == b {
		t.Fatalf("splits should share an ID but not an object: %d %d", a.ID(), b.ID())
	}
}

func TestTransferResource_DegenerateQuantity(t *testing.T) {
	h := newHarness(t, 0)
	called := false
	if h.mgr.TransferResource(bread(1, 1), model.NewUnit(alice, "k", "u", 2), 0, func() int { called = true; return 1 }) {
		t.Fatalf("zero quantity should be a no-op")
	}
	if called {
		t.Fatalf("id factory must not be called")
	}
}

func TestTransferResource_IntoFortress(t *testing.T) {
	h := newHarness(t, 0)
	pile := bread(2, 3)
	u := model.NewUnit(alice, "k", "u", 1)
	u.AddMember(pile)
	fort := model.NewFortress(alice, "HQ", 2)
	h.maps[0].AddFixture(here, u)
	h.maps[0].AddFixture(model.Point{}, fort)

	if !h.mgr.TransferResource(pile, fort, 2, func() int { return 99 }) {
		t.Fatalf("TransferResource failed")
	}
	if !u.Empty() || len(fort.Members()) != 1 || fort.Members()[0] != pile {
		t.Fatalf("pile should move into the fortress")
	}
}

func TestReduceResourceBy(t *testing.T) {
	h := newHarness(t, 1)
	piles := []*model.ResourcePile{bread(10, 7), bread(3, 7)}
	units := h.place(here, func(i int) model.Fixture {
		u := model.NewUnit(alice, "k", "u", 1)
		u.AddMember(piles[i])
		return u
	})
	if h.mgr.ReduceResourceBy(piles[0], 4, bob) {
		t.Fatalf("piles held by another player must not match")
	}
	if !h.mgr.ReduceResourceBy(piles[0], 4, alice) {
		t.Fatalf("ReduceResourceBy failed")
	}
	if piles[0].Quantity.Number != 6 {
		t.Fatalf("main pile: got %g want 6", piles[0].Quantity.Number)
	}
	if !units[1].(*model.Unit).Empty() {
		t.Fatalf("exhausted sub pile should be removed")
	}
	if h.mgr.ReduceResourceBy(piles[0], -1, alice) {
		t.Fatalf("negative amount should be a no-op")
	}
}

func TestAddResourceAndAnimal(t *testing.T) {
	h := newHarness(t, 1)
	units := h.place(here, func(int) model.Fixture { return model.NewUnit(alice, "k", "u", 1) })
	pile := bread(3, 40)
	if !h.mgr.AddResource(units[0], pile) {
		t.Fatalf("AddResource failed")
	}
	horse := model.NewAnimal("horse", "domesticated", 2, 41)
	if !h.mgr.AddAnimal(units[0], horse) {
		t.Fatalf("AddAnimal failed")
	}
	for i, f := range units {
		ms := f.(*model.Unit).Members()
		if len(ms) != 2 {
			t.Fatalf("map %d: %d members want 2", i, len(ms))
		}
		if i == 0 && (ms[0] != pile || ms[1] != horse) {
			t.Fatalf("main map should get the caller's objects")
		}
		if i > 0 && (ms[0] == pile || !model.Equal(ms[0], pile)) {
			t.Fatalf("sub map should get an equal copy")
		}
	}
}
