package multimap

import (
	"testing"

	"mapsync.ai/internal/model"
)

func placeAnimals(h *harness, pops ...int) []model.Fixture {
	return h.place(here, func(i int) model.Fixture {
		a := model.NewAnimal("deer", "wild", pops[i], 30)
		a.Born = 2
		return a
	})
}

func animalAt(t *testing.T, h *harness, i int) *model.Animal {
	t.Helper()
	for _, f := range h.maps[i].Fixtures(here) {
		if a, ok := f.(*model.Animal); ok {
			return a
		}
	}
	return nil
}

func TestReducePopulation_IndependentArithmeticWhenFirstSurvives(t *testing.T) {
	h := newHarness(t, 1)
	orig := placeAnimals(h, 10, 4)

	if !h.mgr.ReducePopulation(here, orig[0].(*model.Animal), model.KeepAll, 6) {
		t.Fatalf("ReducePopulation failed")
	}
	a := animalAt(t, h, 0)
	if a == nil || a.Population() != 4 {
		t.Fatalf("main: got %v want population 4", a)
	}
	if a.Born != 2 {
		t.Fatalf("main copy should keep fields under KeepAll")
	}
	if b := animalAt(t, h, 1); b != nil {
		t.Fatalf("sub: 4-6 leaves nothing, should be removed, got %v", b)
	}
}

func TestReducePopulation_DepletionRemovesEverywhere(t *testing.T) {
	h := newHarness(t, 2)
	orig := placeAnimals(h, 6, 100, 3)

	if !h.mgr.ReducePopulation(here, orig[0].(*model.Animal), model.KeepAll, 6) {
		t.Fatalf("ReducePopulation failed")
	}
	for i := range h.maps {
		if a := animalAt(t, h, i); a != nil {
			t.Fatalf("map %d: should be removed regardless of its own population, got %d", i, a.Population())
		}
	}
}

func TestReducePopulation_LaterMapsUseZeroedCopies(t *testing.T) {
	h := newHarness(t, 1)
	orig := placeAnimals(h, 10, 10)

	h.mgr.ReducePopulation(here, orig[0].(*model.Animal), model.KeepAll, 1)
	if a := animalAt(t, h, 0); a.Born != 2 || a.Population() != 9 {
		t.Fatalf("main: got born %d pop %d", a.Born, a.Population())
	}
	if b := animalAt(t, h, 1); b.Born != -1 || b.Population() != 9 {
		t.Fatalf("sub: got born %d pop %d, want zeroed copy", b.Born, b.Population())
	}
}

func TestReducePopulation_UnknownAndDegenerate(t *testing.T) {
	h := newHarness(t, 1)
	orig := placeAnimals(h, 10, 0)
	if h.mgr.ReducePopulation(here, orig[0].(*model.Animal), model.KeepAll, 0) {
		t.Fatalf("non-positive amount should be a no-op")
	}
	h.mgr.ReducePopulation(here, orig[0].(*model.Animal), model.KeepAll, 3)
	if b := animalAt(t, h, 1); b == nil || b != orig[1] {
		t.Fatalf("copy with unknown population should be left alone")
	}
}

func TestReducePopulation_InsideUnit(t *testing.T) {
	h := newHarness(t, 0)
	u := model.NewUnit(alice, "k", "herders", 1)
	goats := model.NewAnimal("goat", "domesticated", 5, 2)
	u.AddMember(goats)
	h.maps[0].AddFixture(here, u)

	h.mgr.ReducePopulation(here, goats, model.KeepAll, 2)
	ms := u.Members()
	if len(ms) != 1 || ms[0].(*model.Animal).Population() != 3 {
		t.Fatalf("unit member not reduced in place: %v", ms)
	}
}

func TestReduceExtent(t *testing.T) {
	h := newHarness(t, 1)
	forests := h.place(here, func(i int) model.Fixture {
		return model.NewForest("pine", false, []float64{8, 12}[i], 70)
	})
	if !h.mgr.ReduceExtent(here, forests[0].(*model.Forest), model.KeepAll, 2.5) {
		t.Fatalf("ReduceExtent failed")
	}
	for i, want := range []float64{5.5, 9.5} {
		got := h.maps[i].Fixtures(here)[0].(*model.Forest).Acres()
		if got != want {
			t.Fatalf("map %d: acres %g want %g", i, got, want)
		}
	}
	h.mgr.ReduceExtent(here, forests[0].(*model.Forest), model.KeepAll, 6)
	for i := range h.maps {
		if n := len(h.maps[i].Fixtures(here)); n != 0 {
			t.Fatalf("map %d: forest should be gone", i)
		}
	}
}
