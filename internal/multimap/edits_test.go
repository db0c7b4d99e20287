package multimap

import (
	"math/rand"
	"testing"

	"mapsync.ai/internal/model"
	"mapsync.ai/internal/proxy"
)

// workerIn places a unit holding one worker in every map and returns the
// workers, main first.
func (h *harness) workerIn(name string) []*model.Worker {
	var out []*model.Worker
	h.place(here, func(int) model.Fixture {
		u := model.NewUnit(alice, "k", "crew", 1)
		w := model.NewWorker(name, "dwarf", 2)
		u.AddMember(w)
		out = append(out, w)
		return u
	})
	return out
}

func TestRenameItem_PerMapIndependence(t *testing.T) {
	h := newHarness(t, 2)
	ws := h.workerIn("Gimli")
	// The second subordinate knows the worker under another name.
	ws[2].SetName("Unknown dwarf")

	if !h.mgr.RenameItem(ws[0], "Gloin") {
		t.Fatalf("RenameItem failed")
	}
	if ws[0].Name() != "Gloin" || ws[1].Name() != "Gloin" {
		t.Fatalf("matching copies not renamed")
	}
	if ws[2].Name() != "Unknown dwarf" {
		t.Fatalf("non-matching copy renamed")
	}
	h.assertModified(t, true, true, false)
}

func TestRenameItem_NoMatchIsFalse(t *testing.T) {
	h := newHarness(t, 1)
	if h.mgr.RenameItem(model.NewWorker("ghost", "elf", 99), "x") {
		t.Fatalf("no match anywhere should report false")
	}
	h.assertModified(t, false, false)
}

func TestRenameItem_UnitProxyAndFortress(t *testing.T) {
	h := newHarness(t, 1)
	h.place(here, func(int) model.Fixture { return model.NewUnit(alice, "k", "old", 1) })
	forts := h.place(model.Point{}, func(int) model.Fixture { return model.NewFortress(alice, "Keep", 5) })

	unit := h.mgr.Unit(alice, 1)
	if !h.mgr.RenameItem(unit, "new") {
		t.Fatalf("rename unit failed")
	}
	for _, u := range proxy.Underlying(h.mgr.Unit(alice, 1)) {
		if u.Name() != "new" {
			t.Fatalf("unit copy not renamed")
		}
	}
	if !h.mgr.RenameItem(forts[0], "Citadel") {
		t.Fatalf("rename fortress failed")
	}
	if forts[1].(*model.Fortress).Name() != "Citadel" {
		t.Fatalf("sub fortress not renamed")
	}
}

func TestChangeKindAndOwner(t *testing.T) {
	h := newHarness(t, 1)
	villages := h.place(here, func(int) model.Fixture {
		return model.NewVillage(alice, "Bree", "human", "active", 30)
	})
	carol := model.Player{ID: 3, Name: "carol"}
	if !h.mgr.ChangeOwner(villages[0], carol) {
		t.Fatalf("ChangeOwner failed")
	}
	for i, v := range villages {
		if v.(*model.Village).Owner().ID != 3 {
			t.Fatalf("map %d village not transferred", i)
		}
		found := false
		for _, p := range h.maps[i].Players() {
			found = found || p.ID == 3
		}
		if !found {
			t.Fatalf("map %d does not know the new owner", i)
		}
	}
	// Villages have no mutable kind.
	if h.mgr.ChangeKind(villages[0], "elf") {
		t.Fatalf("ChangeKind should not apply to villages")
	}

	ws := h.workerIn("Bilbo")
	if !h.mgr.ChangeKind(ws[0], "hobbit") {
		t.Fatalf("ChangeKind on worker failed")
	}
	if ws[1].Race() != "hobbit" {
		t.Fatalf("sub worker race not changed")
	}
}

func TestAddHoursToSkill_CreatesJobAndSkill(t *testing.T) {
	h := newHarness(t, 1)
	ws := h.workerIn("Ann")
	if !h.mgr.AddHoursToSkill(ws[0], "farmer", "plowing", 5, 99) {
		t.Fatalf("AddHoursToSkill failed")
	}
	for i, w := range ws {
		j := w.Job("farmer")
		if j == nil || j.Level != 0 {
			t.Fatalf("map %d: job not created at level 0", i)
		}
		s := j.Skill("plowing")
		if s == nil || s.Hours != 5 || s.Level != 0 {
			t.Fatalf("map %d: skill wrong: %+v", i, s)
		}
	}
	h.mgr.AddHoursToSkill(ws[0], "farmer", "plowing", 5, 3)
	if s := ws[1].Job("farmer").Skill("plowing"); s.Level != 1 || s.Hours != 0 {
		t.Fatalf("level-up not applied: %+v", s)
	}
}

func TestAddJobAndSkill(t *testing.T) {
	h := newHarness(t, 1)
	ws := h.workerIn("Ann")
	if !h.mgr.AddJobToWorker(ws[0], "smith") {
		t.Fatalf("AddJobToWorker failed")
	}
	ws[0].Job("smith").Level = 3
	if !h.mgr.AddJobToWorker(ws[0], "smith") {
		t.Fatalf("AddJobToWorker on existing job should still match")
	}
	if ws[0].Job("smith").Level != 3 {
		t.Fatalf("existing job was replaced")
	}
	if !h.mgr.AddSkillToWorker(ws[0], "miner", "digging") {
		t.Fatalf("AddSkillToWorker failed")
	}
	if ws[1].Job("miner") == nil || ws[1].Job("miner").Skill("digging") == nil {
		t.Fatalf("sub worker missing job or skill")
	}
}

func TestAddHoursToSkillInAll_ReproducibleFromSeed(t *testing.T) {
	run := func() []model.Skill {
		h := newHarness(t, 0)
		u := model.NewUnit(alice, "k", "crew", 1)
		for i := 0; i < 4; i++ {
			u.AddMember(model.NewWorker("w", "elf", 10+i))
		}
		h.maps[0].AddFixture(here, u)
		for i := 0; i < 5; i++ {
			if !h.mgr.AddHoursToSkillInAll(u, "farmer", "plowing", 20, int64(42+i)) {
				t.Fatalf("AddHoursToSkillInAll failed")
			}
		}
		var out []model.Skill
		for _, m := range u.Members() {
			out = append(out, *m.(*model.Worker).Job("farmer").Skill("plowing"))
		}
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("worker %d: %+v vs %+v", i, a[i], b[i])
		}
	}

	// The rolls are the seeded generator's, one per worker in member order.
	rng := rand.New(rand.NewSource(7))
	want := []int{rng.Intn(100), rng.Intn(100)}
	h := newHarness(t, 0)
	u := model.NewUnit(alice, "k", "crew", 1)
	w1, w2 := model.NewWorker("a", "elf", 10), model.NewWorker("b", "elf", 11)
	u.AddMember(w1)
	u.AddMember(w2)
	h.maps[0].AddFixture(here, u)
	h.mgr.AddHoursToSkillInAll(u, "j", "s", 50, 7)
	for i, w := range []*model.Worker{w1, w2} {
		s := w.Job("j").Skill("s")
		wantLevel := 0
		if want[i] <= 50 {
			wantLevel = 1
		}
		if s.Level != wantLevel {
			t.Fatalf("worker %d: level %d want %d (roll %d)", i, s.Level, wantLevel, want[i])
		}
	}
}

func TestReplaceSkillInJob_SkipsMapsWithoutEqualSkill(t *testing.T) {
	h := newHarness(t, 2)
	ws := h.workerIn("Ann")
	old := model.Skill{Name: "forging", Level: 2, Hours: 4}
	for i, w := range ws[:2] {
		w.AddJob(model.Job{Name: "smith"})
		s := old
		if i == 1 {
			s.Hours = 9
		}
		w.Job("smith").AddSkill(s)
	}
	h.resetModified()

	repl := model.Skill{Name: "casting", Level: 2}
	if !h.mgr.ReplaceSkillInJob(ws[0], "smith", old, repl) {
		t.Fatalf("ReplaceSkillInJob failed")
	}
	if ws[0].Job("smith").Skill("casting") == nil {
		t.Fatalf("main skill not replaced")
	}
	if ws[1].Job("smith").Skill("forging") == nil || ws[1].Job("smith").Skill("casting") != nil {
		t.Fatalf("drifted skill must be left alone")
	}
	if ws[2].Job("smith") != nil {
		t.Fatalf("missing job must not be created")
	}
	h.assertModified(t, true, false, false)
}
