package multimap

import (
	"fmt"
	"math/rand"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
	"mapsync.ai/internal/proxy"
)

// eachWorker runs fn on every map's copy of worker.
func (m *Manager) eachWorker(worker Item, op, detail string, fn func(w *model.Worker) bool) bool {
	return m.eachMatch(worker, op, detail, func(_ mapstore.Map, f model.Fixture) bool {
		w, ok := f.(*model.Worker)
		return ok && fn(w)
	})
}

// jobOf returns w's job of that name, creating it at level 0 if absent.
func jobOf(w *model.Worker, name string) *model.Job {
	if j := w.Job(name); j != nil {
		return j
	}
	w.AddJob(model.Job{Name: name})
	return w.Job(name)
}

// skillOf returns j's skill of that name, creating it at level 0 if absent.
func skillOf(j *model.Job, name string) *model.Skill {
	if s := j.Skill(name); s != nil {
		return s
	}
	j.AddSkill(model.Skill{Name: name})
	return j.Skill(name)
}

// AddJobToWorker gives every copy of worker a level-0 job of that name unless
// it already has one. It reports whether any map held the worker.
func (m *Manager) AddJobToWorker(worker Item, job string) bool {
	return m.eachWorker(worker, "add_job", job, func(w *model.Worker) bool {
		jobOf(w, job)
		return true
	})
}

// AddSkillToWorker ensures every copy of worker has the job and, inside it,
// the skill.
func (m *Manager) AddSkillToWorker(worker Item, job, skill string) bool {
	return m.eachWorker(worker, "add_skill", job+"/"+skill, func(w *model.Worker) bool {
		skillOf(jobOf(w, job), skill)
		return true
	})
}

// AddHoursToSkill adds hours to the worker's skill in every map, creating the
// job and skill where missing. condition is the level-up roll passed to
// Skill.AddHours.
func (m *Manager) AddHoursToSkill(worker Item, job, skill string, hours, condition int) bool {
	detail := fmt.Sprintf("%s/%s +%d", job, skill, hours)
	return m.eachWorker(worker, "add_hours", detail, func(w *model.Worker) bool {
		skillOf(jobOf(w, job), skill).AddHours(hours, condition)
		return true
	})
}

// AddHoursToSkillInAll adds hours to the skill of every worker in unit. One
// generator seeded from seed yields each worker's level-up roll, in member
// order, so equal seeds over equal rosters give equal results.
func (m *Manager) AddHoursToSkillInAll(unit proxy.UnitHandle, job, skill string, hours int, seed int64) bool {
	rng := rand.New(rand.NewSource(seed))
	changed := false
	for _, w := range workersOf(unit) {
		if m.AddHoursToSkill(w, job, skill, hours, rng.Intn(100)) {
			changed = true
		}
	}
	return changed
}

// workersOf lists the workers of a unit handle: plain workers for a unit,
// member proxies for a unit proxy.
func workersOf(unit proxy.UnitHandle) []Item {
	var out []Item
	switch u := unit.(type) {
	case *model.Unit:
		for _, mem := range u.Members() {
			if w, ok := mem.(*model.Worker); ok {
				out = append(out, w)
			}
		}
	case *proxy.Unit:
		for _, mem := range u.Members() {
			if mem.Tag() == model.TagWorker {
				out = append(out, mem)
			}
		}
	}
	return out
}

// ReplaceSkillInJob swaps old for repl in the worker's job, in every map
// whose copy already has the job with a skill equal to old. Other maps are
// left alone; nothing is created.
func (m *Manager) ReplaceSkillInJob(worker Item, job string, old, repl model.Skill) bool {
	detail := fmt.Sprintf("%s: %s -> %s", job, old.Name, repl.Name)
	return m.eachWorker(worker, "replace_skill", detail, func(w *model.Worker) bool {
		j := w.Job(job)
		return j != nil && j.ReplaceSkill(old, repl)
	})
}
