package model

type WorkerStats struct {
	HP           int
	MaxHP        int
	Strength     int
	Dexterity    int
	Constitution int
	Intelligence int
	Wisdom       int
	Charisma     int
}

type Worker struct {
	base
	name  string
	race  string
	Stats *WorkerStats
	jobs  []*Job
	notes map[int]string
}

func NewWorker(name, race string, id int) *Worker {
	return &Worker{base: base{id: id}, name: name, race: race}
}

func (w *Worker) Tag() Tag            { return TagWorker }
func (w *Worker) Name() string        { return w.name }
func (w *Worker) SetName(name string) { w.name = name }
func (w *Worker) Race() string        { return w.race }
func (w *Worker) isUnitMember()       {}

// Kind is the worker's race; changing a worker's kind changes its race.
func (w *Worker) Kind() string        { return w.race }
func (w *Worker) SetKind(kind string) { w.race = kind }

func (w *Worker) Note(playerID int) string { return w.notes[playerID] }

func (w *Worker) SetNote(playerID int, note string) {
	if w.notes == nil {
		w.notes = map[int]string{}
	}
	w.notes[playerID] = note
}

func (w *Worker) AllNotes() map[int]string { return copyIntMap(w.notes) }

func (w *Worker) Jobs() []*Job {
	out := make([]*Job, len(w.jobs))
	copy(out, w.jobs)
	return out
}

// Job looks a job up by name. The returned pointer is owned by the worker.
func (w *Worker) Job(name string) *Job {
	for _, j := range w.jobs {
		if j.Name == name {
			return j
		}
	}
	return nil
}

// AddJob stores a copy of job. It reports false if a job of that name is
// already present. Look the job up again with Job to edit the stored copy.
func (w *Worker) AddJob(job Job) bool {
	if w.Job(job.Name) != nil {
		return false
	}
	w.jobs = append(w.jobs, job.clone())
	return true
}

func (w *Worker) Copy(zero CopyBehavior) Fixture {
	out := &Worker{base: w.base, name: w.name, race: w.race}
	for _, j := range w.jobs {
		out.jobs = append(out.jobs, j.clone())
	}
	if zero == KeepAll {
		if w.Stats != nil {
			s := *w.Stats
			out.Stats = &s
		}
		out.notes = copyIntMap(w.notes)
	}
	return out
}

func (w *Worker) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Worker)
	if !ok {
		return false
	}
	if w.name != o.name || w.race != o.race {
		return false
	}
	if (w.Stats == nil) != (o.Stats == nil) || (w.Stats != nil && *w.Stats != *o.Stats) {
		return false
	}
	if len(w.jobs) != len(o.jobs) {
		return false
	}
	for _, j := range w.jobs {
		oj := o.Job(j.Name)
		if oj == nil || !j.Equal(oj) {
			return false
		}
	}
	return true
}

type Job struct {
	Name   string
	Level  int
	skills []*Skill
}

func (j *Job) Skills() []*Skill {
	out := make([]*Skill, len(j.skills))
	copy(out, j.skills)
	return out
}

func (j *Job) Skill(name string) *Skill {
	for _, s := range j.skills {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddSkill stores a copy of skill; false if one of that name exists.
func (j *Job) AddSkill(skill Skill) bool {
	if j.Skill(skill.Name) != nil {
		return false
	}
	s := skill
	j.skills = append(j.skills, &s)
	return true
}

// ReplaceSkill swaps the first skill equal to old for a copy of repl. It
// reports false, changing nothing, when no equal skill is present.
func (j *Job) ReplaceSkill(old, repl Skill) bool {
	for i, s := range j.skills {
		if *s == old {
			r := repl
			j.skills[i] = &r
			return true
		}
	}
	return false
}

func (j *Job) Equal(o *Job) bool {
	if j.Name != o.Name || j.Level != o.Level || len(j.skills) != len(o.skills) {
		return false
	}
	for _, s := range j.skills {
		os := o.Skill(s.Name)
		if os == nil || *os != *s {
			return false
		}
	}
	return true
}

func (j Job) clone() *Job {
	out := &Job{Name: j.Name, Level: j.Level}
	for _, s := range j.skills {
		c := *s
		out.skills = append(out.skills, &c)
	}
	return out
}

type Skill struct {
	Name  string
	Level int
	Hours int
}

// AddHours accumulates experience. condition is a roll in [0, 100): once the
// accumulated hours reach it the skill gains a level and the hours reset.
func (s *Skill) AddHours(hours, condition int) {
	s.Hours += hours
	if condition <= s.Hours {
		s.Level++
		s.Hours = 0
	}
}
