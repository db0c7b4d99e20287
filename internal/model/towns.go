package model

type Village struct {
	base
	owner  Player
	name   string
	Race   string
	Status string
	// Population is the detailed headcount; 0 when unknown.
	Population int
}

func NewVillage(owner Player, name, race, status string, id int) *Village {
	return &Village{base: base{id: id}, owner: owner, name: name, Race: race, Status: status}
}

func (v *Village) Tag() Tag            { return TagVillage }
func (v *Village) Owner() Player       { return v.owner }
func (v *Village) SetOwner(p Player)   { v.owner = p }
func (v *Village) Name() string        { return v.name }
func (v *Village) SetName(name string) { v.name = name }

func (v *Village) Copy(zero CopyBehavior) Fixture {
	out := *v
	if zero == Zero {
		out.Population = 0
	}
	return &out
}

func (v *Village) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Village)
	return ok && v.owner.ID == o.owner.ID && v.name == o.name && v.Race == o.Race &&
		v.Status == o.Status && v.Population == o.Population
}

type Town struct {
	base
	owner      Player
	name       string
	Size       string
	Status     string
	Population int
}

func NewTown(owner Player, name, size, status string, id int) *Town {
	return &Town{base: base{id: id}, owner: owner, name: name, Size: size, Status: status}
}

func (t *Town) Tag() Tag            { return TagTown }
func (t *Town) Owner() Player       { return t.owner }
func (t *Town) SetOwner(p Player)   { t.owner = p }
func (t *Town) Name() string        { return t.name }
func (t *Town) SetName(name string) { t.name = name }

func (t *Town) Copy(zero CopyBehavior) Fixture {
	out := *t
	if zero == Zero {
		out.Population = 0
	}
	return &out
}

func (t *Town) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Town)
	return ok && t.owner.ID == o.owner.ID && t.name == o.name && t.Size == o.Size &&
		t.Status == o.Status && t.Population == o.Population
}
