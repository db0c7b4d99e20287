package model

import "sort"

type Fortress struct {
	base
	owner   Player
	name    string
	Size    string
	members []FortressMember
}

func NewFortress(owner Player, name string, id int) *Fortress {
	return &Fortress{base: base{id: id}, owner: owner, name: name, Size: "small"}
}

func (f *Fortress) Tag() Tag            { return TagFortress }
func (f *Fortress) Owner() Player       { return f.owner }
func (f *Fortress) SetOwner(p Player)   { f.owner = p }
func (f *Fortress) Name() string        { return f.name }
func (f *Fortress) SetName(name string) { f.name = name }

func (f *Fortress) Members() []FortressMember {
	out := make([]FortressMember, len(f.members))
	copy(out, f.members)
	return out
}

func (f *Fortress) AddMember(m FortressMember) {
	for _, x := range f.members {
		if x == m {
			return
		}
	}
	f.members = append(f.members, m)
}

func (f *Fortress) RemoveMember(m FortressMember) bool {
	for i, x := range f.members {
		if x == m {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return true
		}
	}
	return false
}

func (f *Fortress) ReplaceMember(old, repl FortressMember) {
	for i, x := range f.members {
		if x == old {
			f.members[i] = repl
			return
		}
	}
	f.members = append(f.members, repl)
}

func (f *Fortress) SortMembers(less func(a, b FortressMember) bool) {
	sort.SliceStable(f.members, func(i, j int) bool { return less(f.members[i], f.members[j]) })
}

func (f *Fortress) Copy(zero CopyBehavior) Fixture {
	out := &Fortress{base: f.base, owner: f.owner, name: f.name, Size: f.Size}
	for _, m := range f.members {
		out.members = append(out.members, m.Copy(zero).(FortressMember))
	}
	return out
}

func (f *Fortress) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Fortress)
	if !ok {
		return false
	}
	return f.owner.ID == o.owner.ID && f.name == o.name && f.Size == o.Size &&
		sameMembers(f.members, o.members)
}
