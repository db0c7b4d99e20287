package model

import "sort"

type Unit struct {
	base
	owner   Player
	kind    string
	name    string
	members []UnitMember
	orders  map[int]string
	results map[int]string
}

func NewUnit(owner Player, kind, name string, id int) *Unit {
	return &Unit{base: base{id: id}, owner: owner, kind: kind, name: name}
}

func (u *Unit) Tag() Tag            { return TagUnit }
func (u *Unit) Owner() Player       { return u.owner }
func (u *Unit) SetOwner(p Player)   { u.owner = p }
func (u *Unit) Kind() string        { return u.kind }
func (u *Unit) SetKind(kind string) { u.kind = kind }
func (u *Unit) Name() string        { return u.name }
func (u *Unit) SetName(name string) { u.name = name }
func (u *Unit) Empty() bool         { return len(u.members) == 0 }
func (u *Unit) isFortressMember()   {}

func (u *Unit) Orders(turn int) string  { return u.orders[turn] }
func (u *Unit) Results(turn int) string { return u.results[turn] }

// Members returns the unit's members in insertion order. The slice is a copy;
// the members are not.
func (u *Unit) Members() []UnitMember {
	out := make([]UnitMember, len(u.members))
	copy(out, u.members)
	return out
}

// AddMember appends m unless that exact member is already present.
func (u *Unit) AddMember(m UnitMember) {
	for _, x := range u.members {
		if x == m {
			return
		}
	}
	u.members = append(u.members, m)
}

// RemoveMember removes m by identity.
func (u *Unit) RemoveMember(m UnitMember) bool {
	for i, x := range u.members {
		if x == m {
			u.members = append(u.members[:i], u.members[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceMember swaps old for repl in place; if old is absent repl is appended.
func (u *Unit) ReplaceMember(old, repl UnitMember) {
	for i, x := range u.members {
		if x == old {
			u.members[i] = repl
			return
		}
	}
	u.members = append(u.members, repl)
}

func (u *Unit) SortMembers(less func(a, b UnitMember) bool) {
	sort.SliceStable(u.members, func(i, j int) bool { return less(u.members[i], u.members[j]) })
}

func (u *Unit) SetOrders(turn int, orders string) {
	if u.orders == nil {
		u.orders = map[int]string{}
	}
	u.orders[turn] = orders
}

func (u *Unit) SetResults(turn int, results string) {
	if u.results == nil {
		u.results = map[int]string{}
	}
	u.results[turn] = results
}

func (u *Unit) AllOrders() map[int]string  { return copyIntMap(u.orders) }
func (u *Unit) AllResults() map[int]string { return copyIntMap(u.results) }

func (u *Unit) Copy(zero CopyBehavior) Fixture {
	out := &Unit{base: u.base, owner: u.owner, kind: u.kind, name: u.name}
	for _, m := range u.members {
		out.members = append(out.members, m.Copy(zero).(UnitMember))
	}
	if zero == KeepAll {
		out.orders = copyIntMap(u.orders)
		out.results = copyIntMap(u.results)
	}
	return out
}

func (u *Unit) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Unit)
	if !ok {
		return false
	}
	return u.owner.ID == o.owner.ID && u.kind == o.kind && u.name == o.name &&
		sameMembers(u.members, o.members)
}
