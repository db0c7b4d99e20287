package proxy

import "mapsync.ai/internal/model"

// MoveLockStep moves the i-th copy of member from the i-th copy of from to
// the i-th copy of to, for every i. Copies are paired by position, not by
// value, because members can be indistinguishable by value.
//
// It applies only when all three proxies have the same number of copies, the
// i-th copies of all three live in the same map, and each member copy is in
// its from copy. Otherwise it changes nothing and reports false so the
// caller can fall back to per-map matching.
func MoveLockStep(member *Member, from, to *Unit) bool {
	n := member.Len()
	if from.Len() != n || to.Len() != n || n == 0 {
		return false
	}
	members, froms, tos := member.Refs(), from.Refs(), to.Refs()
	for i := 0; i < n; i++ {
		if members[i].Map != froms[i].Map || tos[i].Map != froms[i].Map {
			return false
		}
		if !holds(froms[i].Item, members[i].Item) {
			return false
		}
	}
	for i := 0; i < n; i++ {
		froms[i].Item.RemoveMember(members[i].Item)
		tos[i].Item.AddMember(members[i].Item)
		froms[i].Map.SetModified(true)
	}
	return true
}

func holds(u *model.Unit, m model.UnitMember) bool {
	for _, x := range u.Members() {
		if x == m {
			return true
		}
	}
	return false
}
