package mapstore

import "mapsync.ai/internal/model"

// IDFactory hands out fixture IDs that are unused in every map it was seeded
// from. IDs are allocated lowest-free first.
type IDFactory struct {
	used map[int]bool
	next int
}

func NewIDFactory() *IDFactory {
	return &IDFactory{used: map[int]bool{}}
}

// SeedIDFactory registers every ID reachable in the given maps, including
// the members of units and fortresses.
func SeedIDFactory(maps ...Map) *IDFactory {
	f := NewIDFactory()
	for _, m := range maps {
		for _, loc := range m.AllFixtures() {
			f.registerDeep(loc.Fixture)
		}
	}
	return f
}

func (f *IDFactory) registerDeep(fix model.Fixture) {
	f.Register(fix.ID())
	switch c := fix.(type) {
	case *model.Unit:
		for _, m := range c.Members() {
			f.registerDeep(m)
		}
	case *model.Fortress:
		for _, m := range c.Members() {
			f.registerDeep(m)
		}
	}
}

// Register marks id as used and returns it. Negative IDs are ignored.
func (f *IDFactory) Register(id int) int {
	if id >= 0 {
		f.used[id] = true
	}
	return id
}

func (f *IDFactory) IsUsed(id int) bool { return f.used[id] }

// CreateID returns the lowest unused non-negative ID and marks it used.
func (f *IDFactory) CreateID() int {
	for f.used[f.next] {
		f.next++
	}
	id := f.next
	f.used[id] = true
	return id
}
