// Package model holds the fixture variants that live on map locations.
//
// Fixture is a closed set: every variant is a pointer type declared in this
// package, and code that needs per-kind behaviour switches on the concrete
// type (or on Tag) instead of probing with ad-hoc casts.
package model

type Tag uint8

const (
	TagUnit Tag = iota + 1
	TagFortress
	TagWorker
	TagAnimal
	TagImplement
	TagResourcePile
	TagForest
	TagGrove
	TagMeadow
	TagShrub
	TagGround
	TagMineralVein
	TagVillage
	TagTown
	TagCache
)

var tagNames = map[Tag]string{
	TagUnit:         "unit",
	TagFortress:     "fortress",
	TagWorker:       "worker",
	TagAnimal:       "animal",
	TagImplement:    "implement",
	TagResourcePile: "resource",
	TagForest:       "forest",
	TagGrove:        "grove",
	TagMeadow:       "meadow",
	TagShrub:        "shrub",
	TagGround:       "ground",
	TagMineralVein:  "mineral",
	TagVillage:      "village",
	TagTown:         "town",
	TagCache:        "cache",
}

func (t Tag) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return "unknown"
}

func ParseTag(s string) (Tag, bool) {
	for t, n := range tagNames {
		if n == s {
			return t, true
		}
	}
	return 0, false
}

// CopyBehavior selects whether a copy keeps fields that only the main map is
// allowed to know.
type CopyBehavior uint8

const (
	KeepAll CopyBehavior = iota
	Zero
)

type Fixture interface {
	ID() int
	Tag() Tag
	Copy(zero CopyBehavior) Fixture
	EqualsIgnoringID(other Fixture) bool

	isFixture()
}

// UnitMember is a fixture that can be held by a Unit.
type UnitMember interface {
	Fixture
	isUnitMember()
}

// FortressMember is a fixture that can be held by a Fortress.
type FortressMember interface {
	Fixture
	isFortressMember()
}

type HasOwner interface {
	Fixture
	Owner() Player
}

type HasMutableOwner interface {
	HasOwner
	SetOwner(p Player)
}

type HasKind interface {
	Fixture
	Kind() string
}

type HasMutableKind interface {
	HasKind
	SetKind(kind string)
}

type HasName interface {
	Fixture
	Name() string
}

type HasMutableName interface {
	HasName
	SetName(name string)
}

// HasPopulation is a fixture whose count can be reduced. A non-positive
// population means "unknown".
type HasPopulation interface {
	Fixture
	Population() int
	WithPopulation(n int, zero CopyBehavior) HasPopulation
}

// HasExtent is a fixture measured in acres. A non-positive extent means
// "unknown".
type HasExtent interface {
	Fixture
	Acres() float64
	WithAcres(acres float64, zero CopyBehavior) HasExtent
}

// Equal reports whether a and b are the same fixture value including ID.
func Equal(a, b Fixture) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID() && a.EqualsIgnoringID(b)
}

// IsContainer reports whether f holds other fixtures.
func IsContainer(f Fixture) bool {
	switch f.(type) {
	case *Unit, *Fortress:
		return true
	default:
		return false
	}
}

type base struct {
	id int
}

func (b *base) ID() int    { return b.id }
func (b *base) isFixture() {}

func sameMembers[T Fixture](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for i, y := range b {
			if used[i] || !Equal(x, y) {
				continue
			}
			used[i] = true
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}

func copyIntMap(m map[int]string) map[int]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[int]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
