package model

type Quantity struct {
	Number float64
	Units  string
}

type ResourcePile struct {
	base
	kind     string
	Contents string
	Quantity Quantity
	// Created is the turn the pile was made; negative when unknown.
	Created int
}

func NewResourcePile(kind, contents string, qty Quantity, id int) *ResourcePile {
	return &ResourcePile{base: base{id: id}, kind: kind, Contents: contents, Quantity: qty, Created: -1}
}

func (r *ResourcePile) Tag() Tag            { return TagResourcePile }
func (r *ResourcePile) Kind() string        { return r.kind }
func (r *ResourcePile) SetKind(kind string) { r.kind = kind }
func (r *ResourcePile) isUnitMember()       {}
func (r *ResourcePile) isFortressMember()   {}

// Split returns a new pile holding qty units of the same resource under id.
func (r *ResourcePile) Split(id int, qty float64) *ResourcePile {
	out := *r
	out.base = base{id: id}
	out.Quantity.Number = qty
	return &out
}

func (r *ResourcePile) Copy(zero CopyBehavior) Fixture {
	out := *r
	if zero == Zero {
		out.Created = -1
	}
	return &out
}

func (r *ResourcePile) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*ResourcePile)
	return ok && r.kind == o.kind && r.Contents == o.Contents && r.Quantity == o.Quantity &&
		r.Created == o.Created
}

type Implement struct {
	base
	kind  string
	Count int
}

func NewImplement(kind string, count, id int) *Implement {
	return &Implement{base: base{id: id}, kind: kind, Count: count}
}

func (i *Implement) Tag() Tag            { return TagImplement }
func (i *Implement) Kind() string        { return i.kind }
func (i *Implement) SetKind(kind string) { i.kind = kind }
func (i *Implement) isUnitMember()       {}
func (i *Implement) isFortressMember()   {}

func (i *Implement) Copy(CopyBehavior) Fixture {
	out := *i
	return &out
}

func (i *Implement) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Implement)
	return ok && i.kind == o.kind && i.Count == o.Count
}

type Animal struct {
	base
	kind       string
	Status     string
	Talking    bool
	population int
	// Born is the turn of birth; negative when unknown.
	Born int
}

func NewAnimal(kind, status string, population, id int) *Animal {
	return &Animal{base: base{id: id}, kind: kind, Status: status, population: population, Born: -1}
}

func (a *Animal) Tag() Tag            { return TagAnimal }
func (a *Animal) Kind() string        { return a.kind }
func (a *Animal) SetKind(kind string) { a.kind = kind }
func (a *Animal) Population() int     { return a.population }
func (a *Animal) isUnitMember()       {}

func (a *Animal) WithPopulation(n int, zero CopyBehavior) HasPopulation {
	out := a.Copy(zero).(*Animal)
	out.population = n
	return out
}

func (a *Animal) Copy(zero CopyBehavior) Fixture {
	out := *a
	if zero == Zero {
		out.Born = -1
	}
	return &out
}

func (a *Animal) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Animal)
	return ok && a.kind == o.kind && a.Status == o.Status && a.Talking == o.Talking &&
		a.population == o.population && a.Born == o.Born
}
