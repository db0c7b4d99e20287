package model

type Forest struct {
	base
	kind  string
	Rows  bool
	acres float64
}

func NewForest(kind string, rows bool, acres float64, id int) *Forest {
	return &Forest{base: base{id: id}, kind: kind, Rows: rows, acres: acres}
}

func (f *Forest) Tag() Tag            { return TagForest }
func (f *Forest) Kind() string        { return f.kind }
func (f *Forest) SetKind(kind string) { f.kind = kind }
func (f *Forest) Acres() float64      { return f.acres }

func (f *Forest) WithAcres(acres float64, _ CopyBehavior) HasExtent {
	out := *f
	out.acres = acres
	return &out
}

func (f *Forest) Copy(CopyBehavior) Fixture {
	out := *f
	return &out
}

func (f *Forest) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Forest)
	return ok && f.kind == o.kind && f.Rows == o.Rows && f.acres == o.acres
}

type Meadow struct {
	base
	kind       string
	Field      bool
	Cultivated bool
	Status     string
	acres      float64
}

func NewMeadow(kind string, field, cultivated bool, status string, acres float64, id int) *Meadow {
	return &Meadow{base: base{id: id}, kind: kind, Field: field, Cultivated: cultivated, Status: status, acres: acres}
}

func (m *Meadow) Tag() Tag            { return TagMeadow }
func (m *Meadow) Kind() string        { return m.kind }
func (m *Meadow) SetKind(kind string) { m.kind = kind }
func (m *Meadow) Acres() float64      { return m.acres }

func (m *Meadow) WithAcres(acres float64, _ CopyBehavior) HasExtent {
	out := *m
	out.acres = acres
	return &out
}

func (m *Meadow) Copy(CopyBehavior) Fixture {
	out := *m
	return &out
}

func (m *Meadow) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Meadow)
	return ok && m.kind == o.kind && m.Field == o.Field && m.Cultivated == o.Cultivated &&
		m.Status == o.Status && m.acres == o.acres
}

type Grove struct {
	base
	kind       string
	Orchard    bool
	Cultivated bool
	population int
}

func NewGrove(kind string, orchard, cultivated bool, population, id int) *Grove {
	return &Grove{base: base{id: id}, kind: kind, Orchard: orchard, Cultivated: cultivated, population: population}
}

func (g *Grove) Tag() Tag            { return TagGrove }
func (g *Grove) Kind() string        { return g.kind }
func (g *Grove) SetKind(kind string) { g.kind = kind }
func (g *Grove) Population() int     { return g.population }

func (g *Grove) WithPopulation(n int, _ CopyBehavior) HasPopulation {
	out := *g
	out.population = n
	return &out
}

func (g *Grove) Copy(CopyBehavior) Fixture {
	out := *g
	return &out
}

func (g *Grove) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Grove)
	return ok && g.kind == o.kind && g.Orchard == o.Orchard && g.Cultivated == o.Cultivated &&
		g.population == o.population
}

type Shrub struct {
	base
	kind       string
	population int
}

func NewShrub(kind string, population, id int) *Shrub {
	return &Shrub{base: base{id: id}, kind: kind, population: population}
}

func (s *Shrub) Tag() Tag            { return TagShrub }
func (s *Shrub) Kind() string        { return s.kind }
func (s *Shrub) SetKind(kind string) { s.kind = kind }
func (s *Shrub) Population() int     { return s.population }

func (s *Shrub) WithPopulation(n int, _ CopyBehavior) HasPopulation {
	out := *s
	out.population = n
	return &out
}

func (s *Shrub) Copy(CopyBehavior) Fixture {
	out := *s
	return &out
}

func (s *Shrub) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Shrub)
	return ok && s.kind == o.kind && s.population == o.population
}

type Ground struct {
	base
	kind    string
	Exposed bool
}

func NewGround(kind string, exposed bool, id int) *Ground {
	return &Ground{base: base{id: id}, kind: kind, Exposed: exposed}
}

func (g *Ground) Tag() Tag     { return TagGround }
func (g *Ground) Kind() string { return g.kind }

func (g *Ground) Copy(CopyBehavior) Fixture {
	out := *g
	return &out
}

func (g *Ground) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Ground)
	return ok && g.kind == o.kind && g.Exposed == o.Exposed
}

type MineralVein struct {
	base
	kind    string
	Exposed bool
	DC      int
}

func NewMineralVein(kind string, exposed bool, dc, id int) *MineralVein {
	return &MineralVein{base: base{id: id}, kind: kind, Exposed: exposed, DC: dc}
}

func (m *MineralVein) Tag() Tag     { return TagMineralVein }
func (m *MineralVein) Kind() string { return m.kind }

func (m *MineralVein) Copy(zero CopyBehavior) Fixture {
	out := *m
	if zero == Zero {
		out.DC = 0
	}
	return &out
}

func (m *MineralVein) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*MineralVein)
	return ok && m.kind == o.kind && m.Exposed == o.Exposed && m.DC == o.DC
}

type Cache struct {
	base
	kind     string
	Contents string
}

func NewCache(kind, contents string, id int) *Cache {
	return &Cache{base: base{id: id}, kind: kind, Contents: contents}
}

func (c *Cache) Tag() Tag     { return TagCache }
func (c *Cache) Kind() string { return c.kind }

func (c *Cache) Copy(CopyBehavior) Fixture {
	out := *c
	return &out
}

func (c *Cache) EqualsIgnoringID(other Fixture) bool {
	o, ok := other.(*Cache)
	return ok && c.kind == o.kind && c.Contents == o.Contents
}
