package mapstore

import (
	"sort"

	"mapsync.ai/internal/model"
)

type tile struct {
	terrain  model.TileType
	mountain bool
	rivers   map[model.River]bool
	roads    map[model.Direction]int
	fixtures []model.Fixture
}

// Memory is a Map held entirely in memory.
type Memory struct {
	filename string
	dims     model.Dimensions
	tiles    map[model.Point]*tile
	players  []model.Player
	modified bool
}

func NewMemory(filename string, dims model.Dimensions) *Memory {
	return &Memory{
		filename: filename,
		dims:     dims,
		tiles:    map[model.Point]*tile{},
	}
}

func (m *Memory) Filename() string             { return m.filename }
func (m *Memory) SetFilename(name string)      { m.filename = name }
func (m *Memory) Dimensions() model.Dimensions { return m.dims }
func (m *Memory) Modified() bool               { return m.modified }
func (m *Memory) SetModified(v bool)           { m.modified = v }

func (m *Memory) Locations() []model.Point {
	out := make([]model.Point, 0, m.dims.Rows*m.dims.Cols)
	for r := 0; r < m.dims.Rows; r++ {
		for c := 0; c < m.dims.Cols; c++ {
			out = append(out, model.Point{Row: r, Col: c})
		}
	}
	return out
}

func (m *Memory) tileAt(p model.Point) *tile {
	return m.tiles[p]
}

func (m *Memory) ensureTile(p model.Point) *tile {
	t := m.tiles[p]
	if t == nil {
		t = &tile{}
		m.tiles[p] = t
	}
	return t
}

func (m *Memory) Fixtures(p model.Point) []model.Fixture {
	t := m.tileAt(p)
	if t == nil {
		return nil
	}
	out := make([]model.Fixture, len(t.fixtures))
	copy(out, t.fixtures)
	return out
}

// AddFixture appends f at p. It reports false if that exact fixture is
// already there.
func (m *Memory) AddFixture(p model.Point, f model.Fixture) bool {
	t := m.ensureTile(p)
	for _, x := range t.fixtures {
		if x == f {
			return false
		}
	}
	t.fixtures = append(t.fixtures, f)
	m.modified = true
	return true
}

func (m *Memory) RemoveFixture(p model.Point, f model.Fixture) bool {
	t := m.tileAt(p)
	if t == nil {
		return false
	}
	for i, x := range t.fixtures {
		if x == f {
			t.fixtures = append(t.fixtures[:i], t.fixtures[i+1:]...)
			m.modified = true
			return true
		}
	}
	return false
}

// ReplaceFixture puts repl where old was; if old is absent repl is appended.
func (m *Memory) ReplaceFixture(p model.Point, old, repl model.Fixture) {
	t := m.ensureTile(p)
	m.modified = true
	for i, x := range t.fixtures {
		if x == old {
			t.fixtures[i] = repl
			return
		}
	}
	t.fixtures = append(t.fixtures, repl)
}

func (m *Memory) AllFixtures() []Located {
	var out []Located
	for _, p := range m.Locations() {
		t := m.tileAt(p)
		if t == nil {
			continue
		}
		for _, f := range t.fixtures {
			out = append(out, Located{Point: p, Fixture: f})
		}
	}
	return out
}

func (m *Memory) BaseTerrain(p model.Point) model.TileType {
	if t := m.tileAt(p); t != nil {
		return t.terrain
	}
	return model.TileUnknown
}

func (m *Memory) SetBaseTerrain(p model.Point, tt model.TileType) {
	t := m.ensureTile(p)
	if t.terrain == tt {
		return
	}
	t.terrain = tt
	m.modified = true
}

// Rivers returns the rivers at p in ascending order.
func (m *Memory) Rivers(p model.Point) []model.River {
	t := m.tileAt(p)
	if t == nil || len(t.rivers) == 0 {
		return nil
	}
	out := make([]model.River, 0, len(t.rivers))
	for r := range t.rivers {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (m *Memory) AddRivers(p model.Point, rivers ...model.River) {
	if len(rivers) == 0 {
		return
	}
	t := m.ensureTile(p)
	if t.rivers == nil {
		t.rivers = map[model.River]bool{}
	}
	for _, r := range rivers {
		if !t.rivers[r] {
			t.rivers[r] = true
			m.modified = true
		}
	}
}

func (m *Memory) RemoveRivers(p model.Point, rivers ...model.River) {
	t := m.tileAt(p)
	if t == nil {
		return
	}
	for _, r := range rivers {
		if t.rivers[r] {
			delete(t.rivers, r)
			m.modified = true
		}
	}
}

func (m *Memory) Roads(p model.Point) map[model.Direction]int {
	t := m.tileAt(p)
	if t == nil || len(t.roads) == 0 {
		return nil
	}
	out := make(map[model.Direction]int, len(t.roads))
	for d, l := range t.roads {
		out[d] = l
	}
	return out
}

// SetRoadLevel sets the road quality toward d; level 0 removes the road.
func (m *Memory) SetRoadLevel(p model.Point, d model.Direction, level int) {
	t := m.ensureTile(p)
	if level <= 0 {
		if _, ok := t.roads[d]; ok {
			delete(t.roads, d)
			m.modified = true
		}
		return
	}
	if t.roads == nil {
		t.roads = map[model.Direction]int{}
	}
	if t.roads[d] != level {
		t.roads[d] = level
		m.modified = true
	}
}

func (m *Memory) Mountainous(p model.Point) bool {
	if t := m.tileAt(p); t != nil {
		return t.mountain
	}
	return false
}

func (m *Memory) SetMountainous(p model.Point, v bool) {
	t := m.ensureTile(p)
	if t.mountain != v {
		t.mountain = v
		m.modified = true
	}
}

func (m *Memory) Players() []model.Player {
	out := make([]model.Player, len(m.players))
	copy(out, m.players)
	return out
}

// AddPlayer registers p; a player with the same ID is replaced.
func (m *Memory) AddPlayer(p model.Player) {
	for i, x := range m.players {
		if x.ID == p.ID {
			if x != p {
				m.players[i] = p
				m.modified = true
			}
			return
		}
	}
	m.players = append(m.players, p)
	m.modified = true
}

func (m *Memory) CurrentPlayer() model.Player {
	for _, p := range m.players {
		if p.Current {
			return p
		}
	}
	return model.Player{ID: -1, Name: "independent"}
}
