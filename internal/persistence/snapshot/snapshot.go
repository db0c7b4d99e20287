package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

const Version = 1

type Header struct {
	Version  int `json:"version"`
	Rows     int `json:"rows"`
	Cols     int `json:"cols"`
	Fixtures int `json:"fixtures"`
}

type MapV1 struct {
	Header Header `json:"header"`

	Players []PlayerV1 `json:"players"`
	Tiles   []TileV1   `json:"tiles"`
}

type PlayerV1 struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Current bool   `json:"current,omitempty"`
}

// TileV1 is one location that carries terrain or fixtures. Empty locations
// are not stored.
type TileV1 struct {
	Row         int         `json:"row"`
	Col         int         `json:"col"`
	Terrain     string      `json:"terrain,omitempty"`
	Mountainous bool        `json:"mountainous,omitempty"`
	Rivers      []uint8     `json:"rivers,omitempty"`
	Roads       []RoadV1    `json:"roads,omitempty"`
	Fixtures    []FixtureV1 `json:"fixtures,omitempty"`
}

type RoadV1 struct {
	Direction uint8 `json:"direction"`
	Level     int   `json:"level"`
}

// FixtureV1 flattens every fixture variant into one record; Tag selects
// which fields are meaningful.
type FixtureV1 struct {
	Tag   string `json:"tag"`
	ID    int    `json:"id"`
	Kind  string `json:"kind,omitempty"` // race for workers and villages
	Name  string `json:"name,omitempty"`
	Owner int    `json:"owner,omitempty"`

	Status   string `json:"status,omitempty"`
	Contents string `json:"contents,omitempty"`
	Size     string `json:"size,omitempty"`

	Rows       bool `json:"rows,omitempty"`
	Exposed    bool `json:"exposed,omitempty"`
	Field      bool `json:"field,omitempty"`
	Cultivated bool `json:"cultivated,omitempty"`
	Orchard    bool `json:"orchard,omitempty"`
	Talking    bool `json:"talking,omitempty"`

	Population int     `json:"population,omitempty"`
	Acres      float64 `json:"acres,omitempty"`
	Count      int     `json:"count,omitempty"`
	DC         int     `json:"dc,omitempty"`
	Turn       int     `json:"turn,omitempty"`

	Quantity float64 `json:"quantity,omitempty"`
	Units    string  `json:"units,omitempty"`

	Stats   *StatsV1       `json:"stats,omitempty"`
	Jobs    []JobV1        `json:"jobs,omitempty"`
	Notes   map[int]string `json:"notes,omitempty"`
	Orders  map[int]string `json:"orders,omitempty"`
	Results map[int]string `json:"results,omitempty"`

	Members []FixtureV1 `json:"members,omitempty"`
}

type StatsV1 struct {
	HP           int `json:"hp"`
	MaxHP        int `json:"max_hp"`
	Strength     int `json:"str"`
	Dexterity    int `json:"dex"`
	Constitution int `json:"con"`
	Intelligence int `json:"int"`
	Wisdom       int `json:"wis"`
	Charisma     int `json:"cha"`
}

type JobV1 struct {
	Name   string    `json:"name"`
	Level  int       `json:"level"`
	Skills []SkillV1 `json:"skills,omitempty"`
}

type SkillV1 struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Hours int    `json:"hours"`
}

func WriteSnapshot(path string, snap MapV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (MapV1, error) {
	var snap MapV1
	br, closeFn, err := openSnapshot(path)
	if err != nil {
		return snap, err
	}
	defer closeFn()

	// The header line is repeated inside the gob body.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	br, closeFn, err := openSnapshot(path)
	if err != nil {
		return h, err
	}
	defer closeFn()
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func openSnapshot(path string) (*bufio.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return bufio.NewReaderSize(dec, 256*1024), func() {
		dec.Close()
		_ = f.Close()
	}, nil
}

// Save exports m and writes it to path.
func Save(path string, m mapstore.Map) error {
	return WriteSnapshot(path, Export(m))
}

// Load reads the snapshot at path into a fresh in-memory map named after
// path. The map starts unmodified.
func Load(path string) (*mapstore.Memory, error) {
	snap, err := ReadSnapshot(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	m, err := Import(path, snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return m, nil
}

func Export(m mapstore.Map) MapV1 {
	dims := m.Dimensions()
	snap := MapV1{Header: Header{Version: Version, Rows: dims.Rows, Cols: dims.Cols}}
	for _, p := range m.Players() {
		snap.Players = append(snap.Players, PlayerV1{ID: p.ID, Name: p.Name, Current: p.Current})
	}
	for _, p := range m.Locations() {
		t := TileV1{Row: p.Row, Col: p.Col, Mountainous: m.Mountainous(p)}
		if tt := m.BaseTerrain(p); tt != model.TileUnknown {
			t.Terrain = tt.String()
		}
		for _, r := range m.Rivers(p) {
			t.Rivers = append(t.Rivers, uint8(r))
		}
		for d, l := range m.Roads(p) {
			t.Roads = append(t.Roads, RoadV1{Direction: uint8(d), Level: l})
		}
		sort.Slice(t.Roads, func(i, j int) bool { return t.Roads[i].Direction < t.Roads[j].Direction })
		for _, f := range m.Fixtures(p) {
			t.Fixtures = append(t.Fixtures, exportFixture(f))
			snap.Header.Fixtures++
		}
		if t.Terrain == "" && !t.Mountainous && len(t.Rivers) == 0 && len(t.Roads) == 0 && len(t.Fixtures) == 0 {
			continue
		}
		snap.Tiles = append(snap.Tiles, t)
	}
	return snap
}

func Import(filename string, snap MapV1) (*mapstore.Memory, error) {
	if snap.Header.Version != Version {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	dims := model.Dimensions{Rows: snap.Header.Rows, Cols: snap.Header.Cols}
	m := mapstore.NewMemory(filename, dims)
	players := map[int]model.Player{}
	for _, p := range snap.Players {
		pl := model.Player{ID: p.ID, Name: p.Name, Current: p.Current}
		players[p.ID] = pl
		m.AddPlayer(pl)
	}
	owner := func(id int) model.Player {
		if p, ok := players[id]; ok {
			return p
		}
		return model.Player{ID: id}
	}
	for _, t := range snap.Tiles {
		p := model.Point{Row: t.Row, Col: t.Col}
		if !dims.Contains(p) {
			return nil, fmt.Errorf("tile %v outside %dx%d", p, dims.Rows, dims.Cols)
		}
		if t.Terrain != "" {
			tt, ok := model.ParseTileType(t.Terrain)
			if !ok {
				return nil, fmt.Errorf("tile %v: unknown terrain %q", p, t.Terrain)
			}
			m.SetBaseTerrain(p, tt)
		}
		m.SetMountainous(p, t.Mountainous)
		for _, r := range t.Rivers {
			m.AddRivers(p, model.River(r))
		}
		for _, r := range t.Roads {
			m.SetRoadLevel(p, model.Direction(r.Direction), r.Level)
		}
		for i, fv := range t.Fixtures {
			f, err := importFixture(fv, owner)
			if err != nil {
				return nil, fmt.Errorf("tile %v fixture %d: %w", p, i, err)
			}
			m.AddFixture(p, f)
		}
	}
	m.SetModified(false)
	return m, nil
}

func exportFixture(f model.Fixture) FixtureV1 {
	out := FixtureV1{Tag: f.Tag().String(), ID: f.ID()}
	if k, ok := f.(model.HasKind); ok {
		out.Kind = k.Kind()
	}
	if n, ok := f.(model.HasName); ok {
		out.Name = n.Name()
	}
	if o, ok := f.(model.HasOwner); ok {
		out.Owner = o.Owner().ID
	}
	switch v := f.(type) {
	case *model.Unit:
		out.Orders = v.AllOrders()
		out.Results = v.AllResults()
		for _, m := range v.Members() {
			out.Members = append(out.Members, exportFixture(m))
		}
	case *model.Fortress:
		out.Size = v.Size
		for _, m := range v.Members() {
			out.Members = append(out.Members, exportFixture(m))
		}
	case *model.Worker:
		out.Kind = v.Race()
		if v.Stats != nil {
			s := StatsV1(*v.Stats)
			out.Stats = &s
		}
		out.Notes = v.AllNotes()
		for _, j := range v.Jobs() {
			jv := JobV1{Name: j.Name, Level: j.Level}
			for _, s := range j.Skills() {
				jv.Skills = append(jv.Skills, SkillV1(*s))
			}
			out.Jobs = append(out.Jobs, jv)
		}
	case *model.Animal:
		out.Status = v.Status
		out.Talking = v.Talking
		out.Population = v.Population()
		out.Turn = v.Born
	case *model.Implement:
		out.Count = v.Count
	case *model.ResourcePile:
		out.Contents = v.Contents
		out.Quantity = v.Quantity.Number
		out.Units = v.Quantity.Units
		out.Turn = v.Created
	case *model.Forest:
		out.Rows = v.Rows
		out.Acres = v.Acres()
	case *model.Meadow:
		out.Field = v.Field
		out.Cultivated = v.Cultivated
		out.Status = v.Status
		out.Acres = v.Acres()
	case *model.Grove:
		out.Orchard = v.Orchard
		out.Cultivated = v.Cultivated
		out.Population = v.Population()
	case *model.Shrub:
		out.Population = v.Population()
	case *model.Ground:
		out.Exposed = v.Exposed
	case *model.MineralVein:
		out.Exposed = v.Exposed
		out.DC = v.DC
	case *model.Village:
		out.Status = v.Status
		out.Kind = v.Race
		out.Population = v.Population
	case *model.Town:
		out.Size = v.Size
		out.Status = v.Status
		out.Population = v.Population
	case *model.Cache:
		out.Contents = v.Contents
	}
	return out
}

func importFixture(fv FixtureV1, owner func(int) model.Player) (model.Fixture, error) {
	tag, ok := model.ParseTag(fv.Tag)
	if !ok {
		return nil, fmt.Errorf("unknown fixture tag %q", fv.Tag)
	}
	switch tag {
	case model.TagUnit:
		u := model.NewUnit(owner(fv.Owner), fv.Kind, fv.Name, fv.ID)
		for turn, o := range fv.Orders {
			u.SetOrders(turn, o)
		}
		for turn, r := range fv.Results {
			u.SetResults(turn, r)
		}
		for i, mv := range fv.Members {
			f, err := importFixture(mv, owner)
			if err != nil {
				return nil, fmt.Errorf("member %d: %w", i, err)
			}
			m, ok := f.(model.UnitMember)
			if !ok {
				return nil, fmt.Errorf("member %d: %s cannot belong to a unit", i, f.Tag())
			}
			u.AddMember(m)
		}
		return u, nil
	case model.TagFortress:
		fort := model.NewFortress(owner(fv.Owner), fv.Name, fv.ID)
		if fv.Size != "" {
			fort.Size = fv.Size
		}
		for i, mv := range fv.Members {
			f, err := importFixture(mv, owner)
			if err != nil {
				return nil, fmt.Errorf("member %d: %w", i, err)
			}
			m, ok := f.(model.FortressMember)
			if !ok {
				return nil, fmt.Errorf("member %d: %s cannot belong to a fortress", i, f.Tag())
			}
			fort.AddMember(m)
		}
		return fort, nil
	case model.TagWorker:
		w := model.NewWorker(fv.Name, fv.Kind, fv.ID)
		if fv.Stats != nil {
			s := model.WorkerStats(*fv.Stats)
			w.Stats = &s
		}
		for pid, note := range fv.Notes {
			w.SetNote(pid, note)
		}
		for _, jv := range fv.Jobs {
			j := model.Job{Name: jv.Name, Level: jv.Level}
			for _, s := range jv.Skills {
				j.AddSkill(model.Skill(s))
			}
			w.AddJob(j)
		}
		return w, nil
	case model.TagAnimal:
		a := model.NewAnimal(fv.Kind, fv.Status, fv.Population, fv.ID)
		a.Talking = fv.Talking
		a.Born = fv.Turn
		return a, nil
	case model.TagImplement:
		return model.NewImplement(fv.Kind, fv.Count, fv.ID), nil
	case model.TagResourcePile:
		r := model.NewResourcePile(fv.Kind, fv.Contents, model.Quantity{Number: fv.Quantity, Units: fv.Units}, fv.ID)
		r.Created = fv.Turn
		return r, nil
	case model.TagForest:
		return model.NewForest(fv.Kind, fv.Rows, fv.Acres, fv.ID), nil
	case model.TagMeadow:
		return model.NewMeadow(fv.Kind, fv.Field, fv.Cultivated, fv.Status, fv.Acres, fv.ID), nil
	case model.TagGrove:
		return model.NewGrove(fv.Kind, fv.Orchard, fv.Cultivated, fv.Population, fv.ID), nil
	case model.TagShrub:
		return model.NewShrub(fv.Kind, fv.Population, fv.ID), nil
	case model.TagGround:
		return model.NewGround(fv.Kind, fv.Exposed, fv.ID), nil
	case model.TagMineralVein:
		return model.NewMineralVein(fv.Kind, fv.Exposed, fv.DC, fv.ID), nil
	case model.TagVillage:
		v := model.NewVillage(owner(fv.Owner), fv.Name, fv.Kind, fv.Status, fv.ID)
		v.Population = fv.Population
		return v, nil
	case model.TagTown:
		t := model.NewTown(owner(fv.Owner), fv.Name, fv.Size, fv.Status, fv.ID)
		t.Population = fv.Population
		return t, nil
	case model.TagCache:
		return model.NewCache(fv.Kind, fv.Contents, fv.ID), nil
	default:
		return nil, fmt.Errorf("unhandled fixture tag %q", fv.Tag)
	}
}
