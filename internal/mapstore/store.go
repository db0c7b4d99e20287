// Package mapstore defines the map collaborator the synchronization engine
// edits, and an in-memory implementation of it.
package mapstore

import "mapsync.ai/internal/model"

// Map is one map of a map set: a grid of locations, each with terrain and an
// ordered collection of fixtures. Fixture identity is pointer identity; the
// map owns the fixtures it holds.
type Map interface {
	Filename() string
	Dimensions() model.Dimensions
	// Locations lists every point of the grid in row-major order.
	Locations() []model.Point

	Fixtures(p model.Point) []model.Fixture
	AddFixture(p model.Point, f model.Fixture) bool
	RemoveFixture(p model.Point, f model.Fixture) bool
	ReplaceFixture(p model.Point, old, repl model.Fixture)
	AllFixtures() []Located

	BaseTerrain(p model.Point) model.TileType
	SetBaseTerrain(p model.Point, t model.TileType)
	Rivers(p model.Point) []model.River
	AddRivers(p model.Point, rivers ...model.River)
	RemoveRivers(p model.Point, rivers ...model.River)
	Roads(p model.Point) map[model.Direction]int
	SetRoadLevel(p model.Point, d model.Direction, level int)
	Mountainous(p model.Point) bool
	SetMountainous(p model.Point, v bool)

	Players() []model.Player
	AddPlayer(p model.Player)
	CurrentPlayer() model.Player

	Modified() bool
	SetModified(v bool)
}

// Located is a top-level fixture with its location.
type Located struct {
	Point   model.Point
	Fixture model.Fixture
}
