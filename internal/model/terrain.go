package model

type TileType uint8

const (
	TileUnknown TileType = iota
	TileTundra
	TileDesert
	TileOcean
	TilePlains
	TileJungle
	TileSteppe
	TileSwamp
)

var tileTypeNames = [...]string{
	TileUnknown: "unknown",
	TileTundra:  "tundra",
	TileDesert:  "desert",
	TileOcean:   "ocean",
	TilePlains:  "plains",
	TileJungle:  "jungle",
	TileSteppe:  "steppe",
	TileSwamp:   "swamp",
}

func (t TileType) String() string {
	if int(t) < len(tileTypeNames) {
		return tileTypeNames[t]
	}
	return "unknown"
}

func ParseTileType(s string) (TileType, bool) {
	for i, n := range tileTypeNames {
		if n == s {
			return TileType(i), true
		}
	}
	return TileUnknown, false
}

type River uint8

const (
	RiverLake River = iota
	RiverNorth
	RiverEast
	RiverSouth
	RiverWest
)

type Direction uint8

const (
	DirectionNorth Direction = iota
	DirectionNortheast
	DirectionEast
	DirectionSoutheast
	DirectionSouth
	DirectionSouthwest
	DirectionWest
	DirectionNorthwest
)
