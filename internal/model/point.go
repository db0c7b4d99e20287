package model

import (
	"fmt"
	"strings"
)

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// InvalidPoint marks "no location"; it is never a valid map coordinate.
var InvalidPoint = Point{Row: -1, Col: -1}

func (p Point) Valid() bool { return p.Row >= 0 && p.Col >= 0 }

func (p Point) String() string { return fmt.Sprintf("(%d, %d)", p.Row, p.Col) }

type Dimensions struct {
	Rows int
	Cols int
}

func (d Dimensions) Contains(p Point) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < d.Rows && p.Col < d.Cols
}

// Surrounding returns the points within radius of center (center included),
// clamped to the dimensions, in row-major order.
func (d Dimensions) Surrounding(center Point, radius int) []Point {
	out := make([]Point, 0, (2*radius+1)*(2*radius+1))
	for r := center.Row - radius; r <= center.Row+radius; r++ {
		for c := center.Col - radius; c <= center.Col+radius; c++ {
			p := Point{Row: r, Col: c}
			if d.Contains(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

type Player struct {
	ID      int
	Name    string
	Current bool
}

func (p Player) Independent() bool {
	return strings.EqualFold(strings.TrimSpace(p.Name), "independent")
}

func (p Player) String() string {
	if p.Name == "" {
		return fmt.Sprintf("player %d", p.ID)
	}
	return p.Name
}
