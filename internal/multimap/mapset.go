package multimap

import (
	"errors"
	"fmt"

	"mapsync.ai/internal/mapstore"
)

var ErrDimensionMismatch = errors.New("map dimensions differ")

// MapSet is one main map plus ordered subordinate maps sharing its
// dimensions.
type MapSet struct {
	main mapstore.Map
	subs []mapstore.Map
}

func NewMapSet(main mapstore.Map, subs ...mapstore.Map) (*MapSet, error) {
	if main == nil {
		return nil, fmt.Errorf("nil main map")
	}
	s := &MapSet{main: main}
	for _, m := range subs {
		if err := s.AddSubordinate(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MapSet) AddSubordinate(m mapstore.Map) error {
	if m == nil {
		return fmt.Errorf("nil subordinate map")
	}
	if m.Dimensions() != s.main.Dimensions() {
		return fmt.Errorf("%s: %w: %v vs main %v", m.Filename(), ErrDimensionMismatch, m.Dimensions(), s.main.Dimensions())
	}
	s.subs = append(s.subs, m)
	return nil
}

func (s *MapSet) Main() mapstore.Map { return s.main }

func (s *MapSet) Subordinates() []mapstore.Map {
	out := make([]mapstore.Map, len(s.subs))
	copy(out, s.subs)
	return out
}

// All lists the main map first, then subordinates in registration order.
func (s *MapSet) All() []mapstore.Map {
	out := make([]mapstore.Map, 0, 1+len(s.subs))
	out = append(out, s.main)
	return append(out, s.subs...)
}

func (s *MapSet) HasSubordinates() bool { return len(s.subs) > 0 }
