package main

import (
	"fmt"

	"mapsync.ai/internal/flatten"
	"mapsync.ai/internal/match"
	"mapsync.ai/internal/model"
	"mapsync.ai/internal/multimap"
)

type report struct {
	Proposals int      `json:"proposals"`
	Applied   int      `json:"applied"`
	Lines     []string `json:"lines,omitempty"`
}

func (s *session) dedupe(apply bool) report {
	var r report
	for _, p := range s.mgr.ConditionallyRemoveAllDuplicates() {
		r.Proposals++
		r.Lines = append(r.Lines, describeRemoval(p))
		if apply {
			p.Remove()
			r.Applied++
		}
	}
	return r
}

func (s *session) coalesce(apply bool) report {
	var r report
	combiners := multimap.DefaultCombiners()
	for _, p := range s.mgr.MapSet().Main().Locations() {
		for _, c := range s.mgr.ConditionallyCoalesceResources(p, combiners) {
			r.Proposals++
			r.Lines = append(r.Lines, describeCombine(c))
			if apply {
				c.Combine()
				r.Applied++
			}
		}
	}
	return r
}

// propagate copies main-map knowledge around p into every subordinate map.
func (s *session) propagate(p model.Point) report {
	var r report
	for _, q := range s.mgr.MapSet().Main().Dimensions().Surrounding(p, 1) {
		if s.mgr.PropagateTerrain(q) {
			r.Applied++
		}
	}
	if s.mgr.PropagateNoticed(p, sightNoticer, s.rng) {
		r.Applied++
	}
	return r
}

// transfer moves qty of the main map's pile pileID into the unit or fortress
// destID in every map that has both. New pile IDs come from the session's
// registrar.
func (s *session) transfer(pileID, destID int, qty float64) (report, error) {
	main := s.mgr.MapSet().Main()
	scope := flatten.MapDeep(main)
	pile, _, ok := match.First(scope, func(r *model.ResourcePile) bool { return r.ID() == pileID })
	if !ok {
		return report{}, fmt.Errorf("%s: no resource pile #%d", main.Filename(), pileID)
	}
	dest, _, ok := match.First(scope, func(f model.Fixture) bool { return f.ID() == destID && model.IsContainer(f) })
	if !ok {
		return report{}, fmt.Errorf("%s: no unit or fortress #%d", main.Filename(), destID)
	}
	var r report
	if s.mgr.TransferResource(pile, dest, qty, s.ids.CreateID) {
		r.Applied = 1
	}
	return r, nil
}

// sightNoticer approximates what a unit standing at from would see. Mobile
// fixtures and caches are never noticed from a neighbouring tile.
var sightNoticer = multimap.NoticerFunc(func(from, p model.Point, f model.Fixture) multimap.Notice {
	if from == p {
		return multimap.NoticeAlways
	}
	switch f.Tag() {
	case model.TagUnit, model.TagCache, model.TagWorker, model.TagAnimal:
		return multimap.NoticeNever
	case model.TagTown, model.TagVillage, model.TagFortress, model.TagForest, model.TagMeadow:
		return multimap.NoticeAlways
	default:
		return multimap.NoticeSometimes
	}
})

func describeRemoval(p multimap.ProposedRemoval) string {
	return fmt.Sprintf("%s %v: %s duplicated %d time(s)", p.MapFilename, p.Point, fixtureLabel(p.Original), len(p.Duplicates))
}

func describeCombine(c multimap.ProposedCombine) string {
	return fmt.Sprintf("%s: combine %d %s", c.Context, len(c.Matched), c.Plural)
}

func fixtureLabel(f model.Fixture) string {
	label := f.Tag().String()
	if k, ok := f.(model.HasKind); ok && k.Kind() != "" {
		label += " " + k.Kind()
	}
	if n, ok := f.(model.HasName); ok && n.Name() != "" {
		label += " " + n.Name()
	}
	return fmt.Sprintf("%s #%d", label, f.ID())
}
