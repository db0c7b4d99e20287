// Package multimap applies edits to every map of a map set.
//
// Each operation runs the identity matcher against every map independently
// (main first, then subordinates), edits the copies it finds and reports
// whether any map matched. A map without a match is the normal case and never
// stops the others. RemoveUnit is the exception: it validates every map
// before touching any.
//
// The Manager is not safe for concurrent use; callers serialize edits.
package multimap

import (
	"io"
	"log"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

const defaultHQName = "HQ"

type Manager struct {
	set     *MapSet
	log     *log.Logger
	journal Journal
	hqName  string
}

type Option func(*Manager)

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithJournal(j Journal) Option {
	return func(m *Manager) { m.journal = j }
}

// WithHQName sets the fortress name AddUnit prefers.
func WithHQName(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.hqName = name
		}
	}
}

func NewManager(set *MapSet, opts ...Option) *Manager {
	m := &Manager{
		set:    set,
		log:    log.New(io.Discard, "", 0),
		hqName: defaultHQName,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Manager) MapSet() *MapSet { return m.set }

func (m *Manager) maps() []mapstore.Map { return m.set.All() }

// touched marks mp modified and journals the change.
func (m *Manager) touched(mp mapstore.Map, op string, p model.Point, f model.Fixture, detail string) {
	mp.SetModified(true)
	if m.journal == nil {
		return
	}
	id := -1
	if f != nil {
		id = f.ID()
	}
	m.journal.Record(Entry{Op: op, Map: mp.Filename(), Point: p, FixtureID: id, Detail: detail})
}

// Players lists the players known to any map, main map first, deduplicated
// by ID.
func (m *Manager) Players() []model.Player {
	seen := map[int]bool{}
	var out []model.Player
	for _, mp := range m.maps() {
		for _, p := range mp.Players() {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

func (m *Manager) CurrentPlayer() model.Player {
	for _, mp := range m.maps() {
		if p := mp.CurrentPlayer(); p.Current {
			return p
		}
	}
	return m.set.Main().CurrentPlayer()
}

// ensurePlayer registers p in mp if no player with its ID is known there.
func ensurePlayer(mp mapstore.Map, p model.Player) {
	for _, x := range mp.Players() {
		if x.ID == p.ID {
			return
		}
	}
	p.Current = false
	mp.AddPlayer(p)
}
