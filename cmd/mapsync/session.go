package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/multimap"
	"mapsync.ai/internal/persistence/archive"
	"mapsync.ai/internal/persistence/indexdb"
	persistlog "mapsync.ai/internal/persistence/log"
	"mapsync.ai/internal/persistence/snapshot"
	"mapsync.ai/internal/transport/observer"
)

// session is one loaded map set with its journal sinks attached.
type session struct {
	cfg    multimap.Config
	logger *log.Logger

	maps    []*mapstore.Memory
	mgr     *multimap.Manager
	ids     *mapstore.IDFactory
	rng     *rand.Rand
	journal *persistlog.JournalLogger
	index   *indexdb.SQLiteIndex
	feed    *observer.Server
}

// openSession loads every snapshot named by cfg. feed may be nil.
func openSession(cfg multimap.Config, logger *log.Logger, feed *observer.Server) (*session, error) {
	s := &session{cfg: cfg, logger: logger, feed: feed, rng: rand.New(rand.NewSource(cfg.Seed))}
	for _, path := range cfg.Maps() {
		m, err := snapshot.Load(path)
		if err != nil {
			return nil, err
		}
		s.maps = append(s.maps, m)
	}
	subs := make([]mapstore.Map, 0, len(s.maps)-1)
	for _, m := range s.maps[1:] {
		subs = append(subs, m)
	}
	set, err := multimap.NewMapSet(s.maps[0], subs...)
	if err != nil {
		return nil, err
	}

	var sinks []multimap.Journal
	if cfg.JournalDir != "" {
		s.journal = persistlog.NewJournalLogger(cfg.JournalDir)
		sinks = append(sinks, s.journal)
		logger.Printf("journal: %s (session %s)", cfg.JournalDir, s.journal.Session())
	}
	if cfg.IndexDB != "" {
		idx, err := indexdb.OpenSQLite(cfg.IndexDB)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("index db: %w", err)
		}
		s.index = idx
		sinks = append(sinks, idx)
	}
	if feed != nil {
		sinks = append(sinks, feed)
	}

	s.mgr = multimap.NewManager(set,
		multimap.WithLogger(logger),
		multimap.WithHQName(cfg.HQName),
		multimap.WithJournal(multimap.Journals(sinks...)),
	)
	all := make([]mapstore.Map, len(s.maps))
	for i, m := range s.maps {
		all[i] = m
	}
	s.ids = mapstore.SeedIDFactory(all...)
	return s, nil
}

// save writes every modified map back to its snapshot and returns how many
// were written.
func (s *session) save() (int, error) {
	n := 0
	for _, m := range s.maps {
		if !m.Modified() {
			continue
		}
		if s.cfg.BackupDir != "" {
			if dst, ok, err := archive.BackupSnapshot(s.cfg.BackupDir, m.Filename(), time.Now()); err != nil {
				return n, fmt.Errorf("backup %s: %w", m.Filename(), err)
			} else if ok {
				s.logger.Printf("backed up %s to %s", m.Filename(), dst)
			}
		}
		snap := snapshot.Export(m)
		if err := snapshot.WriteSnapshot(m.Filename(), snap); err != nil {
			return n, fmt.Errorf("save %s: %w", m.Filename(), err)
		}
		s.index.RecordSnapshot(m.Filename(), snap)
		m.SetModified(false)
		n++
	}
	if s.journal != nil {
		if err := s.journal.Err(); err != nil {
			s.logger.Printf("journal write error: %v", err)
		}
	}
	return n, nil
}

func (s *session) close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Printf("close journal: %v", err)
		}
	}
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			s.logger.Printf("close index: %v", err)
		}
	}
}
