package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"mapsync.ai/internal/multimap"
	"mapsync.ai/internal/persistence/snapshot"
)

// SQLiteIndex mirrors journal entries and snapshot saves into a queryable
// SQLite database. All writes go through one goroutine; Record never blocks
// and drops entries when the queue is full (the JSONL journal stays the
// source of truth).
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropEntryTotal    atomic.Uint64
	dropSnapshotTotal atomic.Uint64
}

type reqKind int

const (
	reqEntry reqKind = iota + 1
	reqSnapshot
	reqSync
)

type req struct {
	kind reqKind

	entry    entryRow
	snapshot snapshotRow
	done     chan struct{}
}

type entryRow struct {
	multimap.Entry
	RecordedAt string
}

type snapshotRow struct {
	Path       string
	Rows       int
	Cols       int
	Fixtures   int
	Players    int
	RecordedAt string
}

type Stats struct {
	QueueDepth        int
	QueueCapacity     int
	DropEntryTotal    uint64
	DropSnapshotTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragmas: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
		`CREATE TABLE IF NOT EXISTS entries (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			op TEXT NOT NULL,
			map TEXT NOT NULL,
			loc_row INTEGER NOT NULL,
			loc_col INTEGER NOT NULL,
			fixture_id INTEGER NOT NULL,
			detail TEXT,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_fixture ON entries(fixture_id, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_map_pos ON entries(map, loc_row, loc_col, seq);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			path TEXT PRIMARY KEY,
			height INTEGER NOT NULL,
			width INTEGER NOT NULL,
			fixtures INTEGER NOT NULL,
			players INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropEntryTotal:    s.dropEntryTotal.Load(),
		DropSnapshotTotal: s.dropSnapshotTotal.Load(),
	}
}

// Record queues e for indexing.
func (s *SQLiteIndex) Record(e multimap.Entry) {
	if s == nil || s.closed.Load() {
		return
	}
	r := req{kind: reqEntry, entry: entryRow{Entry: e, RecordedAt: now()}}
	select {
	case s.ch <- r:
	default:
		s.dropEntryTotal.Add(1)
	}
}

// RecordSnapshot notes that snap was written to path.
func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.MapV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Path:       path,
		Rows:       snap.Header.Rows,
		Cols:       snap.Header.Cols,
		Fixtures:   snap.Header.Fixtures,
		Players:    len(snap.Players),
		RecordedAt: now(),
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshotTotal.Add(1)
	}
}

// Sync waits until everything queued so far is committed.
func (s *SQLiteIndex) Sync(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return fmt.Errorf("index closed")
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqSync, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EntriesForFixture returns every indexed change to the fixture with id, in
// the order they were applied.
func (s *SQLiteIndex) EntriesForFixture(ctx context.Context, id int) ([]multimap.Entry, error) {
	if err := s.Sync(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT op,map,loc_row,loc_col,fixture_id,COALESCE(detail,'') FROM entries WHERE fixture_id=? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []multimap.Entry
	for rows.Next() {
		var e multimap.Entry
		if err := rows.Scan(&e.Op, &e.Map, &e.Point.Row, &e.Point.Col, &e.FixtureID, &e.Detail); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// OpCounts tallies indexed entries per operation for one map, or for every
// map when mapName is empty.
func (s *SQLiteIndex) OpCounts(ctx context.Context, mapName string) (map[string]int, error) {
	if err := s.Sync(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT op,COUNT(*) FROM entries WHERE ?='' OR map=? GROUP BY op`, mapName, mapName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var op string
		var n int
		if err := rows.Scan(&op, &n); err != nil {
			return nil, err
		}
		out[op] = n
	}
	return out, rows.Err()
}

// SnapshotFixtures reports the fixture count recorded for the snapshot at
// path.
func (s *SQLiteIndex) SnapshotFixtures(ctx context.Context, path string) (int, bool, error) {
	if err := s.Sync(ctx); err != nil {
		return 0, false, err
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT fixtures FROM snapshots WHERE path=?`, path).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertEntry, _ := s.db.Prepare(`INSERT INTO entries(op,map,loc_row,loc_col,fixture_id,detail,recorded_at) VALUES(?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(path,height,width,fixtures,players,recorded_at) VALUES(?,?,?,?,?,?)`)
	defer func() {
		if insertEntry != nil {
			_ = insertEntry.Close()
		}
		if insertSnapshot != nil {
			_ = insertSnapshot.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 1000
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	ticker := time.NewTicker(commitMaxWait)
	defer ticker.Stop()

	for {
		var r req
		var ok bool
		select {
		case r, ok = <-s.ch:
			if !ok {
				commit()
				return
			}
		case <-ticker.C:
			if tx != nil && time.Since(lastCommit) >= commitMaxWait {
				commit()
			}
			continue
		}

		if r.kind == reqSync {
			commit()
			close(r.done)
			continue
		}

		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqEntry:
			e := r.entry
			if insertEntry != nil {
				if _, err := tx.Stmt(insertEntry).Exec(
					e.Op,
					e.Map,
					e.Point.Row,
					e.Point.Col,
					e.FixtureID,
					e.Detail,
					e.RecordedAt,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot != nil {
				if _, err := tx.Stmt(insertSnapshot).Exec(
					sn.Path,
					sn.Rows,
					sn.Cols,
					sn.Fixtures,
					sn.Players,
					sn.RecordedAt,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		if opCount >= commitEvery {
			commit()
		}
	}
}
