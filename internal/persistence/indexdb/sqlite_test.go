package indexdb

import (
	"context"
	"path/filepath"
	"testing"

	"mapsync.ai/internal/model"
	"mapsync.ai/internal/multimap"
	"mapsync.ai/internal/persistence/snapshot"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqEntry}

	s.Record(multimap.Entry{Op: "rename"})
	s.RecordSnapshot("/tmp/x.snap", snapshot.MapV1{})

	st := s.Stats()
	if st.DropEntryTotal != 1 {
		t.Fatalf("DropEntryTotal=%d want=1", st.DropEntryTotal)
	}
	if st.DropSnapshotTotal != 1 {
		t.Fatalf("DropSnapshotTotal=%d want=1", st.DropSnapshotTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_IndexesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index", "mapsync.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = idx.Close() }()

	p := model.Point{Row: 3, Col: 4}
	idx.Record(multimap.Entry{Op: "rename", Map: "main.map", Point: p, FixtureID: 5, Detail: "Scouts"})
	idx.Record(multimap.Entry{Op: "rename", Map: "sub1.map", Point: p, FixtureID: 5, Detail: "Scouts"})
	idx.Record(multimap.Entry{Op: "set_orders", Map: "main.map", Point: p, FixtureID: 5})
	idx.Record(multimap.Entry{Op: "remove_unit", Map: "main.map", Point: p, FixtureID: 6})

	ctx := context.Background()
	got, err := idx.EntriesForFixture(ctx, 5)
	if err != nil {
		t.Fatalf("EntriesForFixture: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("entries: got %d want 3", len(got))
	}
	if got[1].Map != "sub1.map" || got[1].Point != p || got[1].Detail != "Scouts" || got[2].Op != "set_orders" {
		t.Fatalf("entries out of order or incomplete: %+v", got)
	}

	counts, err := idx.OpCounts(ctx, "main.map")
	if err != nil {
		t.Fatalf("OpCounts: %v", err)
	}
	if counts["rename"] != 1 || counts["set_orders"] != 1 || counts["remove_unit"] != 1 {
		t.Fatalf("main.map counts: %v", counts)
	}
	all, err := idx.OpCounts(ctx, "")
	if err != nil {
		t.Fatalf("OpCounts: %v", err)
	}
	if all["rename"] != 2 {
		t.Fatalf("all-map counts: %v", all)
	}
}

func TestSQLiteIndex_RecordSnapshotAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapsync.sqlite")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	snap := snapshot.MapV1{Header: snapshot.Header{Version: snapshot.Version, Rows: 2, Cols: 2, Fixtures: 9}}
	idx.RecordSnapshot("/maps/main.snap", snap)
	idx.Record(multimap.Entry{Op: "rename", Map: "main.map", FixtureID: 1})
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	idx, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = idx.Close() }()
	ctx := context.Background()
	n, ok, err := idx.SnapshotFixtures(ctx, "/maps/main.snap")
	if err != nil || !ok || n != 9 {
		t.Fatalf("SnapshotFixtures: n=%d ok=%v err=%v", n, ok, err)
	}
	if _, ok, _ := idx.SnapshotFixtures(ctx, "/maps/other.snap"); ok {
		t.Fatalf("unknown snapshot reported as present")
	}
	got, err := idx.EntriesForFixture(ctx, 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("entries survive reopen: %v %v", got, err)
	}
}
