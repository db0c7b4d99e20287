package log

import (
	"testing"
	"time"

	"mapsync.ai/internal/model"
	"mapsync.ai/internal/multimap"
)

func TestJournalLogger_RotatesHourlyAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	l := NewJournalLogger(dir)
	clock := time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)
	l.w.now = func() time.Time { return clock }

	l.Record(multimap.Entry{Op: "rename", Map: "main.map", Point: model.Point{Row: 1, Col: 2}, FixtureID: 7, Detail: "Scouts"})
	l.Record(multimap.Entry{Op: "rename", Map: "sub1.map", Point: model.Point{Row: 1, Col: 2}, FixtureID: 7, Detail: "Scouts"})
	clock = clock.Add(2 * time.Minute)
	l.Record(multimap.Entry{Op: "remove_unit", Map: "main.map", Point: model.Point{Row: 0, Col: 0}, FixtureID: 8})
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.Err(); err != nil {
		t.Fatalf("write error: %v", err)
	}

	files, err := ListJournalFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected one file per hour, got %v", files)
	}

	var recs []JournalRecord
	for _, f := range files {
		if err := ReadJournalFile(f, func(r JournalRecord) error {
			recs = append(recs, r)
			return nil
		}); err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
	}
	if len(recs) != 3 {
		t.Fatalf("records: got %d want 3", len(recs))
	}
	for i, r := range recs {
		if r.Session != l.Session() || r.Seq != uint64(i+1) {
			t.Fatalf("record %d: session %q seq %d", i, r.Session, r.Seq)
		}
	}
	if recs[1].Map != "sub1.map" || recs[1].Point != (model.Point{Row: 1, Col: 2}) || recs[1].Detail != "Scouts" {
		t.Fatalf("entry not round-tripped: %+v", recs[1])
	}
	if recs[2].Op != "remove_unit" || recs[2].FixtureID != 8 {
		t.Fatalf("last record: %+v", recs[2])
	}
}

func TestJournalLogger_ReopenAppends(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		l := NewJournalLogger(dir)
		l.w.now = func() time.Time { return clock }
		l.Record(multimap.Entry{Op: "set_orders", Map: "main.map", FixtureID: i})
		if err := l.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	files, err := ListJournalFiles(dir)
	if err != nil || len(files) != 1 {
		t.Fatalf("list: %v %v", files, err)
	}
	sessions := map[string]bool{}
	n := 0
	if err := ReadJournalFile(files[0], func(r JournalRecord) error {
		sessions[r.Session] = true
		n++
		return nil
	}); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 2 || len(sessions) != 2 {
		t.Fatalf("got %d records from %d sessions, want 2 and 2", n, len(sessions))
	}
}
