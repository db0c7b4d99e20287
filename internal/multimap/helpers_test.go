package multimap

import (
	"bytes"
	"fmt"
	"log"
	"testing"

	"mapsync.ai/internal/mapstore"
	"mapsync.ai/internal/model"
)

var (
	alice = model.Player{ID: 1, Name: "alice", Current: true}
	bob   = model.Player{ID: 2, Name: "bob"}
	indie = model.Player{ID: 0, Name: "independent"}
	here  = model.Point{Row: 1, Col: 1}
)

type recordingJournal struct{ entries []Entry }

func (r *recordingJournal) Record(e Entry) { r.entries = append(r.entries, e) }

func (r *recordingJournal) ops() []string {
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Op
	}
	return out
}

type harness struct {
	maps    []*mapstore.Memory
	mgr     *Manager
	journal *recordingJournal
	logs    *bytes.Buffer
}

// newHarness builds a main map plus subs subordinates, all 3x3, each knowing
// alice and bob.
func newHarness(t *testing.T, subs int) *harness {
	t.Helper()
	h := &harness{journal: &recordingJournal{}, logs: &bytes.Buffer{}}
	for i := 0; i <= subs; i++ {
		name := "main.map"
		if i > 0 {
			name = fmt.Sprintf("sub%d.map", i)
		}
		m := mapstore.NewMemory(name, model.Dimensions{Rows: 3, Cols: 3})
		m.AddPlayer(alice)
		m.AddPlayer(bob)
		m.SetModified(false)
		h.maps = append(h.maps, m)
	}
	rest := make([]mapstore.Map, 0, subs)
	for _, m := range h.maps[1:] {
		rest = append(rest, m)
	}
	set, err := NewMapSet(h.maps[0], rest...)
	if err != nil {
		t.Fatalf("new map set: %v", err)
	}
	h.mgr = NewManager(set,
		WithLogger(log.New(h.logs, "", 0)),
		WithJournal(h.journal),
	)
	return h
}

// place adds one fixture per map at p, built by mk from the map's index.
func (h *harness) place(p model.Point, mk func(i int) model.Fixture) []model.Fixture {
	out := make([]model.Fixture, len(h.maps))
	for i, m := range h.maps {
		out[i] = mk(i)
		m.AddFixture(p, out[i])
	}
	h.resetModified()
	return out
}

func (h *harness) resetModified() {
	for _, m := range h.maps {
		m.SetModified(false)
	}
}

func (h *harness) assertModified(t *testing.T, want ...bool) {
	t.Helper()
	for i, m := range h.maps {
		if m.Modified() != want[i] {
			t.Fatalf("%s modified=%v want %v", m.Filename(), m.Modified(), want[i])
		}
	}
}

// snapshot renders every map's fixtures for before/after comparison.
func (h *harness) snapshot() string {
	var b bytes.Buffer
	for _, m := range h.maps {
		fmt.Fprintf(&b, "%s:", m.Filename())
		for _, loc := range m.AllFixtures() {
			fmt.Fprintf(&b, " %v=%s#%d", loc.Point, loc.Fixture.Tag(), loc.Fixture.ID())
			if u, ok := loc.Fixture.(*model.Unit); ok {
				for _, mem := range u.Members() {
					fmt.Fprintf(&b, "[%s#%d]", mem.Tag(), mem.ID())
				}
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
