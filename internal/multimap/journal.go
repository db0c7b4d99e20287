package multimap

import "mapsync.ai/internal/model"

// Entry describes one change applied to one map.
type Entry struct {
	Op        string      `json:"op"`
	Map       string      `json:"map"`
	Point     model.Point `json:"point"`
	FixtureID int         `json:"fixture_id"`
	Detail    string      `json:"detail,omitempty"`
}

// Journal receives every applied change. Implementations must not block and
// must not call back into the Manager.
type Journal interface {
	Record(e Entry)
}

type multiJournal []Journal

func (mj multiJournal) Record(e Entry) {
	for _, j := range mj {
		j.Record(e)
	}
}

// Journals fans entries out to every non-nil journal.
func Journals(js ...Journal) Journal {
	var out multiJournal
	for _, j := range js {
		if j != nil {
			out = append(out, j)
		}
	}
	return out
}
