package observerproto

// Version is the change-feed protocol version.
const Version = "1.0"

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeChange    = "CHANGE"
)

// Client -> Server. First message on the feed connection; can be re-sent to
// change the map filter.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	// Maps limits the feed to these map filenames; empty means every map.
	Maps []string `json:"maps,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string       `json:"protocol_version"`
	Maps            []MapInfo    `json:"maps"`
	Players         []PlayerInfo `json:"players"`
}

type MapInfo struct {
	Filename string `json:"filename"`
	Main     bool   `json:"main,omitempty"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
}

type PlayerInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Current bool   `json:"current,omitempty"`
}

// Server -> Client. One per change applied to one map.
type ChangeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`

	Op        string `json:"op"`
	Map       string `json:"map"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	FixtureID int    `json:"fixture_id"`
	Detail    string `json:"detail,omitempty"`
}
