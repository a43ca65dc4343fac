package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
	Observer        bool   `json:"observer,omitempty"` // render-only clients skip POS
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldID         string      `json:"world_id"`
	WorldParams     WorldParams `json:"world_params"`
}

// WorldParams carries everything a renderer needs to recompute placement
// positions locally: the same seed and grid produce the same points.
type WorldParams struct {
	TickRateHz  int        `json:"tick_rate_hz"`
	ChunkSize   [2]int     `json:"chunk_size"`
	TileSize    [2]float64 `json:"tile_size"`
	SpawnRadius int        `json:"spawn_radius"`
	LoadRadius  int        `json:"load_radius"`
	Seed        uint64     `json:"seed"`
}

// POS (client -> server): the viewer's current world position.
type PosMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Pos             [2]float64 `json:"pos"`
}

// DISCOVER (client -> server): spawn chunks around a position that is not
// the viewer (exploring units, scripted reveals).
type DiscoverMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Pos             [2]float64 `json:"pos"`
	Radius          int        `json:"radius"`
}

// CHUNK_SHOW (server -> client): a chunk entered the load radius. Arrays
// travel RLE+zstd+base64 encoded; digests let the client verify decode.
type ChunkShowMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Coord           [2]int `json:"coord"`
	Encoding        string `json:"encoding"` // always EncodingRLEZstd
	Tiles           string `json:"tiles"`
	Resources       string `json:"resources"`
	TileDigest      string `json:"tile_digest"`
	ResourceDigest  string `json:"resource_digest"`
}

// CHUNK_HIDE (server -> client): a chunk left the load radius. Data is
// not resent on re-show; clients may cache by coordinate.
type ChunkHideMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Coord           [2]int `json:"coord"`
}

// STATS (server -> client, on request or periodic).
type StatsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Chunks          int    `json:"chunks"`
	Visible         int    `json:"visible"`
}

// ERROR (server -> client), usually followed by a close.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
