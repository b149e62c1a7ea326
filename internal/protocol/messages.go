package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
	// Optional world seed for the new private session.
	Seed string `json:"seed,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	Seed               string  `json:"seed"`
	GridStep           float64 `json:"grid_step"`
	NeighborhoodRadius int     `json:"neighborhood_radius"`
	SpawnProbability   float64 `json:"spawn_probability"`
	MaxTokensPerCache  int     `json:"max_tokens_per_cache"`
	MoveStep           float64 `json:"move_step"`
}

// MOVE (client -> server): one step N/S/E/W.
type MoveMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Direction       string `json:"direction"`
}

// POSITION (client -> server): absolute sensor position.
type PositionMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
}

type CollectMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Cell            [2]int `json:"cell"`
	LocalID         int    `json:"local_id"`
}

type DepositMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Cell            [2]int `json:"cell"`
}

type ResetMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// STATE (server -> client)
type StateMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	SessionID       string       `json:"session_id,omitempty"`
	Seq             uint64       `json:"seq"`
	Player          PlayerState  `json:"player"`
	Caches          []CacheState `json:"caches"`
	// Set when the state answers a COLLECT or DEPOSIT.
	Result *TransferResult `json:"result,omitempty"`
}

type PlayerState struct {
	Pos    [2]float64 `json:"pos"`
	Cell   [2]int     `json:"cell"`
	Points int        `json:"points"`
	// Held token keys ("i:j#id") in deposit order.
	Held []string `json:"held"`
}

type CacheState struct {
	Cell      [2]int       `json:"cell"`
	Total     int          `json:"total"`
	Remaining int          `json:"remaining"`
	Tokens    []TokenState `json:"tokens"`
}

type TokenState struct {
	ID        int  `json:"id"`
	Collected bool `json:"collected"`
}

type TransferResult struct {
	Op    string `json:"op"`
	Code  string `json:"code"`
	Token string `json:"token,omitempty"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}

func NewError(code, message string) ErrorMsg {
	return ErrorMsg{
		Type:            TypeError,
		ProtocolVersion: Version,
		Code:            code,
		Message:         message,
	}
}
