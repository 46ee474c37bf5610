package types

// Client -> Server
// create:        timeControl (minutes per side)
// join:          gameId
// move:          uci
// offerRematch:  {}
// acceptRematch: {}
// exit:          {}
type ClientMessage struct {
	Type        string `json:"type"`
	TimeControl int    `json:"timeControl,omitempty"`
	GameID      string `json:"gameId,omitempty"`
	UCI         string `json:"uci,omitempty"`
}

const (
	ActionCreate        = "create"
	ActionJoin          = "join"
	ActionMove          = "move"
	ActionOfferRematch  = "offerRematch"
	ActionAcceptRematch = "acceptRematch"
	ActionExit          = "exit"
)

// Server -> Client
// gameId:       string (creator only)
// start:        StartPayload (individually per participant)
// move:         MovePayload (room)
// time:         TimePayload (room)
// rematchOffer: 1 (non-initiating participant)
// error:        ErrorPayload (sender only)
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

const (
	EventGameID       = "gameId"
	EventStart        = "start"
	EventMove         = "move"
	EventTime         = "time"
	EventRematchOffer = "rematchOffer"
	EventError        = "error"
)

// Colour values on the wire: 1 = white, 0 = black.
type StartPayload struct {
	Colour      int `json:"colour"`
	TimeControl int `json:"timeControl"`
}

// MovePayload carries the consolidated post-move state. Every field is
// always serialized: clients iterate legalMoves/moveStack even when a
// terminal move leaves them empty.
type MovePayload struct {
	Turn       int      `json:"turn"`
	Winner     *int     `json:"winner"`
	Outcome    *int     `json:"outcome"`
	Move       string   `json:"move"`
	Castles    *int     `json:"castles"`
	EnPassant  bool     `json:"enPassant"`
	LegalMoves []string `json:"legalMoves"`
	MoveStack  []string `json:"moveStack"`
}

// ForfeitPayload is the flag-fall broadcast, sent under the move event
// as the bare winner/outcome pair.
type ForfeitPayload struct {
	Winner  int `json:"winner"`
	Outcome int `json:"outcome"`
}

// Remaining time per side, in deciseconds.
type TimePayload struct {
	White int `json:"white"`
	Black int `json:"black"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
