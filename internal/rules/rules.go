package rules

import (
	"errors"
	"regexp"
)

var ErrMalformedMove = errors.New("malformed uci notation")
var ErrIllegalMove = errors.New("illegal move")

// Side on the wire: 1 = white, 0 = black.
type Side int

const (
	Black Side = 0
	White Side = 1
)

func (s Side) Other() Side { return 1 - s }

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

type Castles int

const (
	CastlesNone Castles = iota
	CastlesKingside
	CastlesQueenside
)

// Termination codes sent to clients. 1-7 follow the standard chess
// termination numbering; 11-13 are relay-level outcomes.
const (
	TermCheckmate            = 1
	TermStalemate            = 2
	TermInsufficientMaterial = 3
	TermSeventyFiveMoves     = 4
	TermFivefoldRepetition   = 5
	TermFiftyMoves           = 6
	TermThreefoldRepetition  = 7
	TermTimeout              = 11
	TermResignation          = 12
	TermAgreement            = 13
)

// Outcome of a finished game. Winner is nil on a draw.
type Outcome struct {
	Winner      *Side
	Termination int
}

// Engine is the rules-engine capability consumed by the relay: apply a
// move or reject it, and report terminal outcome.
type Engine interface {
	// Turn reports the side that currently owes a move.
	Turn() Side
	// Classify reports castling/en-passant status of a move against the
	// current position, without applying it.
	Classify(uci string) (Castles, bool, error)
	// Apply validates and plays a move in UCI notation.
	Apply(uci string) error
	// Outcome reports the terminal result, if any. Draws the current
	// player could claim (threefold repetition, fifty-move rule) count
	// as terminal.
	Outcome() (Outcome, bool)
	// LegalMoves lists every legal move for the side to move, in UCI.
	LegalMoves() []string
	// History lists all played moves in order, in UCI.
	History() []string
	// Reset restores the initial position.
	Reset()
}

var uciRe = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][nbrq]?$`)

// ValidUCI reports whether s is syntactically valid UCI move notation.
func ValidUCI(s string) bool { return uciRe.MatchString(s) }
