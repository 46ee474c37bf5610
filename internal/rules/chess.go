package rules

import (
	"fmt"

	"github.com/notnil/chess"
)

// Game implements Engine on top of notnil/chess.
type Game struct {
	g *chess.Game
}

func NewGame() *Game {
	return &Game{g: chess.NewGame()}
}

func (ga *Game) Turn() Side {
	if ga.g.Position().Turn() == chess.White {
		return White
	}
	return Black
}

// find resolves uci against the legal moves of the current position, so
// the returned move carries the position-dependent tags (castle,
// en passant). Malformed and illegal notation map to distinct errors.
func (ga *Game) find(uci string) (*chess.Move, error) {
	if !ValidUCI(uci) {
		return nil, fmt.Errorf("%w: %q", ErrMalformedMove, uci)
	}
	pos := ga.g.Position()
	for _, m := range ga.g.ValidMoves() {
		if (chess.UCINotation{}).Encode(pos, m) == uci {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrIllegalMove, uci)
}

func (ga *Game) Classify(uci string) (Castles, bool, error) {
	m, err := ga.find(uci)
	if err != nil {
		return CastlesNone, false, err
	}
	switch {
	case m.HasTag(chess.KingSideCastle):
		return CastlesKingside, false, nil
	case m.HasTag(chess.QueenSideCastle):
		return CastlesQueenside, false, nil
	case m.HasTag(chess.EnPassant):
		return CastlesNone, true, nil
	}
	return CastlesNone, false, nil
}

func (ga *Game) Apply(uci string) error {
	m, err := ga.find(uci)
	if err != nil {
		return err
	}
	if err := ga.g.Move(m); err != nil {
		return fmt.Errorf("%w: %q", ErrIllegalMove, uci)
	}
	return nil
}

func (ga *Game) Outcome() (Outcome, bool) {
	if ga.g.Outcome() == chess.NoOutcome {
		// claim-draw semantics: a repetition or fifty-move draw the
		// player to move could claim is treated as terminal.
		for _, m := range ga.g.EligibleDraws() {
			if m == chess.ThreefoldRepetition || m == chess.FiftyMoveRule {
				_ = ga.g.Draw(m)
				break
			}
		}
	}
	var o Outcome
	switch ga.g.Outcome() {
	case chess.NoOutcome:
		return Outcome{}, false
	case chess.WhiteWon:
		w := White
		o.Winner = &w
	case chess.BlackWon:
		b := Black
		o.Winner = &b
	}
	o.Termination = termCode(ga.g.Method())
	return o, true
}

func (ga *Game) LegalMoves() []string {
	pos := ga.g.Position()
	valid := ga.g.ValidMoves()
	moves := make([]string, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, chess.UCINotation{}.Encode(pos, m))
	}
	return moves
}

func (ga *Game) History() []string {
	played := ga.g.Moves()
	moves := make([]string, 0, len(played))
	for _, m := range played {
		moves = append(moves, chess.UCINotation{}.Encode(nil, m))
	}
	return moves
}

func (ga *Game) Reset() {
	ga.g = chess.NewGame()
}

func termCode(m chess.Method) int {
	switch m {
	case chess.Checkmate:
		return TermCheckmate
	case chess.Stalemate:
		return TermStalemate
	case chess.InsufficientMaterial:
		return TermInsufficientMaterial
	case chess.SeventyFiveMoveRule:
		return TermSeventyFiveMoves
	case chess.FivefoldRepetition:
		return TermFivefoldRepetition
	case chess.FiftyMoveRule:
		return TermFiftyMoves
	case chess.ThreefoldRepetition:
		return TermThreefoldRepetition
	case chess.Resignation:
		return TermResignation
	case chess.DrawOffer:
		return TermAgreement
	default:
		return 0
	}
}
