package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playMoves(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, m := range moves {
		require.NoError(t, g.Apply(m), "move %s", m)
	}
}

func TestNewGame_InitialPosition(t *testing.T) {
	g := NewGame()

	assert.Equal(t, White, g.Turn())
	assert.Len(t, g.LegalMoves(), 20)
	assert.Empty(t, g.History())

	_, ok := g.Outcome()
	assert.False(t, ok)
}

func TestApply_OrdinaryMove(t *testing.T) {
	g := NewGame()

	castles, enPassant, err := g.Classify("e2e4")
	require.NoError(t, err)
	assert.Equal(t, CastlesNone, castles)
	assert.False(t, enPassant)

	require.NoError(t, g.Apply("e2e4"))
	assert.Equal(t, Black, g.Turn())
	assert.Equal(t, []string{"e2e4"}, g.History())
	assert.NotEmpty(t, g.LegalMoves())
}

func TestApply_MalformedNotation(t *testing.T) {
	g := NewGame()

	for _, uci := range []string{"", "e2", "e2e9", "z2e4", "e2e4x", "O-O"} {
		err := g.Apply(uci)
		assert.ErrorIs(t, err, ErrMalformedMove, "uci %q", uci)
	}
	assert.Equal(t, White, g.Turn(), "rejected moves must not advance the turn")
}

func TestApply_IllegalMove(t *testing.T) {
	g := NewGame()

	err := g.Apply("e2e5")
	assert.ErrorIs(t, err, ErrIllegalMove)

	// out of turn: black piece while white to move
	err = g.Apply("e7e5")
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.Empty(t, g.History())
}

func TestClassify_KingsideCastle(t *testing.T) {
	g := NewGame()
	playMoves(t, g, "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6")

	castles, enPassant, err := g.Classify("e1g1")
	require.NoError(t, err)
	assert.Equal(t, CastlesKingside, castles)
	assert.False(t, enPassant)
}

func TestClassify_QueensideCastle(t *testing.T) {
	g := NewGame()
	playMoves(t, g, "d2d4", "d7d5", "b1c3", "b8c6", "c1f4", "c8f5", "d1d2", "d8d7")

	castles, _, err := g.Classify("e1c1")
	require.NoError(t, err)
	assert.Equal(t, CastlesQueenside, castles)
}

func TestClassify_EnPassant(t *testing.T) {
	g := NewGame()
	playMoves(t, g, "e2e4", "a7a6", "e4e5", "d7d5")

	castles, enPassant, err := g.Classify("e5d6")
	require.NoError(t, err)
	assert.Equal(t, CastlesNone, castles)
	assert.True(t, enPassant)
}

func TestOutcome_FoolsMate(t *testing.T) {
	g := NewGame()
	playMoves(t, g, "f2f3", "e7e5", "g2g4", "d8h4")

	out, ok := g.Outcome()
	require.True(t, ok)
	require.NotNil(t, out.Winner)
	assert.Equal(t, Black, *out.Winner)
	assert.Equal(t, TermCheckmate, out.Termination)
	assert.Empty(t, g.LegalMoves())
}

func TestOutcome_ThreefoldRepetitionIsClaimed(t *testing.T) {
	g := NewGame()
	// shuffle knights back and forth until the start position repeats
	playMoves(t, g,
		"g1f3", "g8f6", "f3g1", "f6g8",
		"g1f3", "g8f6", "f3g1", "f6g8",
	)

	out, ok := g.Outcome()
	require.True(t, ok)
	assert.Nil(t, out.Winner)
	assert.Equal(t, TermThreefoldRepetition, out.Termination)
}

func TestReset_RestoresInitialPosition(t *testing.T) {
	g := NewGame()
	playMoves(t, g, "e2e4", "e7e5")

	g.Reset()

	assert.Equal(t, White, g.Turn())
	assert.Empty(t, g.History())
	assert.Len(t, g.LegalMoves(), 20)
}

func TestValidUCI(t *testing.T) {
	assert.True(t, ValidUCI("e2e4"))
	assert.True(t, ValidUCI("e7e8q"))
	assert.False(t, ValidUCI("e2"))
	assert.False(t, ValidUCI("e2e4q9"))
	assert.False(t, ValidUCI("Nf3"))
}

func TestErrorKinds_AreDistinct(t *testing.T) {
	g := NewGame()

	_, _, err := g.Classify("bogus")
	assert.True(t, errors.Is(err, ErrMalformedMove) && !errors.Is(err, ErrIllegalMove))

	_, _, err = g.Classify("a1a8")
	assert.True(t, errors.Is(err, ErrIllegalMove) && !errors.Is(err, ErrMalformedMove))
}
