package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovePayload_TerminalMoveKeepsEmptyCollections(t *testing.T) {
	winner := 0
	outcome := 1
	b, err := json.Marshal(MovePayload{
		Turn:       1,
		Winner:     &winner,
		Outcome:    &outcome,
		Move:       "d8h4",
		LegalMoves: []string{},
		MoveStack:  []string{"f2f3", "e7e5", "g2g4", "d8h4"},
	})
	require.NoError(t, err)

	// clients iterate these unconditionally, so the keys must survive
	// an empty set
	assert.Contains(t, string(b), `"legalMoves":[]`)
	assert.Contains(t, string(b), `"moveStack":["f2f3","e7e5","g2g4","d8h4"]`)
	assert.Contains(t, string(b), `"castles":null`)
}

func TestForfeitPayload_WireShape(t *testing.T) {
	b, err := json.Marshal(ServerMessage{
		Type: EventMove,
		Data: ForfeitPayload{Winner: 1, Outcome: 11},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"move","data":{"winner":1,"outcome":11}}`, string(b))
}
