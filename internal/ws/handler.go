package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wchess/api/internal/relay"
	"github.com/wchess/api/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler bridges one WebSocket connection to the relay: the reader
// loop turns client frames into relay messages, a writer goroutine
// drains the connection's outbox. The relay learns about the connection
// via Connect/Disconnect, keyed by a fresh opaque id.
func Handler(r *relay.Relay, originPatterns []string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		conn, err := websocket.Accept(w, req, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Warn("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		out := make(chan types.ServerMessage, 16)

		r.Inbox() <- relay.Connect{ConnID: connID, Outbox: out}
		defer func() { r.Inbox() <- relay.Disconnect{ConnID: connID} }()

		// Writer goroutine: drains the outbox until the relay closes it.
		writeCtx, writeCancel := context.WithCancel(req.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Error("marshal server message", zap.Error(err))
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(req.Context())
			if err != nil {
				// Clean close/going-away is normal; either way the
				// deferred Disconnect tears the session down.
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(writeCtx, conn, "bad_json", "malformed message")
				continue
			}

			msg, ok := toRelayMsg(connID, cm)
			if !ok {
				writeError(writeCtx, conn, "unknown_action", "unknown message type")
				continue
			}
			r.Inbox() <- msg
		}
	}
}

func toRelayMsg(connID string, m types.ClientMessage) (relay.Msg, bool) {
	switch m.Type {
	case types.ActionCreate:
		return relay.Create{ConnID: connID, TimeControl: m.TimeControl}, true
	case types.ActionJoin:
		return relay.Join{ConnID: connID, GameID: m.GameID}, true
	case types.ActionMove:
		return relay.SubmitMove{ConnID: connID, UCI: m.UCI}, true
	case types.ActionOfferRematch:
		return relay.OfferRematch{ConnID: connID}, true
	case types.ActionAcceptRematch:
		return relay.AcceptRematch{ConnID: connID}, true
	case types.ActionExit:
		return relay.Exit{ConnID: connID}, true
	default:
		return nil, false
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, code, message string) {
	payload, _ := json.Marshal(types.ServerMessage{
		Type: types.EventError,
		Data: types.ErrorPayload{Code: code, Message: message},
	})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
