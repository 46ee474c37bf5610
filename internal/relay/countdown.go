package relay

import (
	"context"

	"go.uber.org/zap"

	"github.com/wchess/api/internal/rules"
	"github.com/wchess/api/internal/session"
	"github.com/wchess/api/internal/types"
)

// startCountdown attaches a fresh countdown process to the session,
// cancelling any previous one first. The process only sleeps and posts
// ticks; the loop goroutine does the debiting, so the clock has a
// single mutator.
func (r *Relay) startCountdown(sess *session.Session) {
	ctx, cancel := context.WithCancel(r.ctx)
	gen := sess.StartCountdown(cancel)
	go r.countdown(ctx, sess.ID, gen)
}

func (r *Relay) countdown(ctx context.Context, gameID string, gen uint64) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.clock.After(TickQuantum):
		}
		select {
		case <-ctx.Done():
			return
		case r.inbox <- tick{GameID: gameID, Gen: gen}:
		}
	}
}

// handleTick advances one session's clock by one tick. A tick from a
// cancelled or replaced countdown process is a no-op: the session must
// still exist, still have a countdown attached, and the generation must
// match.
func (r *Relay) handleTick(msg tick) {
	sess := r.reg.BySession(msg.GameID)
	if sess == nil || !sess.CountdownActive() || sess.CountdownGen() != msg.Gen {
		return
	}

	side := sess.Engine.Turn()
	if sess.Clock.Exhausted(side) {
		r.toRoom(sess, types.ServerMessage{
			Type: types.EventMove,
			Data: types.ForfeitPayload{
				Winner:  int(side.Other()),
				Outcome: rules.TermTimeout,
			},
		})
		sess.State = session.StateFinished
		sess.StopCountdown()
		r.log.Info("flag fall",
			zap.String("game", sess.ID),
			zap.String("flagged", side.String()))
		return
	}

	sess.Clock.Debit(side)
	if sess.Clock.Remaining(side)%snapshotEvery == 0 {
		white, black := sess.Clock.Snapshot()
		r.toRoom(sess, types.ServerMessage{
			Type: types.EventTime,
			Data: types.TimePayload{White: white, Black: black},
		})
	}
}

// sweeper periodically posts a janitor message so abandoned Forming
// sessions don't accumulate forever.
func (r *Relay) sweeper() {
	t := r.clock.NewTicker(r.cfg.SweepEvery)
	defer t.Stop()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-t.Chan():
			select {
			case r.inbox <- sweep{}:
			default:
			}
		}
	}
}
