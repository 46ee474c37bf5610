package relay

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/wchess/api/internal/rules"
	"github.com/wchess/api/internal/session"
	"github.com/wchess/api/internal/types"
)

// TickQuantum is the countdown sleep between clock debits: one
// decisecond of game time.
const TickQuantum = 100 * time.Millisecond

// snapshotEvery: a time broadcast goes out once per this many ticks of
// the side on the move (once per whole second).
const snapshotEvery = 10

const defaultTicksPerMinute = 600 // deciseconds in a minute

type Msg interface{ isRelayMsg() }

// Connect registers a participant connection and the channel its
// outbound messages are delivered on.
type Connect struct {
	ConnID string
	Outbox chan types.ServerMessage
}

type Disconnect struct{ ConnID string }

type Create struct {
	ConnID      string
	TimeControl int // minutes per side
}

type Join struct {
	ConnID string
	GameID string
}

type SubmitMove struct {
	ConnID string
	UCI    string
}

type OfferRematch struct{ ConnID string }

type AcceptRematch struct{ ConnID string }

type Exit struct{ ConnID string }

type Shutdown struct{}

// tick is posted by a countdown process once per quantum.
type tick struct {
	GameID string
	Gen    uint64
}

// sweep triggers removal of abandoned Forming sessions.
type sweep struct{}

// Inspect is a test hook: reflect registry state without data races.
type Inspect struct {
	GameID string // resolved via ConnID when empty
	ConnID string
	Reply  chan View
}

type View struct {
	Exists       bool
	Participants []string
	State        session.State
	White, Black int // remaining deciseconds
	Gen          uint64
	NumSessions  int
}

func (Connect) isRelayMsg()       {}
func (Disconnect) isRelayMsg()    {}
func (Create) isRelayMsg()        {}
func (Join) isRelayMsg()          {}
func (SubmitMove) isRelayMsg()    {}
func (OfferRematch) isRelayMsg()  {}
func (AcceptRematch) isRelayMsg() {}
func (Exit) isRelayMsg()          {}
func (Shutdown) isRelayMsg()      {}
func (tick) isRelayMsg()          {}
func (sweep) isRelayMsg()         {}
func (Inspect) isRelayMsg()       {}

type Config struct {
	// FormingTTL is how long a single-participant session may sit idle
	// before the sweeper removes it.
	FormingTTL time.Duration
	// SweepEvery is the janitor interval; zero disables sweeping.
	SweepEvery time.Duration
	// TicksPerMinute converts the declared time control into clock
	// ticks. Defaults to 600 (deciseconds).
	TicksPerMinute int
}

// Relay is the event-driven session orchestrator. All registry, session
// and clock mutation happens on its single loop goroutine; countdown
// processes and transport readers only post messages to the inbox.
type Relay struct {
	inbox   chan Msg
	conns   map[string]chan types.ServerMessage
	reg     *session.Registry
	newGame func() rules.Engine
	clock   clockwork.Clock
	log     *zap.Logger
	cfg     Config
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, newGame func() rules.Engine, clk clockwork.Clock, log *zap.Logger, cfg Config) *Relay {
	if cfg.TicksPerMinute == 0 {
		cfg.TicksPerMinute = defaultTicksPerMinute
	}
	ctx, cancel := context.WithCancel(parent)
	r := &Relay{
		inbox:   make(chan Msg, 64),
		conns:   make(map[string]chan types.ServerMessage),
		reg:     session.NewRegistry(),
		newGame: newGame,
		clock:   clk,
		log:     log,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	if cfg.SweepEvery > 0 {
		go r.sweeper()
	}
	return r
}

// Inbox is where the transport layer and tests post messages.
func (r *Relay) Inbox() chan<- Msg { return r.inbox }

func (r *Relay) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Connect:
				r.conns[msg.ConnID] = msg.Outbox
				r.log.Info("client connected", zap.String("conn", msg.ConnID))

			case Disconnect:
				r.removeFor(msg.ConnID)
				if ch, ok := r.conns[msg.ConnID]; ok {
					close(ch)
					delete(r.conns, msg.ConnID)
				}
				r.log.Info("client disconnected", zap.String("conn", msg.ConnID))

			case Create:
				r.handleCreate(msg)

			case Join:
				r.handleJoin(msg)

			case SubmitMove:
				r.handleMove(msg)

			case OfferRematch:
				r.handleOfferRematch(msg)

			case AcceptRematch:
				r.handleAcceptRematch(msg)

			case Exit:
				r.removeFor(msg.ConnID)

			case tick:
				r.handleTick(msg)

			case sweep:
				r.handleSweep()

			case Inspect:
				r.handleInspect(msg)

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Relay) handleCreate(msg Create) {
	if msg.TimeControl <= 0 {
		r.sendTo(msg.ConnID, types.ServerMessage{
			Type: types.EventError,
			Data: types.ErrorPayload{Code: "bad_time_control", Message: "time control must be a positive number of minutes"},
		})
		return
	}
	sess := r.reg.Create(msg.ConnID, msg.TimeControl, msg.TimeControl*r.cfg.TicksPerMinute, r.newGame(), r.clock.Now())
	r.sendTo(msg.ConnID, types.ServerMessage{Type: types.EventGameID, Data: sess.ID})
	r.log.Info("game created",
		zap.String("game", sess.ID),
		zap.String("conn", msg.ConnID),
		zap.Int("time_control", msg.TimeControl))
}

func (r *Relay) handleJoin(msg Join) {
	sess, ok := r.reg.Join(msg.GameID, msg.ConnID)
	if !ok {
		return
	}
	// pick white and black
	rand.Shuffle(len(sess.Participants), func(i, j int) {
		sess.Participants[i], sess.Participants[j] = sess.Participants[j], sess.Participants[i]
	})
	r.beginPlay(sess)
	r.log.Info("game started", zap.String("game", sess.ID))
}

// beginPlay transitions to Active, starts a fresh countdown process and
// sends each participant its colour assignment. Shared by join and
// rematch accept.
func (r *Relay) beginPlay(sess *session.Session) {
	sess.State = session.StateActive
	r.startCountdown(sess)
	r.sendTo(sess.Participants[0], types.ServerMessage{
		Type: types.EventStart,
		Data: types.StartPayload{Colour: int(rules.White), TimeControl: sess.TimeControl},
	})
	r.sendTo(sess.Participants[1], types.ServerMessage{
		Type: types.EventStart,
		Data: types.StartPayload{Colour: int(rules.Black), TimeControl: sess.TimeControl},
	})
}

func (r *Relay) handleMove(msg SubmitMove) {
	sess := r.reg.ByParticipant(msg.ConnID)
	if sess == nil || sess.State != session.StateActive {
		return
	}

	// castling/en-passant status must come from the pre-move position
	castles, enPassant, err := sess.Engine.Classify(msg.UCI)
	if err != nil {
		r.rejectMove(msg.ConnID, err)
		return
	}
	if err := sess.Engine.Apply(msg.UCI); err != nil {
		r.rejectMove(msg.ConnID, err)
		return
	}

	stack := sess.Engine.History()
	payload := types.MovePayload{
		Turn:       int(sess.Engine.Turn()),
		Move:       stack[len(stack)-1],
		EnPassant:  enPassant,
		LegalMoves: sess.Engine.LegalMoves(),
		MoveStack:  stack,
	}
	if castles != rules.CastlesNone {
		c := int(castles)
		payload.Castles = &c
	}
	out, done := sess.Engine.Outcome()
	if done {
		term := out.Termination
		payload.Outcome = &term
		if out.Winner != nil {
			w := int(*out.Winner)
			payload.Winner = &w
		}
	}

	r.toRoom(sess, types.ServerMessage{Type: types.EventMove, Data: payload})

	if done {
		sess.State = session.StateFinished
		sess.StopCountdown()
		r.log.Info("game finished",
			zap.String("game", sess.ID),
			zap.Int("termination", out.Termination))
	}
}

func (r *Relay) rejectMove(conn string, err error) {
	code := "illegal_move"
	if errors.Is(err, rules.ErrMalformedMove) {
		code = "malformed_move"
	}
	r.log.Warn("move rejected", zap.String("conn", conn), zap.Error(err))
	r.sendTo(conn, types.ServerMessage{
		Type: types.EventError,
		Data: types.ErrorPayload{Code: code, Message: err.Error()},
	})
}

func (r *Relay) handleOfferRematch(msg OfferRematch) {
	sess := r.reg.ByParticipant(msg.ConnID)
	if sess == nil {
		return
	}
	if other, ok := sess.Other(msg.ConnID); ok {
		r.sendTo(other, types.ServerMessage{Type: types.EventRematchOffer, Data: 1})
	}
}

func (r *Relay) handleAcceptRematch(msg AcceptRematch) {
	sess := r.reg.ByParticipant(msg.ConnID)
	if sess == nil || len(sess.Participants) < 2 {
		return
	}
	sess.Engine.Reset()
	// switch white and black
	sess.Participants[0], sess.Participants[1] = sess.Participants[1], sess.Participants[0]
	sess.Clock = session.NewClock(sess.Budget)
	r.beginPlay(sess)
	r.log.Info("rematch started", zap.String("game", sess.ID))
}

// removeFor destroys the session conn belongs to, for both
// participants. Unknown conns are a no-op.
func (r *Relay) removeFor(conn string) {
	sess := r.reg.ByParticipant(conn)
	if sess == nil {
		return
	}
	r.reg.Remove(sess.ID)
	r.log.Info("game removed", zap.String("game", sess.ID), zap.String("conn", conn))
}

func (r *Relay) handleSweep() {
	cutoff := r.clock.Now().Add(-r.cfg.FormingTTL)
	for _, id := range r.reg.Sweep(cutoff) {
		r.log.Info("swept abandoned game", zap.String("game", id))
	}
}

func (r *Relay) handleInspect(msg Inspect) {
	sess := r.reg.BySession(msg.GameID)
	if sess == nil && msg.ConnID != "" {
		sess = r.reg.ByParticipant(msg.ConnID)
	}
	v := View{NumSessions: r.reg.Len()}
	if sess != nil {
		white, black := sess.Clock.Snapshot()
		v = View{
			Exists:       true,
			Participants: append([]string(nil), sess.Participants...),
			State:        sess.State,
			White:        white,
			Black:        black,
			Gen:          sess.CountdownGen(),
			NumSessions:  r.reg.Len(),
		}
	}
	msg.Reply <- v
}

func (r *Relay) shutdown() {
	for id, ch := range r.conns {
		close(ch)
		delete(r.conns, id)
	}
	r.cancel()
}

// sendTo delivers to one connection. Slow or full clients are dropped,
// never blocked on.
func (r *Relay) sendTo(conn string, msg types.ServerMessage) {
	ch, ok := r.conns[conn]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		close(ch)
		delete(r.conns, conn)
		r.log.Warn("dropping slow client", zap.String("conn", conn))
	}
}

func (r *Relay) toRoom(sess *session.Session, msg types.ServerMessage) {
	for _, p := range sess.Participants {
		r.sendTo(p, msg)
	}
}
