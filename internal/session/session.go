package session

import (
	"context"
	"time"

	"github.com/wchess/api/internal/rules"
)

// State of one session's lifecycle.
type State string

const (
	StateForming  State = "forming"  // one participant, waiting for a join
	StateActive   State = "active"   // two participants, countdown running
	StateFinished State = "finished" // outcome reached, resident until rematch or cleanup
)

// Clock tracks remaining time for both sides of one session, in
// deciseconds. The relay loop is its only mutator.
type Clock struct {
	remaining [2]int
}

// NewClock seeds both sides with budget ticks.
func NewClock(budget int) *Clock {
	return &Clock{remaining: [2]int{budget, budget}}
}

// Debit removes one tick from side's remaining time, never below zero.
func (c *Clock) Debit(side rules.Side) {
	if c.remaining[side] > 0 {
		c.remaining[side]--
	}
}

// Exhausted reports whether side has no time left.
func (c *Clock) Exhausted(side rules.Side) bool {
	return c.remaining[side] == 0
}

func (c *Clock) Remaining(side rules.Side) int {
	return c.remaining[side]
}

func (c *Clock) Snapshot() (white, black int) {
	return c.remaining[rules.White], c.remaining[rules.Black]
}

// Session is one paired game: two participant connection ids (order
// encodes colour: [0] plays white, [1] plays black), the rules-engine
// handle, the declared time budget and the owned clock plus countdown
// handle. All fields are owned by the relay loop.
type Session struct {
	ID           string
	Participants []string
	Engine       rules.Engine
	TimeControl  int // minutes per side, as declared at creation
	Budget       int // starting allowance per side, deciseconds
	Clock        *Clock
	State        State
	CreatedAt    time.Time

	cancelCountdown context.CancelFunc
	countdownGen    uint64
}

// StartCountdown registers the cancel func of a new countdown process,
// cancelling any previous one first, and returns the new generation.
// Ticks carrying an older generation must be dropped.
func (s *Session) StartCountdown(cancel context.CancelFunc) uint64 {
	s.StopCountdown()
	s.countdownGen++
	s.cancelCountdown = cancel
	return s.countdownGen
}

// StopCountdown cancels the running countdown process, if any. Safe to
// call repeatedly or after the process already self-terminated.
func (s *Session) StopCountdown() {
	if s.cancelCountdown != nil {
		s.cancelCountdown()
		s.cancelCountdown = nil
	}
}

// CountdownActive reports whether a countdown process is attached.
func (s *Session) CountdownActive() bool {
	return s.cancelCountdown != nil
}

func (s *Session) CountdownGen() uint64 {
	return s.countdownGen
}

// Other returns the participant paired with conn, if any.
func (s *Session) Other(conn string) (string, bool) {
	for _, p := range s.Participants {
		if p != conn {
			return p, true
		}
	}
	return "", false
}

// SideOf returns the colour assigned to conn.
func (s *Session) SideOf(conn string) (rules.Side, bool) {
	for i, p := range s.Participants {
		if p == conn {
			if i == 0 {
				return rules.White, true
			}
			return rules.Black, true
		}
	}
	return rules.Black, false
}
