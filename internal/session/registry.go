package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/wchess/api/internal/rules"
)

// Registry is the process-wide mapping from session id to session and
// from participant to session id. It is not safe for concurrent use:
// the relay loop is its single writer and reader.
type Registry struct {
	games   map[string]*Session
	players map[string]string // participant conn id -> session id
}

func NewRegistry() *Registry {
	return &Registry{
		games:   make(map[string]*Session),
		players: make(map[string]string),
	}
}

// Create allocates a Forming session with owner as sole participant.
func (r *Registry) Create(owner string, timeControl, budget int, eng rules.Engine, now time.Time) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		Participants: []string{owner},
		Engine:       eng,
		TimeControl:  timeControl,
		Budget:       budget,
		Clock:        NewClock(budget),
		State:        StateForming,
		CreatedAt:    now,
	}
	r.games[s.ID] = s
	r.players[owner] = s.ID
	return s
}

// Join appends participant to the session. It reports false, mutating
// nothing, when the session is unknown or already has two participants.
func (r *Registry) Join(id, participant string) (*Session, bool) {
	s := r.games[id]
	if s == nil || len(s.Participants) > 1 {
		return nil, false
	}
	s.Participants = append(s.Participants, participant)
	r.players[participant] = id
	return s, true
}

// BySession returns the session for id, or nil.
func (r *Registry) BySession(id string) *Session {
	return r.games[id]
}

// ByParticipant returns the session conn belongs to, or nil.
func (r *Registry) ByParticipant(conn string) *Session {
	return r.games[r.players[conn]]
}

// Remove deletes the session, cancelling its countdown process and
// clearing the reverse mapping for every participant. Unknown ids are
// a no-op.
func (r *Registry) Remove(id string) {
	s := r.games[id]
	if s == nil {
		return
	}
	s.StopCountdown()
	for _, p := range s.Participants {
		delete(r.players, p)
	}
	delete(r.games, id)
}

// Sweep removes Forming sessions created before cutoff and returns
// their ids.
func (r *Registry) Sweep(cutoff time.Time) []string {
	var removed []string
	for id, s := range r.games {
		if s.State == StateForming && s.CreatedAt.Before(cutoff) {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		r.Remove(id)
	}
	return removed
}

// Len reports the number of resident sessions.
func (r *Registry) Len() int { return len(r.games) }
