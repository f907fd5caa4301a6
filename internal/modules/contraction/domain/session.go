package domain

import "time"

const (
	RecordsKey = "contraction_records"
	ActiveKey  = "contraction_active_session"
)

// Session is a running stopwatch. It has no cap; only an explicit stop ends it.
type Session struct {
	SessionID      string    `json:"session_id"`
	StartedAt      time.Time `json:"started_at"`
	ElapsedSeconds int       `json:"elapsed_seconds"`
}

func NewSession(id string, startedAt time.Time) Session {
	return Session{SessionID: id, StartedAt: startedAt}
}

func (s *Session) Tick() {
	s.ElapsedSeconds++
}

// CatchUp moves the stopwatch forward to wall time; it never moves it back.
func (s *Session) CatchUp(now time.Time) {
	if wall := wallSeconds(s.StartedAt, now); wall > s.ElapsedSeconds {
		s.ElapsedSeconds = wall
	}
}

// Finish converts the session into a record. The duration is the larger of
// the ticked and the wall-clock elapsed time.
func (s Session) Finish(endedAt time.Time) Record {
	if endedAt.Before(s.StartedAt) {
		endedAt = s.StartedAt
	}
	s.CatchUp(endedAt)
	return Record{
		ID:        s.SessionID,
		StartTime: s.StartedAt.UnixMilli(),
		EndTime:   endedAt.UnixMilli(),
		Duration:  s.ElapsedSeconds,
	}
}

func wallSeconds(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d.Round(time.Second) / time.Second)
}
