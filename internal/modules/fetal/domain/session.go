package domain

import "time"

const (
	RecordsKey = "fetal_count_records"
	ActiveKey  = "fetal_active_session"

	DefaultSessionSeconds = 3600
	DefaultCoolDown       = 5 * time.Minute
)

// Session is the transient state of a running countdown. It exists only while
// the session is active.
type Session struct {
	SessionID        string     `json:"session_id"`
	StartedAt        time.Time  `json:"started_at"`
	LengthSeconds    int        `json:"length_seconds"`
	RemainingSeconds int        `json:"remaining_seconds"`
	TotalClicks      int        `json:"total_clicks"`
	ValidCount       int        `json:"valid_count"`
	LastValidAt      *time.Time `json:"last_valid_at,omitempty"`
}

func NewSession(id string, startedAt time.Time, lengthSeconds int) Session {
	if lengthSeconds <= 0 {
		lengthSeconds = DefaultSessionSeconds
	}
	return Session{
		SessionID:        id,
		StartedAt:        startedAt,
		LengthSeconds:    lengthSeconds,
		RemainingSeconds: lengthSeconds,
	}
}

// RecordEvent always counts the click and accepts it as a valid movement only
// when no valid movement was seen within coolDown. Sustained movement is one
// physiological event.
func (s *Session) RecordEvent(now time.Time, coolDown time.Duration) bool {
	s.TotalClicks++
	if s.LastValidAt != nil && now.Sub(*s.LastValidAt) < coolDown {
		return false
	}
	s.ValidCount++
	at := now
	s.LastValidAt = &at
	return true
}

// NextValidAt is the earliest instant a click would count again.
func (s Session) NextValidAt(coolDown time.Duration) time.Time {
	if s.LastValidAt == nil {
		return time.Time{}
	}
	return s.LastValidAt.Add(coolDown)
}

// Tick advances the countdown one second. It reports true only on the tick
// that reaches zero; the count floors at zero.
func (s *Session) Tick() bool {
	if s.RemainingSeconds <= 0 {
		s.RemainingSeconds = 0
		return false
	}
	s.RemainingSeconds--
	return s.RemainingSeconds == 0
}

func (s Session) Expired() bool {
	return s.RemainingSeconds <= 0
}

func (s Session) EndsAt() time.Time {
	return s.StartedAt.Add(time.Duration(s.LengthSeconds) * time.Second)
}

// CatchUp aligns the countdown with wall time after the session was resumed
// from storage. It never adds time back.
func (s *Session) CatchUp(now time.Time) {
	elapsed := int(now.Sub(s.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := s.LengthSeconds - elapsed
	if remaining < 0 {
		remaining = 0
	}
	if remaining < s.RemainingSeconds {
		s.RemainingSeconds = remaining
	}
}

func (s Session) Finish(endedAt time.Time) Record {
	if endedAt.Before(s.StartedAt) {
		endedAt = s.StartedAt
	}
	return Record{
		ID:          s.SessionID,
		StartTime:   s.StartedAt.UnixMilli(),
		EndTime:     endedAt.UnixMilli(),
		ValidCount:  s.ValidCount,
		TotalClicks: s.TotalClicks,
	}
}
