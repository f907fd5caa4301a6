package domain_test

import (
	"testing"
	"time"

	"mamatimer/internal/modules/contraction/domain"
)

func TestStopwatchTicksWithoutCap(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	s := domain.NewSession("c1", start)
	for i := 0; i < 4000; i++ {
		s.Tick()
	}
	if s.ElapsedSeconds != 4000 {
		t.Fatalf("expected 4000 elapsed, got %d", s.ElapsedSeconds)
	}
}

func TestFinishUsesLargerElapsed(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		ticks int
		wall  time.Duration
		want  int
	}{
		{name: "wall only", ticks: 0, wall: 45 * time.Second, want: 45},
		{name: "ticks ahead of wall", ticks: 50, wall: 48 * time.Second, want: 50},
		{name: "sub-second rounds", ticks: 0, wall: 44600 * time.Millisecond, want: 45},
		{name: "end before start clamps", ticks: 0, wall: -time.Minute, want: 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := domain.NewSession("c1", start)
			for i := 0; i < tc.ticks; i++ {
				s.Tick()
			}
			record := s.Finish(start.Add(tc.wall))
			if record.Duration != tc.want {
				t.Fatalf("expected duration %d, got %d", tc.want, record.Duration)
			}
			if record.EndTime < record.StartTime {
				t.Fatalf("end before start: %+v", record)
			}
		})
	}
}

func TestCatchUpNeverRewinds(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	s := domain.NewSession("c1", start)
	s.CatchUp(start.Add(90 * time.Second))
	if s.ElapsedSeconds != 90 {
		t.Fatalf("expected 90, got %d", s.ElapsedSeconds)
	}
	s.CatchUp(start.Add(30 * time.Second))
	if s.ElapsedSeconds != 90 {
		t.Fatalf("catch-up rewound to %d", s.ElapsedSeconds)
	}
}
