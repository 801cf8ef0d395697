package service

import (
	"sync/atomic"
	"time"

	"signal_bot/internal/runner"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	lastSweepUnix atomic.Int64 // unix seconds
	sweeps        atomic.Int64
	executed      atomic.Int64
	denied        atomic.Int64
	failed        atomic.Int64
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// SweepDone: готовность выставляется после первого завершённого прохода.
func (s *State) SweepDone(r runner.SweepReport) {
	s.lastSweepUnix.Store(r.StartedAt.Add(r.Duration).Unix())
	s.sweeps.Add(1)
	s.executed.Store(int64(r.Executed))
	s.denied.Store(int64(r.Denied))
	s.failed.Store(int64(r.Failed))
	s.ready.Store(true)
}

func (s *State) LastSweep() time.Time {
	u := s.lastSweepUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

// LastCounts: executed/denied/failed последнего прохода.
func (s *State) LastCounts() (executed, denied, failed int64) {
	return s.executed.Load(), s.denied.Load(), s.failed.Load()
}

func (s *State) Sweeps() int64 { return s.sweeps.Load() }

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
