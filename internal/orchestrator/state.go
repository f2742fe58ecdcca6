package orchestrator

import (
	"time"
)

type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageRunning   StageStatus = "running"
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// StageState tracks one stage through a run
type StageState struct {
	Name       string
	Status     StageStatus
	Attempts   int
	StartedAt  *time.Time
	FinishedAt *time.Time
	LastError  string
}

// Duration returns the wall time from first start to last finish,
// including retry backoff
func (s *StageState) Duration() time.Duration {
	if s.StartedAt == nil || s.FinishedAt == nil {
		return 0
	}
	return s.FinishedAt.Sub(*s.StartedAt)
}

// State holds per-stage execution state for a single run. The map is
// fully populated at construction and never written afterwards; each
// running stage mutates only its own entry.
type State struct {
	Stages map[string]*StageState

	order []string
}

func NewState(stages []Stage) *State {
	st := &State{
		Stages: make(map[string]*StageState, len(stages)),
		order:  make([]string, 0, len(stages)),
	}
	for _, s := range stages {
		st.Stages[s.Name] = &StageState{Name: s.Name, Status: StagePending}
		st.order = append(st.order, s.Name)
	}
	return st
}

// Summary returns stage states in declaration order
func (st *State) Summary() []StageState {
	out := make([]StageState, 0, len(st.order))
	for _, name := range st.order {
		if ss := st.Stages[name]; ss != nil {
			out = append(out, *ss)
		}
	}
	return out
}

// Failed returns the stages that ended in failure, in declaration order
func (st *State) Failed() []StageState {
	var out []StageState
	for _, name := range st.order {
		if ss := st.Stages[name]; ss != nil && ss.Status == StageFailed {
			out = append(out, *ss)
		}
	}
	return out
}

func markStarted(ss *StageState) {
	if ss == nil || ss.StartedAt != nil {
		return
	}
	now := time.Now().UTC()
	ss.StartedAt = &now
}

func markFinished(ss *StageState, lastErr string) {
	if ss == nil {
		return
	}
	now := time.Now().UTC()
	ss.FinishedAt = &now
	if lastErr != "" {
		ss.LastError = lastErr
	}
}
