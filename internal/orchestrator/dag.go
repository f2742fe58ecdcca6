package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RetryPolicy bounds how often a failed stage is re-run. A nil Retryable
// treats every error as retryable.
type RetryPolicy struct {
	MaxAttempts int
	Retryable   func(err error) bool

	MinBackoff time.Duration // default 1s
	MaxBackoff time.Duration // default 30s
	JitterFrac float64       // default 0.20
}

// Stage is one node of the pipeline graph. Deps name stages that must
// succeed before this one starts; stages with no ordering between them
// run concurrently.
type Stage struct {
	Name    string
	Deps    []string
	Timeout time.Duration
	Retry   RetryPolicy
	Run     func(ctx context.Context) error
}

// validateDAG checks stage names and dependencies and returns a
// topological order, stable by declaration order (Kahn).
func validateDAG(stages []Stage) ([]string, error) {
	if len(stages) == 0 {
		return nil, nil
	}
	seen := map[string]bool{}
	for _, s := range stages {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("stage missing Name")
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate stage name %q", name)
		}
		seen[name] = true
	}
	for _, s := range stages {
		for _, dep := range s.Deps {
			if !seen[dep] {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", s.Name, dep)
			}
		}
	}

	deg := map[string]int{}
	out := map[string][]string{}
	for _, s := range stages {
		deg[s.Name] = 0
	}
	for _, s := range stages {
		for _, dep := range s.Deps {
			deg[s.Name]++
			out[dep] = append(out[dep], s.Name)
		}
	}

	order := make([]string, 0, len(stages))
	added := map[string]bool{}
	for {
		progressed := false
		for _, s := range stages {
			if added[s.Name] {
				continue
			}
			if deg[s.Name] == 0 {
				added[s.Name] = true
				order = append(order, s.Name)
				for _, n := range out[s.Name] {
					deg[n]--
				}
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	if len(order) != len(stages) {
		return nil, fmt.Errorf("cycle detected in stage graph")
	}
	return order, nil
}

// depsSatisfied reports whether every dependency of def has succeeded
func depsSatisfied(def Stage, st *State) bool {
	for _, dep := range def.Deps {
		ss := st.Stages[dep]
		if ss == nil || ss.Status != StageSucceeded {
			return false
		}
	}
	return true
}

// depsBlocked reports whether any dependency of def failed or was
// skipped, which skips def as well
func depsBlocked(def Stage, st *State) bool {
	for _, dep := range def.Deps {
		ss := st.Stages[dep]
		if ss == nil {
			continue
		}
		if ss.Status == StageFailed || ss.Status == StageSkipped {
			return true
		}
	}
	return false
}
