package service

import (
	"context"
	"fmt"
	"strings"

	"frictionstudy/internal/cache"
	"frictionstudy/internal/model"
	"frictionstudy/internal/observability"
)

// Stats counter fields are "<kind>:<condition or stream>"
const (
	statStarted   = "started"
	statDecisions = "decisions"
	statCompleted = "completed"
	statFailed    = "failed"
)

// SetStats enables the monitor counters
func (s *StudyService) SetStats(stats cache.StatsCache) {
	s.stats = stats
}

// count bumps a counter. Failures are logged and never fail the interaction.
func (s *StudyService) count(ctx context.Context, kind, key string) {
	if s.stats == nil {
		return
	}
	if err := s.stats.Incr(ctx, kind+":"+key); err != nil {
		observability.LoggerFromContext(ctx).Warn("stats update failed", "field", kind+":"+key, "error", err)
	}
}

// Stats returns the running study counters
func (s *StudyService) Stats(ctx context.Context) (*model.StudyStats, error) {
	out := &model.StudyStats{
		Conditions:          make(map[model.Condition]*model.ConditionStats),
		PersistenceFailures: make(map[model.Stream]int64),
	}
	for _, c := range model.Conditions {
		out.Conditions[c] = &model.ConditionStats{}
	}
	if s.stats == nil {
		return out, nil
	}

	counters, err := s.stats.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	for field, n := range counters {
		kind, key, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		if kind == statFailed {
			out.PersistenceFailures[model.Stream(key)] = n
			continue
		}
		cs, ok := out.Conditions[model.Condition(key)]
		if !ok {
			continue
		}
		switch kind {
		case statStarted:
			cs.Started = n
		case statDecisions:
			cs.Decisions = n
		case statCompleted:
			cs.Completed = n
		}
	}
	return out, nil
}
