package service

import (
	"sync"
	"time"

	"vegan-agent-be/internal/dto"
	"vegan-agent-be/pkg/events"
)

// IStatsService keeps verdict tallies since process start.
type IStatsService interface {
	Record(evt events.ScanCompleted)
	Snapshot() *dto.StatsResponse
}

type statsService struct {
	mu         sync.RWMutex
	since      time.Time
	total      int
	toolCalls  int
	byVerdict  map[string]int
	byStatus   map[string]int
	byProvider map[string]int
}

func NewStatsService() IStatsService {
	return &statsService{
		since:      time.Now().UTC(),
		byVerdict:  make(map[string]int),
		byStatus:   make(map[string]int),
		byProvider: make(map[string]int),
	}
}

func (s *statsService) Record(evt events.ScanCompleted) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.toolCalls += evt.ToolCalls
	s.byVerdict[evt.Verdict]++
	s.byStatus[evt.Status]++
	if evt.Provider != "" {
		s.byProvider[evt.Provider]++
	}
}

func (s *statsService) Snapshot() *dto.StatsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &dto.StatsResponse{
		Total:      s.total,
		ByVerdict:  copyCounts(s.byVerdict),
		ByStatus:   copyCounts(s.byStatus),
		ByProvider: copyCounts(s.byProvider),
		ToolCalls:  s.toolCalls,
		Since:      s.since.Format(time.RFC3339),
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
