package pipeline

import "sync"

// Stats accumulates in-process counters since startup. Persistent
// statistics across restarts live in the job history store; these are
// the cheap always-on numbers for the stats endpoint.
type Stats struct {
	mu          sync.Mutex
	total       int64
	succeeded   int64
	failed      int64
	cacheHits   int64
	byProvider  map[string]int64
	durationSum int64
}

func NewStats() *Stats {
	return &Stats{byProvider: make(map[string]int64)}
}

// StatsSnapshot is a point-in-time copy safe to serialize.
type StatsSnapshot struct {
	Total         int64            `json:"total_requests"`
	Succeeded     int64            `json:"succeeded"`
	Failed        int64            `json:"failed"`
	CacheHits     int64            `json:"cache_hits"`
	ByProvider    map[string]int64 `json:"by_provider"`
	AvgDurationMS int64            `json:"avg_duration_ms"`
}

func (s *Stats) Record(resp Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if resp.Success {
		s.succeeded++
	} else {
		s.failed++
	}
	if resp.FromCache {
		s.cacheHits++
	}
	if resp.Provider != "" && !resp.FromCache {
		s.byProvider[resp.Provider]++
	}
	s.durationSum += resp.DurationMS
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	byProvider := make(map[string]int64, len(s.byProvider))
	for k, v := range s.byProvider {
		byProvider[k] = v
	}
	snap := StatsSnapshot{
		Total:      s.total,
		Succeeded:  s.succeeded,
		Failed:     s.failed,
		CacheHits:  s.cacheHits,
		ByProvider: byProvider,
	}
	if s.total > 0 {
		snap.AvgDurationMS = s.durationSum / s.total
	}
	return snap
}
