package biometric

import (
	"context"
	"sync"
	"time"

	"facevote.io/infrastructure/biometric/types"
)

// statsRecorder is embedded by every encoder and detector.
type statsRecorder struct {
	mutex sync.RWMutex
	stats types.ProcessingStats
}

// updateStats updates processing statistics
func (s *statsRecorder) updateStats(processingTime time.Duration, success bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.stats.TotalRequests++
	if success {
		s.stats.SuccessfulRequests++
	}
	s.stats.TotalTime += processingTime.Milliseconds()
	s.stats.AverageTime = float64(s.stats.TotalTime) / float64(s.stats.TotalRequests)
}

// stopIfDone records a failed attempt and returns ctx's error once ctx is done.
func (s *statsRecorder) stopIfDone(ctx context.Context, startTime time.Time) error {
	if err := ctx.Err(); err != nil {
		s.updateStats(time.Since(startTime), false)
		return err
	}
	return nil
}

// GetStats returns processing statistics
func (s *statsRecorder) GetStats() types.ProcessingStats {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.stats
}
