package performance

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PerformanceMetrics tracks assembly run metrics
type PerformanceMetrics struct {
	TotalRuns           int64
	FailedRuns          int64
	TotalSegments       int64
	TotalWords          int64
	TotalProcessingTime time.Duration
	AvgRunTime          time.Duration
	MinRunTime          time.Duration
	MaxRunTime          time.Duration
	LastRunTime         time.Duration
	LastWords           int
	LastFailed          bool
	LastTimestamp       time.Time
}

// RunTimer tracks timing for an individual run
type RunTimer struct {
	StartTime      time.Time
	Segments       int
	Words          int
	ProcessingTime time.Duration
}

// PerformanceMonitor handles performance tracking and reporting.
// Unlike the assembly core it is shared across runs and safe for concurrent use.
type PerformanceMonitor struct {
	logger    *zap.Logger
	metrics   PerformanceMetrics
	mu        sync.RWMutex
	benchmark bool
}

// NewPerformanceMonitor creates a new performance monitor
func NewPerformanceMonitor(logger *zap.Logger) *PerformanceMonitor {
	return NewPerformanceMonitorWithBenchmark(logger, false)
}

// NewPerformanceMonitorWithBenchmark creates a performance monitor with benchmarking enabled
func NewPerformanceMonitorWithBenchmark(logger *zap.Logger, benchmark bool) *PerformanceMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceMonitor{
		logger: logger,
		metrics: PerformanceMetrics{
			MinRunTime:    time.Hour, // Initialize to large value
			LastTimestamp: time.Now(),
		},
		benchmark: benchmark,
	}
}

// StartRun begins timing a run. Segments and Words may be set on the timer
// once recognition has produced them.
func (pm *PerformanceMonitor) StartRun(segments, words int) *RunTimer {
	return &RunTimer{
		StartTime: time.Now(),
		Segments:  segments,
		Words:     words,
	}
}

// EndRun completes timing and updates metrics; failed runs count toward
// FailedRuns but not toward the timing statistics
func (pm *PerformanceMonitor) EndRun(timer *RunTimer, runErr error) {
	timer.ProcessingTime = time.Since(timer.StartTime)

	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.metrics.TotalRuns++
	pm.metrics.LastRunTime = timer.ProcessingTime
	pm.metrics.LastWords = timer.Words
	pm.metrics.LastFailed = runErr != nil
	pm.metrics.LastTimestamp = time.Now()

	if runErr != nil {
		pm.metrics.FailedRuns++
		if pm.benchmark {
			pm.logger.Info("assembly run failed",
				zap.Error(runErr),
				zap.Duration("processing_time", timer.ProcessingTime))
		}
		return
	}

	pm.metrics.TotalSegments += int64(timer.Segments)
	pm.metrics.TotalWords += int64(timer.Words)
	pm.metrics.TotalProcessingTime += timer.ProcessingTime

	if timer.ProcessingTime < pm.metrics.MinRunTime {
		pm.metrics.MinRunTime = timer.ProcessingTime
	}
	if timer.ProcessingTime > pm.metrics.MaxRunTime {
		pm.metrics.MaxRunTime = timer.ProcessingTime
	}

	succeeded := pm.metrics.TotalRuns - pm.metrics.FailedRuns
	pm.metrics.AvgRunTime = time.Duration(int64(pm.metrics.TotalProcessingTime) / succeeded)

	if pm.benchmark {
		pm.logger.Info("assembly performance",
			zap.Int("segments", timer.Segments),
			zap.Int("words", timer.Words),
			zap.Duration("processing_time", timer.ProcessingTime),
			zap.Float64("words_per_sec", float64(timer.Words)/timer.ProcessingTime.Seconds()),
		)
	}
}

// GetMetrics returns a copy of current metrics
func (pm *PerformanceMonitor) GetMetrics() PerformanceMetrics {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return pm.metrics
}

// GetPerformanceSummary returns a formatted summary of performance metrics
func (pm *PerformanceMonitor) GetPerformanceSummary() string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	succeeded := pm.metrics.TotalRuns - pm.metrics.FailedRuns
	if succeeded == 0 {
		return fmt.Sprintf("No successful assembly runs (%d failed)", pm.metrics.FailedRuns)
	}

	wordsPerSec := float64(pm.metrics.TotalWords) / pm.metrics.TotalProcessingTime.Seconds()

	return fmt.Sprintf(
		"Performance Summary:\n"+
			"  Total Runs: %d (%d failed)\n"+
			"  Segments: %d, Words: %d\n"+
			"  Avg Run Time: %v\n"+
			"  Min/Max Run Time: %v / %v\n"+
			"  Average Throughput: %.1f words/s\n",
		pm.metrics.TotalRuns,
		pm.metrics.FailedRuns,
		pm.metrics.TotalSegments,
		pm.metrics.TotalWords,
		pm.metrics.AvgRunTime,
		pm.metrics.MinRunTime,
		pm.metrics.MaxRunTime,
		wordsPerSec,
	)
}

// ResetMetrics clears all accumulated metrics
func (pm *PerformanceMonitor) ResetMetrics() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.metrics = PerformanceMetrics{
		MinRunTime:    time.Hour,
		LastTimestamp: time.Now(),
	}

	pm.logger.Info("performance metrics reset")
}

// BenchmarkMode enables or disables detailed benchmark logging
func (pm *PerformanceMonitor) BenchmarkMode(enabled bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.benchmark = enabled
	pm.logger.Info("benchmark mode", zap.Bool("enabled", enabled))
}

// LogCurrentMetrics logs the current performance metrics
func (pm *PerformanceMonitor) LogCurrentMetrics() {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	pm.logger.Info("current performance metrics",
		zap.Int64("total_runs", pm.metrics.TotalRuns),
		zap.Int64("failed_runs", pm.metrics.FailedRuns),
		zap.Int64("total_words", pm.metrics.TotalWords),
		zap.Duration("avg_run_time", pm.metrics.AvgRunTime),
		zap.Duration("last_run_time", pm.metrics.LastRunTime),
		zap.Bool("last_failed", pm.metrics.LastFailed),
	)
}
