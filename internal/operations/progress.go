package operations

import (
	"fmt"
	"sync"
	"time"
)

// ProgressTracker counts instruments through a step
type ProgressTracker struct {
	Step      string
	Total     int
	Current   int
	StartTime time.Time
	mu        sync.Mutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(step string, total int) *ProgressTracker {
	return &ProgressTracker{
		Step:      step,
		Total:     total,
		StartTime: time.Now(),
	}
}

// Increment records one finished item and returns the new count
func (p *ProgressTracker) Increment() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Current++
	return p.Current
}

// GetProgress returns the current progress state
func (p *ProgressTracker) GetProgress() (current, total int, percentage float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Total > 0 {
		percentage = float64(p.Current) / float64(p.Total) * 100
	}
	return p.Current, p.Total, percentage
}

// GetETA calculates the estimated time remaining
func (p *ProgressTracker) GetETA() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Current == 0 || p.Total == 0 {
		return "calculating..."
	}

	elapsed := time.Since(p.StartTime)
	rate := float64(p.Current) / elapsed.Seconds()
	if rate == 0 {
		return "calculating..."
	}

	remaining := float64(p.Total-p.Current) / rate
	switch {
	case remaining < 60:
		return fmt.Sprintf("%.0f seconds", remaining)
	case remaining < 3600:
		return fmt.Sprintf("%.1f minutes", remaining/60)
	default:
		return fmt.Sprintf("%.1f hours", remaining/3600)
	}
}

// ShouldReport is true at every tenth of the total and at the end
func (p *ProgressTracker) ShouldReport(current int) bool {
	if p.Total <= 10 {
		return true
	}
	return current == p.Total || current%(p.Total/10) == 0
}
