package glide

import (
	"sync"
	"time"
)

// ProgressTracker tracks transfer progress and invokes progress callbacks.
// Units are chunks for uploads and bytes for downloads.
type ProgressTracker struct {
	mu sync.Mutex

	filename   string
	unitsDone  int64
	unitsTotal int64
	startTime  time.Time
	lastUpdate time.Time
	lastUnits  int64

	callback       func(string, int64, int64, float64)
	updateInterval time.Duration
}

// NewProgressTracker creates a new progress tracker.
func NewProgressTracker(callback func(string, int64, int64, float64), interval time.Duration) *ProgressTracker {
	if interval < 0 {
		interval = 100 * time.Millisecond
	}

	return &ProgressTracker{
		callback:       callback,
		updateInterval: interval,
	}
}

// Start begins tracking a new transfer.
func (pt *ProgressTracker) Start(filename string, unitsTotal int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.filename = filename
	pt.unitsTotal = unitsTotal
	pt.unitsDone = 0
	pt.startTime = time.Now()
	pt.lastUpdate = pt.startTime
	pt.lastUnits = 0
}

// Update records progress and invokes the callback if enough time has
// passed since the last update.
func (pt *ProgressTracker) Update(unitsDone int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	pt.unitsDone = unitsDone

	now := time.Now()
	if pt.updateInterval > 0 && now.Sub(pt.lastUpdate) < pt.updateInterval {
		return // Too soon for an update
	}

	elapsed := now.Sub(pt.lastUpdate).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(unitsDone-pt.lastUnits) / elapsed
	}

	if pt.callback != nil {
		pt.callback(pt.filename, unitsDone, pt.unitsTotal, rate)
	}

	pt.lastUpdate = now
	pt.lastUnits = unitsDone
}

// Complete issues a final callback and returns the transfer duration.
func (pt *ProgressTracker) Complete() time.Duration {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	duration := time.Since(pt.startTime)

	if pt.callback != nil {
		pt.callback(pt.filename, pt.unitsDone, pt.unitsTotal, 0)
	}

	return duration
}

// Stats returns current progress statistics.
func (pt *ProgressTracker) Stats() (filename string, done, total int64, rate float64, duration time.Duration) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	filename = pt.filename
	done = pt.unitsDone
	total = pt.unitsTotal
	duration = time.Since(pt.startTime)

	if duration.Seconds() > 0 {
		rate = float64(done) / duration.Seconds()
	}

	return
}
