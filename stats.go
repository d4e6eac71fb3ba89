package liveocr

import (
	"go.uber.org/atomic"
	"gonum.org/v1/gonum/stat"
	"sync"
	"time"
)

// statsWindow is the number of recent frames latency and FPS are computed over
const statsWindow = 120

// StreamStats is a snapshot of stream health and performance
type StreamStats struct {
	// FramesReceived counts frames pushed while streaming
	FramesReceived int64
	// FramesProcessed counts frames annotated and delivered to the sink
	FramesProcessed int64
	// FramesDropped counts pending frames replaced by a newer frame before
	// they were processed
	FramesDropped int64
	// FramesFailed counts frames that could not be annotated
	FramesFailed int64
	// FramesDiscarded counts annotations finished after the stream stopped
	FramesDiscarded int64
	// DetectionWarnings counts frames annotated with zero tokens because
	// detection failed
	DetectionWarnings int64
	// LatencyMean and LatencyStdDev of annotation time over recent frames
	LatencyMean   time.Duration
	LatencyStdDev time.Duration
	// FPS is the rate frames were delivered over recent frames
	FPS float64
}

// streamStats records stream counters and a sliding window of recent frame
// timings
type streamStats struct {
	received  *atomic.Int64
	processed *atomic.Int64
	dropped   *atomic.Int64
	failed    *atomic.Int64
	discarded *atomic.Int64
	warnings  *atomic.Int64

	mu        sync.Mutex
	latencies []float64
	finished  []time.Time
	next      int
}

func newStreamStats() *streamStats {
	return &streamStats{
		received:  atomic.NewInt64(0),
		processed: atomic.NewInt64(0),
		dropped:   atomic.NewInt64(0),
		failed:    atomic.NewInt64(0),
		discarded: atomic.NewInt64(0),
		warnings:  atomic.NewInt64(0),
		latencies: make([]float64, 0, statsWindow),
		finished:  make([]time.Time, 0, statsWindow),
	}
}

// observe records the timing of a delivered frame
func (s *streamStats) observe(latency time.Duration, at time.Time) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.latencies) < statsWindow {
		s.latencies = append(s.latencies, float64(latency))
		s.finished = append(s.finished, at)
		return
	}

	s.latencies[s.next] = float64(latency)
	s.finished[s.next] = at
	s.next = (s.next + 1) % statsWindow
}

// snapshot returns the current statistics
func (s *streamStats) snapshot() StreamStats {

	res := StreamStats{
		FramesReceived:    s.received.Load(),
		FramesProcessed:   s.processed.Load(),
		FramesDropped:     s.dropped.Load(),
		FramesFailed:      s.failed.Load(),
		FramesDiscarded:   s.discarded.Load(),
		DetectionWarnings: s.warnings.Load(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.latencies) == 0 {
		return res
	}

	mean, std := stat.MeanStdDev(s.latencies, nil)

	res.LatencyMean = time.Duration(mean)

	// standard deviation is NaN for a single sample
	if len(s.latencies) > 1 {
		res.LatencyStdDev = time.Duration(std)
	}

	// oldest and newest completion times in the ring
	oldest, newest := s.finished[0], s.finished[len(s.finished)-1]

	if len(s.finished) == statsWindow {
		oldest = s.finished[s.next]
		newest = s.finished[(s.next+statsWindow-1)%statsWindow]
	}

	if span := newest.Sub(oldest).Seconds(); span > 0 {
		res.FPS = float64(len(s.finished)-1) / span
	}

	return res
}
