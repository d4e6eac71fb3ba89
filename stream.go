package liveocr

import (
	"context"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"sync"
)

// StreamState is the state of a Stream
type StreamState int

const (
	// Idle is a stream with no frame source attached
	Idle StreamState = iota
	// Streaming is a stream accepting and annotating frames
	Streaming
)

func (s StreamState) String() string {

	switch s {
	case Idle:
		return "Idle"
	case Streaming:
		return "Streaming"
	}

	return "Unknown"
}

// SinkFunc receives each annotated frame.  The Result is closed once the sink
// returns so a sink that keeps the frame must Clone it
type SinkFunc func(res *Result)

// Stream runs a Pipeline against a live frame source.  Frames are pushed in
// without blocking the source and annotated one at a time in arrival order by
// a single worker.  At most one frame waits behind the one being annotated,
// a newer frame replaces a waiting one.  The style is read from the
// StyleStore once per frame, so a style change applies from the next frame
// the worker picks up
type Stream struct {
	pipeline *Pipeline
	styles   *StyleStore
	logger   *zap.SugaredLogger
	stats    *streamStats

	// mu guards the fields below
	mu      sync.Mutex
	state   StreamState
	session uint64
	pending chan gocv.Mat
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewStream returns an Idle stream annotating frames with pipeline using the
// live style in styles
func NewStream(pipeline *Pipeline, styles *StyleStore, logger *zap.SugaredLogger) *Stream {

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Stream{
		pipeline: pipeline,
		styles:   styles,
		logger:   logger,
		stats:    newStreamStats(),
		state:    Idle,
	}
}

// State returns the current stream state
func (s *Stream) State() StreamState {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Stats returns stream counters and timing
func (s *Stream) Stats() StreamStats {
	return s.stats.snapshot()
}

// Start moves the stream from Idle to Streaming and starts the worker which
// delivers every annotated frame to sink.  Cancelling ctx stops the stream as
// Stop does
func (s *Stream) Start(ctx context.Context, sink SinkFunc) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Streaming {
		return ErrAlreadyStreaming
	}

	ctx, cancel := context.WithCancel(ctx)

	s.session++
	s.state = Streaming
	s.cancel = cancel
	s.pending = make(chan gocv.Mat, 1)
	s.done = make(chan struct{})

	go s.run(ctx, s.session, s.pending, s.done, sink)

	// ctx cancelled by the caller behaves as Stop
	go func(session uint64) {
		<-ctx.Done()
		s.stopSession(session)
	}(s.session)

	s.logger.Infow("Stream started", "session", s.session)

	return nil
}

// Stop moves the stream to Idle immediately.  A frame being annotated is
// allowed to finish but its result is discarded
func (s *Stream) Stop() {

	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	s.stopSession(session)
}

// stopSession stops the stream if it is still running the given session
func (s *Stream) stopSession(session uint64) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Streaming || s.session != session {
		return
	}

	s.state = Idle
	s.cancel()

	s.logger.Infow("Stream stopped", "session", session)
}

// Wait blocks until the worker of the most recent session has exited
func (s *Stream) Wait() {

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Push hands a frame to the stream without blocking.  The stream takes a copy
// so the caller keeps ownership of frame.  If a frame is already waiting it
// is dropped in favour of this one.  Returns false when the stream is Idle
func (s *Stream) Push(frame gocv.Mat) bool {

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Streaming {
		return false
	}

	s.stats.received.Inc()
	clone := frame.Clone()

	select {
	case s.pending <- clone:
		return true
	default:
	}

	// replace the stale waiting frame, the worker may have taken it meanwhile
	select {
	case stale := <-s.pending:
		stale.Close()
		s.stats.dropped.Inc()
	default:
	}

	// only Push sends and it holds mu, so the slot is free
	s.pending <- clone

	return true
}

// active checks the session is still the running one
func (s *Stream) active(session uint64) bool {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state == Streaming && s.session == session
}

// run is the worker loop for one streaming session
func (s *Stream) run(ctx context.Context, session uint64, pending chan gocv.Mat,
	done chan struct{}, sink SinkFunc) {

	defer close(done)

	for {
		select {
		case <-ctx.Done():
			// release a frame left waiting
			select {
			case frame := <-pending:
				frame.Close()
			default:
			}
			return

		case frame := <-pending:
			s.processFrame(ctx, session, frame, sink)
			frame.Close()
		}
	}
}

// processFrame annotates a single frame with the current style and delivers
// it to the sink.  Errors are logged and counted, they never end the stream
func (s *Stream) processFrame(ctx context.Context, session uint64,
	frame gocv.Mat, sink SinkFunc) {

	// a fresh read of the whole style for this frame
	style := s.styles.Load()

	// an annotation in flight is allowed to complete after Stop
	res, err := s.pipeline.Annotate(context.WithoutCancel(ctx), frame, style)

	if err != nil {
		s.stats.failed.Inc()
		s.logger.Warnw("Error annotating frame", "error", err)
		return
	}

	defer res.Close()

	if res.Warning != nil {
		s.stats.warnings.Inc()
	}

	if !s.active(session) {
		s.stats.discarded.Inc()
		return
	}

	if sink != nil {
		sink(res)
	}

	s.stats.processed.Inc()
	s.stats.observe(res.Timing.Total(), res.Timing.End)
}
