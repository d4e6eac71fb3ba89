package liveocr

import (
	"context"
	"fmt"
	"github.com/swdee/go-liveocr/postprocess"
	"github.com/swdee/go-liveocr/preprocess"
	"github.com/swdee/go-liveocr/render"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
	"time"
)

// PipelineParams defines the parameters used to construct a Pipeline
type PipelineParams struct {
	// DetectTimeout bounds a single detector call, zero leaves it bounded
	// only by the context passed to Annotate.  A call that times out keeps
	// running in the background.  Unless the detector is a Pool, the next
	// call waits for it to finish, and that wait counts against its own
	// timeout
	DetectTimeout time.Duration
	// MinDetectHeight enlarges frames shorter than this before detection,
	// zero disables scaling
	MinDetectHeight int
	// MaxScaleFactor caps the enlargement applied for MinDetectHeight
	MaxScaleFactor float64
	// Font is the base label font, its colour and thickness are taken from
	// the Style of each call
	Font render.Font
	// Logger receives detection warnings, nil disables logging
	Logger *zap.SugaredLogger
}

// DefaultPipelineParams returns the default pipeline parameters
func DefaultPipelineParams() PipelineParams {
	return PipelineParams{
		DetectTimeout:   10 * time.Second,
		MinDetectHeight: 0,
		MaxScaleFactor:  4,
		Font:            render.DefaultFont(),
	}
}

// Timing holds timers for the stages of a single annotation
type Timing struct {
	Start        time.Time
	NormalizeEnd time.Time
	DetectEnd    time.Time
	End          time.Time
}

// Total returns the time taken for the whole annotation
func (t Timing) Total() time.Duration {
	return t.End.Sub(t.Start)
}

// Detection returns the time spent in the detector
func (t Timing) Detection() time.Duration {
	return t.DetectEnd.Sub(t.NormalizeEnd)
}

// Result is the outcome of annotating one frame.  It is owned by the caller
// who must call Close to release the annotated frame
type Result struct {
	// Frame is a copy of the input frame with retained tokens drawn on it
	Frame gocv.Mat
	// Texts are the retained token texts in detector order
	Texts []string
	// Tokens are the retained tokens
	Tokens []postprocess.Token
	// Warning is set to a *DetectionError when detection failed and the
	// frame was annotated with zero tokens
	Warning error
	// Timing of each stage
	Timing Timing
}

// Close releases the annotated frame
func (r *Result) Close() error {
	return r.Frame.Close()
}

// Pipeline runs normalize, detect, filter and render on a frame.  It holds no
// per call state so Annotate may be called from multiple goroutines at once.
// Calls into a single Detector are serialised, use a Pool to detect on
// several frames in parallel
type Pipeline struct {
	detector Detector
	// detectSem is a one slot semaphore held for the whole detector call, nil
	// when the detector is a Pool which hands out one engine per call
	detectSem  chan struct{}
	normalizer preprocess.Normalizer
	scaler     preprocess.Scaler
	params     PipelineParams
	logger     *zap.SugaredLogger
}

// NewPipeline returns a Pipeline that detects text with det
func NewPipeline(det Detector, params PipelineParams) *Pipeline {

	logger := params.Logger

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	p := &Pipeline{
		detector: det,
		scaler:   preprocess.NewScaler(params.MinDetectHeight, params.MaxScaleFactor),
		params:   params,
		logger:   logger,
	}

	if _, ok := det.(*Pool); !ok {
		p.detectSem = make(chan struct{}, 1)
	}

	return p
}

// Annotate runs the full pipeline on a BGR frame using the given style.  The
// frame is not modified.  Only an invalid frame returns an error, a failing
// detector is reported through Result.Warning and the frame is annotated
// with zero tokens
func (p *Pipeline) Annotate(ctx context.Context, frame gocv.Mat, style Style) (*Result, error) {

	timing := Timing{Start: time.Now()}
	style = style.Normalize()

	binImg := gocv.NewMat()
	defer binImg.Close()

	if _, err := p.normalizer.Normalize(frame, &binImg); err != nil {
		return nil, fmt.Errorf("error normalizing frame: %w", err)
	}

	// enlarge small frames for the detector
	scaledImg := gocv.NewMat()
	defer scaledImg.Close()

	detImg := binImg
	factor := p.scaler.Scale(binImg, &scaledImg)

	if factor != 1 {
		detImg = scaledImg
	}

	timing.NormalizeEnd = time.Now()

	var warning error

	tokens, err := p.detect(ctx, detImg)

	if err != nil {
		warning = &DetectionError{Err: err}
		tokens = nil

		p.logger.Warnw("Text detection failed, annotating zero tokens",
			"error", err)
	}

	timing.DetectEnd = time.Now()

	if factor != 1 {
		tokens = mapTokens(tokens, factor)
	}

	kept := postprocess.FilterTokens(tokens, style.ConfidenceThreshold)
	annotated := render.Annotate(frame, kept, style.RenderOptions(p.params.Font))

	timing.End = time.Now()

	return &Result{
		Frame:   annotated,
		Texts:   postprocess.Texts(kept),
		Tokens:  kept,
		Warning: warning,
		Timing:  timing,
	}, nil
}

// detectResult carries the detector output back from its goroutine
type detectResult struct {
	tokens []postprocess.Token
	err    error
}

// detect runs the detector bounded by ctx and the configured timeout.  The
// detector works on its own copy of the image so an abandoned call can not
// touch memory released by the pipeline.  An abandoned call holds the
// detector until it returns.  A detector panic is returned as an error
func (p *Pipeline) detect(ctx context.Context, img gocv.Mat) ([]postprocess.Token, error) {

	if p.detector == nil {
		return nil, fmt.Errorf("no detector configured")
	}

	if p.params.DetectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.params.DetectTimeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// wait for any earlier call, including an abandoned one, to leave the
	// detector
	if p.detectSem != nil {
		select {
		case p.detectSem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	detImg := img.Clone()
	done := make(chan detectResult, 1)

	go func() {
		defer detImg.Close()

		if p.detectSem != nil {
			defer func() { <-p.detectSem }()
		}

		defer func() {
			if r := recover(); r != nil {
				done <- detectResult{err: fmt.Errorf("detector panic: %v", r)}
			}
		}()

		tokens, err := p.detector.Detect(ctx, detImg)
		done <- detectResult{tokens: tokens, err: err}
	}()

	select {
	case res := <-done:
		return res.tokens, res.err

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// mapTokens converts tokens detected on an image enlarged by factor back to
// source frame coordinates
func mapTokens(tokens []postprocess.Token, factor float64) []postprocess.Token {

	mapped := make([]postprocess.Token, len(tokens))

	for i, tok := range tokens {
		rect := preprocess.MapRect(tok.Rect(), factor)
		mapped[i] = postprocess.NewToken(tok.Text, rect, tok.Confidence)
	}

	return mapped
}
