package liveocr

import (
	"context"
	"fmt"
	"github.com/swdee/go-liveocr/postprocess"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
	"io"
	"sync"
)

// Pool is a simple pool of detectors.  OCR engines such as a Tesseract client
// hold per image state and can not be shared between goroutines, the pool
// hands each caller its own instance so a Pipeline using it stays reentrant.
// Pool itself implements Detector
type Pool struct {
	// pool of detectors
	detectors chan Detector
	// size of pool
	size int
	// mu guards closed against concurrent Return
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a pool of size detectors built by factory, which is given
// the index of the detector being created
func NewPool(size int, factory func(i int) (Detector, error)) (*Pool, error) {

	if size < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", size)
	}

	p := &Pool{
		detectors: make(chan Detector, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		det, err := factory(i)

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			return nil, multierr.Append(
				fmt.Errorf("error creating detector %d: %w", i, err), p.Close())
		}

		// attach to pool
		p.Return(det)
	}

	return p, nil
}

// Size returns the number of detectors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Get a detector from the pool, waiting until one is free or ctx is done
func (p *Pool) Get(ctx context.Context) (Detector, error) {

	select {
	case det, ok := <-p.detectors:
		if !ok {
			return nil, ErrPoolClosed
		}
		return det, nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Return a detector to the pool.  A detector returned after the pool has been
// closed is closed instead
func (p *Pool) Return(det Detector) {

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		_ = closeDetector(det)
		return
	}

	select {
	case p.detectors <- det:
	default:
		// pool is full
		_ = closeDetector(det)
	}
}

// Detect borrows a detector from the pool for the duration of the call
func (p *Pool) Detect(ctx context.Context, img gocv.Mat) ([]postprocess.Token, error) {

	det, err := p.Get(ctx)

	if err != nil {
		return nil, err
	}

	defer p.Return(det)

	return det.Detect(ctx, img)
}

// Close the pool and all idle detectors in it.  Detectors currently in use
// are closed when returned
func (p *Pool) Close() error {

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	close(p.detectors)

	var err error

	for det := range p.detectors {
		err = multierr.Append(err, closeDetector(det))
	}

	return err
}

// closeDetector closes the detector if it holds resources
func closeDetector(det Detector) error {

	if c, ok := det.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
