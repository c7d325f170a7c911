package ocr

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gaurav-prasanna/readmate/core"
)

// ErrWorkerClosed is returned by Recognize after Close.
var ErrWorkerClosed = errors.New("ocr worker closed")

type job struct {
	ctx    context.Context
	raster core.Raster
	reply  chan<- result
}

type result struct {
	regions []core.RecognizedTextRegion
	err     error
}

// Worker runs a Recognizer on a single dedicated goroutine. Recognition is
// attempted once; an engine failure is logged and reported as no text.
type Worker struct {
	rec    core.Recognizer
	logger *slog.Logger
	jobs   chan job
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewWorker starts a worker for rec. Call Close to stop it.
func NewWorker(rec core.Recognizer, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{
		rec:    rec,
		logger: logger,
		jobs:   make(chan job),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			return
		case j := <-w.jobs:
			if err := core.CheckCancelled(j.ctx); err != nil {
				j.reply <- result{err: err}
				continue
			}
			regions, err := w.rec.Recognize(j.ctx, j.raster)
			j.reply <- result{regions: regions, err: err}
		}
	}
}

// Recognize queues the raster and waits for the result. It returns an error
// only when ctx ends or the worker is closed; recognition failures yield an
// empty list.
func (w *Worker) Recognize(ctx context.Context, raster core.Raster) ([]core.RecognizedTextRegion, error) {
	reply := make(chan result, 1)
	select {
	case w.jobs <- job{ctx: ctx, raster: raster, reply: reply}:
	case <-ctx.Done():
		return nil, core.CheckCancelled(ctx)
	case <-w.quit:
		return nil, ErrWorkerClosed
	}

	select {
	case res := <-reply:
		if res.err != nil {
			if cerr := core.CheckCancelled(ctx); cerr != nil {
				return nil, cerr
			}
			w.logger.Warn("text recognition failed, continuing without text", "error", res.err)
			return []core.RecognizedTextRegion{}, nil
		}
		if res.regions == nil {
			res.regions = []core.RecognizedTextRegion{}
		}
		return res.regions, nil
	case <-ctx.Done():
		return nil, core.CheckCancelled(ctx)
	}
}

// Close stops the worker goroutine and waits for it to exit. A recognition in
// progress is allowed to finish first.
func (w *Worker) Close() {
	w.once.Do(func() { close(w.quit) })
	<-w.done
}
