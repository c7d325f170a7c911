package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gaurav-prasanna/readmate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t200\t100\t-1\t\n" +
	"2\t1\t1\t0\t0\t0\t10\t10\t150\t40\t-1\t\n" +
	"3\t1\t1\t1\t0\t0\t10\t10\t150\t40\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t10\t10\t150\t20\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t60\t20\t96.5\tHello\n" +
	"5\t1\t1\t1\t1\t2\t80\t12\t80\t18\t91.0\tworld\n" +
	"4\t1\t1\t1\t2\t0\t10\t40\t40\t10\t-1\t\n" +
	"5\t1\t1\t1\t2\t1\t10\t40\t40\t10\t88.2\tagain\n" +
	"5\t1\t1\t1\t2\t2\t60\t40\t10\t10\t12.0\t \n"

func TestParseTSV(t *testing.T) {
	regions, err := ParseTSV([]byte(sampleTSV))
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, "Hello world", regions[0].Text)
	assert.InDelta(t, 0.05, regions[0].Box.X, 1e-9)
	assert.InDelta(t, 0.70, regions[0].Box.Y, 1e-9)
	assert.InDelta(t, 0.75, regions[0].Box.Width, 1e-9)
	assert.InDelta(t, 0.20, regions[0].Box.Height, 1e-9)

	assert.Equal(t, "again", regions[1].Text)
	assert.InDelta(t, 0.50, regions[1].Box.Y, 1e-9)
	assert.InDelta(t, 0.10, regions[1].Box.Height, 1e-9)
}

func TestParseTSVNoWords(t *testing.T) {
	regions, err := ParseTSV([]byte("level\tpage_num\n1\t1\t0\t0\t0\t0\t0\t0\t200\t100\t-1\t\n"))
	require.NoError(t, err)
	assert.NotNil(t, regions)
	assert.Empty(t, regions)
}

func TestParseTSVMalformed(t *testing.T) {
	_, err := ParseTSV([]byte("header\n5\tx\t1\n"))
	assert.Error(t, err)

	_, err = ParseTSV([]byte("header\n5\t1\t1\t1\t1\t1\tten\t10\t60\t20\t96.5\tHello\n"))
	assert.Error(t, err)
}

func fakeTesseract(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "tesseract")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestTesseractRecognize(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "out.tsv")
	require.NoError(t, os.WriteFile(fixture, []byte(sampleTSV), 0o644))
	bin := fakeTesseract(t, "cat >/dev/null\ncat "+fixture+"\n")

	regions, err := NewTesseract(WithBinary(bin)).Recognize(context.Background(), core.Raster{Data: []byte("png")})
	require.NoError(t, err)
	require.Len(t, regions, 2)
	assert.Equal(t, "Hello world", regions[0].Text)
}

func TestTesseractFailure(t *testing.T) {
	bin := fakeTesseract(t, "echo 'Error opening data file' >&2\nexit 1\n")

	_, err := NewTesseract(WithBinary(bin)).Recognize(context.Background(), core.Raster{Data: []byte("png")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error opening data file")

	_, err = NewTesseract(WithBinary(filepath.Join(t.TempDir(), "missing"))).Recognize(context.Background(), core.Raster{Data: []byte("png")})
	assert.Error(t, err)

	_, err = NewTesseract().Recognize(context.Background(), core.Raster{})
	assert.Error(t, err)
}

// recognizerFunc adapts a function to core.Recognizer.
type recognizerFunc func(ctx context.Context, r core.Raster) ([]core.RecognizedTextRegion, error)

func (f recognizerFunc) Recognize(ctx context.Context, r core.Raster) ([]core.RecognizedTextRegion, error) {
	return f(ctx, r)
}

func TestWorkerReturnsRegions(t *testing.T) {
	want := []core.RecognizedTextRegion{{Text: "hi", Box: core.Rect{X: 0.1, Y: 0.1, Width: 0.2, Height: 0.1}}}
	w := NewWorker(recognizerFunc(func(context.Context, core.Raster) ([]core.RecognizedTextRegion, error) {
		return want, nil
	}), nil)
	t.Cleanup(w.Close)

	got, err := w.Recognize(context.Background(), core.Raster{Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWorkerFailureIsEmptyAndNotRetried(t *testing.T) {
	var calls atomic.Int32
	w := NewWorker(recognizerFunc(func(context.Context, core.Raster) ([]core.RecognizedTextRegion, error) {
		calls.Add(1)
		return nil, errors.New("engine crashed")
	}), nil)
	t.Cleanup(w.Close)

	got, err := w.Recognize(context.Background(), core.Raster{Data: []byte("x")})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWorkerRunsOnOneGoroutine(t *testing.T) {
	var running, overlap atomic.Int32
	w := NewWorker(recognizerFunc(func(context.Context, core.Raster) ([]core.RecognizedTextRegion, error) {
		if running.Add(1) > 1 {
			overlap.Add(1)
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return nil, nil
	}), nil)
	t.Cleanup(w.Close)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := w.Recognize(context.Background(), core.Raster{Data: []byte("x")})
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
	}
	assert.Zero(t, overlap.Load())
}

func TestWorkerCancellation(t *testing.T) {
	release := make(chan struct{})
	w := NewWorker(recognizerFunc(func(ctx context.Context, _ core.Raster) ([]core.RecognizedTextRegion, error) {
		<-release
		return nil, nil
	}), nil)
	t.Cleanup(func() {
		close(release)
		w.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := w.Recognize(ctx, core.Raster{Data: []byte("x")})
	assert.ErrorIs(t, err, core.ErrCancelled)
}

func TestWorkerClosed(t *testing.T) {
	w := NewWorker(recognizerFunc(func(context.Context, core.Raster) ([]core.RecognizedTextRegion, error) {
		return nil, nil
	}), nil)
	w.Close()
	w.Close()

	_, err := w.Recognize(context.Background(), core.Raster{Data: []byte("x")})
	assert.ErrorIs(t, err, ErrWorkerClosed)
}
