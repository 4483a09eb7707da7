package pipeline

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// reorderWindow bounds how many rasterized frames can be in flight ahead
// of the encoder. Keeps memory flat when one worker lags.
const reorderWindow = 16

type renderedFrame struct {
	index int
	img   *image.RGBA
}

// renderParallel rasterizes frames on a worker pool and encodes them in
// strict index order. Only stateless designs take this path; their
// Vertices calls are pure so frames can be produced out of order.
func (s *renderSession) renderParallel(parent context.Context) error {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers > s.totalFrames {
		workers = s.totalFrames
	}
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(parent)

	indices := make(chan int)
	results := make(chan renderedFrame, workers)
	tokens := make(chan struct{}, reorderWindow)

	// Feeder: one token per in-flight frame, released after encoding.
	g.Go(func() error {
		defer close(indices)
		for frame := 0; frame < s.totalFrames; frame++ {
			select {
			case tokens <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case indices <- frame:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	// Rasterizer workers close results once all are done.
	workerGroup, workerCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		workerGroup.Go(func() error {
			for frame := range indices {
				verts := s.design.Vertices(s.spectrumAt(frame), s.scene(frame))
				img := s.renderer.RenderFrame(verts)
				select {
				case results <- renderedFrame{index: frame, img: img}:
				case <-workerCtx.Done():
					s.renderer.ReleaseFrame(img)
					return workerCtx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(results)
		return workerGroup.Wait()
	})

	// Encoder: reorders results back into presentation order.
	g.Go(func() error {
		pending := make(map[int]*image.RGBA, reorderWindow)
		defer func() {
			for _, img := range pending {
				s.renderer.ReleaseFrame(img)
			}
		}()

		next := 0
		for rf := range results {
			pending[rf.index] = rf.img
			for {
				img, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				err := s.encoder.WriteFrameRGBA(img.Pix)
				s.renderer.ReleaseFrame(img)
				if err != nil {
					return fmt.Errorf("frame %d: %w", next, err)
				}
				s.reportProgress(next, s.spectrumAt(next))
				next++
				<-tokens
			}
		}
		if next < s.totalFrames {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fmt.Errorf("encoder stopped at frame %d of %d", next, s.totalFrames)
		}
		return nil
	})

	return g.Wait()
}
