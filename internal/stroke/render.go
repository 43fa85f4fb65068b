package stroke

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"prop-brush/internal/preview"
)

// RenderConfig holds the shared settings for rendering replay frames.
type RenderConfig struct {
	OutputDir   string
	Size        int
	Supersample int
	Workers     int
	Quiet       bool // no progress lines
}

// RenderResult is the outcome of rendering one frame.
type RenderResult struct {
	Step    int
	Label   string
	Path    string
	Success bool
	Error   string
}

// FrameName returns the file name used for the n-th rendered frame.
func FrameName(n int, f Frame) string {
	if f.Label != "" {
		return fmt.Sprintf("%03d_%s.webp", n, f.Label)
	}
	return fmt.Sprintf("%03d.webp", n)
}

// RenderAll renders every frame to a WebP file using a worker pool.
// Results are in frame order.
func RenderAll(cfg RenderConfig, frames []Frame) []RenderResult {
	total := len(frames)
	results := make([]RenderResult, total)
	workers := max(cfg.Workers, 1)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && !cfg.Quiet {
					rate := float64(p) / time.Since(start).Seconds()
					fmt.Printf("  [%d/%d] %.1f frames/sec\n", p, total, rate)
				}
			}
		}
	}()

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = renderFrame(cfg, idx, frames[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range frames {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

func renderFrame(cfg RenderConfig, n int, f Frame) RenderResult {
	res := RenderResult{
		Step:  f.Step,
		Label: f.Label,
		Path:  filepath.Join(cfg.OutputDir, FrameName(n, f)),
	}
	img, err := preview.Render(f.World, f.Hints, preview.Options{Size: cfg.Size, Supersample: cfg.Supersample})
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if err := preview.WriteFile(res.Path, img); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}
