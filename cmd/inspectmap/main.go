package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
)

func main() {
	cell := flag.Float64("cell", 1, "World units between heightmap samples")
	scale := flag.Float64("scale", 10, "World height of a white pixel")
	maxSize := flag.Int("max", 0, "Downscale so neither side exceeds this (0 = keep)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: inspectmap [-cell N] [-scale N] [-max N] <heightmap>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	hf, err := scene.LoadHeightmap(path, scene.HeightmapOptions{CellSize: *cell, HeightScale: *scale, MaxSize: *maxSize})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	lo, hi := hf.Bounds()
	fmt.Printf("Samples: %d x %d, cell %.2f\n", hf.Width, hf.Depth, hf.CellSize)
	fmt.Printf("Extent: X[%.1f, %.1f] Y[%.1f, %.1f]\n", lo[0], hi[0], lo[1], hi[1])
	fmt.Printf("Height: [%.2f, %.2f]\n", lo[2], hi[2])

	sum := 0.0
	for _, h := range hf.Heights {
		sum += h
	}
	fmt.Printf("Mean height: %.2f\n", sum/float64(len(hf.Heights)))

	// Slope distribution, in 15 degree buckets, sampled at every grid point.
	var buckets [6]int
	steepest := 0.0
	for j := 0; j < hf.Depth; j++ {
		for i := 0; i < hf.Width; i++ {
			x := lo[0] + float64(i)*hf.CellSize
			y := lo[1] + float64(j)*hf.CellSize
			n := hf.NormalAt(x, y)
			deg := math.Acos(math.Min(n.Dot(mathutil.Up), 1)) * 180 / math.Pi
			steepest = math.Max(steepest, deg)
			buckets[min(int(deg/15), len(buckets)-1)]++
		}
	}
	total := hf.Width * hf.Depth
	fmt.Println("--- Slope ---")
	for b, n := range buckets {
		label := fmt.Sprintf("%2d-%2d deg", b*15, (b+1)*15)
		if b == len(buckets)-1 {
			label = fmt.Sprintf("%2d+    deg", b*15)
		}
		fmt.Printf("  %s: %6d (%.1f%%)\n", label, n, 100*float64(n)/float64(total))
	}
	fmt.Printf("  steepest: %.1f deg\n", steepest)

	// Probe the centre the same way the brush aims: straight down from above.
	cx, cy := (lo[0]+hi[0])/2, (lo[1]+hi[1])/2
	origin := mathutil.Vec3{cx, cy, hi[2] + 10}
	if hit, ok := hf.CastRay(origin, mathutil.Vec3{0, 0, -1}, scene.Unbounded); ok {
		fmt.Printf("Centre probe: hit z=%.2f normal (%.2f, %.2f, %.2f)\n", hit.Point[2], hit.Normal[0], hit.Normal[1], hit.Normal[2])
	} else {
		fmt.Println("Centre probe: miss")
	}
}
