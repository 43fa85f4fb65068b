package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"prop-brush/internal/catalog"
	"prop-brush/internal/config"
	"prop-brush/internal/logging"
	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
	"prop-brush/internal/session"
	"prop-brush/internal/stroke"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	scriptFile := flag.String("script", "", "Path to a stroke script (required)")
	dataDir := flag.String("data", "", "Base directory for relative paths (default: working directory)")
	heightmap := flag.String("heightmap", "", "Heightmap image (TGA/PNG/JPEG); flat ground when empty")
	catalogXML := flag.String("catalog", "", "Catalog XML (default: catalog.xml)")
	tag := flag.String("tag", "", "Only offer catalog items with this tag")
	all := flag.Bool("all", false, "Enable every catalog item before the script runs")
	outputDir := flag.String("output", "", "Output directory (default: brush-out)")
	radius := flag.Float64("radius", 0, "Brush radius (default: 2)")
	count := flag.Int("count", 0, "Spawn count (default: 8)")
	seed := flag.Uint64("seed", 0, "Random seed (default: time based)")
	workers := flag.Int("workers", 0, "Number of preview worker goroutines (default: NumCPU)")
	verbose := flag.Bool("v", false, "Debug logging to stderr")

	flag.Parse()

	logging.SetLogger(logging.Stderr(*verbose))

	if *scriptFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -script is required")
		flag.Usage()
		os.Exit(1)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		DataDir:   *dataDir,
		Heightmap: *heightmap,
		Catalog:   *catalogXML,
		Tag:       *tag,
		OutputDir: *outputDir,
		Radius:    *radius,
		Count:     *count,
		Seed:      *seed,
		Workers:   *workers,
	})

	script, err := stroke.Load(*scriptFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading script: %v\n", err)
		os.Exit(1)
	}

	// Load catalog
	cat, err := catalog.Load(cfg.CatalogXML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}
	items := cat.List(cfg.CatalogTag)
	if len(items) == 0 {
		fmt.Fprintf(os.Stderr, "Warning: no catalog items tagged %q, painting placeholders only\n", cfg.CatalogTag)
	}
	sel := catalog.NewSelection(items)
	if *all {
		for i := 0; i < sel.Len(); i++ {
			sel.Set(i, true)
		}
	}

	// Build the world
	world, err := buildWorld(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading heightmap: %v\n", err)
		os.Exit(1)
	}

	opts := []session.Option{
		session.WithInstantiator(world),
		session.WithItems(sel.Selected()),
		session.WithRadius(cfg.BrushRadius),
		session.WithSpawnCount(cfg.SpawnCount),
		session.WithCommitKey(cfg.CommitRune()),
		session.WithBoundaryDetail(cfg.BoundaryDetail),
	}
	if cfg.Seed != 0 {
		opts = append(opts, session.WithRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))))
	}
	sess := session.New(world, opts...)

	// Print summary
	terrain := "flat ground"
	if cfg.Heightmap != "" {
		terrain = cfg.Heightmap
	}
	fmt.Println("Prop brush: scripted paint")
	fmt.Printf("Terrain: %s\n", terrain)
	fmt.Printf("Catalog: %d items (%d enabled), Steps: %d\n", len(items), len(sel.Selected()), len(script.Steps))
	fmt.Printf("Radius: %.2f, Spawn count: %d, Workers: %d\n", sess.Radius(), sess.SpawnCount(), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	res, err := stroke.Replay(sess, world, sel, script)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error replaying script: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Commits: %d, Placed: %d, Undone: %d, Props: %d\n",
		res.Commits, res.Requests, res.Undone, len(world.Props()))

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	results := stroke.RenderAll(stroke.RenderConfig{
		OutputDir:   cfg.OutputDir,
		Size:        cfg.PreviewSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
	}, res.Frames)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			fmt.Printf("  step %d: %s\n", r.Step, r.Error)
		}
	}
	fmt.Printf("Previews: %d/%d\n", len(results)-failed, len(results))

	manifestPath := filepath.Join(cfg.OutputDir, "placements.json")
	if err := stroke.WriteManifest(manifestPath, world.Props()); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing placements: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Placements: %s\n", manifestPath)

	if failed > 0 {
		os.Exit(1)
	}
}

// buildWorld loads the configured heightmap, or lays a ground plane at z=0
// when none is set.
func buildWorld(cfg config.Config) (*scene.World, error) {
	if cfg.Heightmap == "" {
		return scene.NewWorld(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up)), nil
	}
	hf, err := scene.LoadHeightmap(cfg.Heightmap, scene.HeightmapOptions{
		CellSize:    cfg.CellSize,
		HeightScale: cfg.HeightScale,
		MaxSize:     cfg.MaxHeightmapSize,
	})
	if err != nil {
		return nil, err
	}
	lo, hi := hf.Bounds()
	fmt.Printf("Heightmap: %.0f x %.0f units, height %.2f..%.2f\n", hi[0]-lo[0], hi[1]-lo[1], lo[2], hi[2])
	return scene.NewWorld(hf), nil
}
