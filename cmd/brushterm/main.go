package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/gdamore/tcell/v2"

	"prop-brush/internal/catalog"
	"prop-brush/internal/config"
	"prop-brush/internal/logging"
	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
	"prop-brush/internal/session"
)

// flatExtent is the half-size of the viewed region when there is no
// heightmap.
const flatExtent = 32

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Base directory for relative paths (default: working directory)")
	heightmap := flag.String("heightmap", "", "Heightmap image (TGA/PNG/JPEG); flat ground when empty")
	catalogXML := flag.String("catalog", "", "Catalog XML (default: catalog.xml)")
	tag := flag.String("tag", "", "Only offer catalog items with this tag")
	radius := flag.Float64("radius", 0, "Brush radius (default: 2)")
	count := flag.Int("count", 0, "Spawn count (default: 8)")
	seed := flag.Uint64("seed", 0, "Random seed (default: time based)")
	mute := flag.Bool("mute", false, "Disable the commit sound")
	logFile := flag.String("log", "", "Write debug logs to this file")

	flag.Parse()

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logging.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		DataDir:   *dataDir,
		Heightmap: *heightmap,
		Catalog:   *catalogXML,
		Tag:       *tag,
		Radius:    *radius,
		Count:     *count,
		Seed:      *seed,
	})

	cat, err := catalog.Load(cfg.CatalogXML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}
	sel := catalog.NewSelection(cat.List(cfg.CatalogTag))

	world, lo, hi, err := buildWorld(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading heightmap: %v\n", err)
		os.Exit(1)
	}

	opts := []session.Option{
		session.WithInstantiator(world),
		session.WithRadius(cfg.BrushRadius),
		session.WithSpawnCount(cfg.SpawnCount),
		session.WithCommitKey(cfg.CommitRune()),
		session.WithBoundaryDetail(cfg.BoundaryDetail),
	}
	if cfg.Seed != 0 {
		opts = append(opts, session.WithRand(rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))))
	}
	sess := session.New(world, opts...)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()

	p := newPainter(screen, world, sess, sel, lo, hi)
	if !*mute {
		audio, err := newBlipper()
		if err != nil {
			// Non-fatal, painting works without sound
			logging.Logger().Warn("audio unavailable", "err", err)
		}
		p.audio = audio
		defer audio.close()
	}

	p.run()
	screen.Fini()

	fmt.Printf("Placed %d props (%d undo groups)\n", len(world.Props()), world.UndoDepth())
}

// buildWorld loads the heightmap, or a ground plane at z=0, and returns the
// region to show.
func buildWorld(cfg config.Config) (*scene.World, mathutil.Vec3, mathutil.Vec3, error) {
	if cfg.Heightmap == "" {
		lo := mathutil.Vec3{-flatExtent, -flatExtent, 0}
		hi := mathutil.Vec3{flatExtent, flatExtent, 0}
		return scene.NewWorld(scene.NewPlane("ground", mathutil.Vec3{}, mathutil.Up)), lo, hi, nil
	}
	hf, err := scene.LoadHeightmap(cfg.Heightmap, scene.HeightmapOptions{
		CellSize:    cfg.CellSize,
		HeightScale: cfg.HeightScale,
		MaxSize:     cfg.MaxHeightmapSize,
	})
	if err != nil {
		return nil, mathutil.Vec3{}, mathutil.Vec3{}, err
	}
	lo, hi := hf.Bounds()
	return scene.NewWorld(hf), lo, hi, nil
}
