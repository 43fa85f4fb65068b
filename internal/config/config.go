package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"unicode/utf8"
)

// Config holds all configurable paths, brush settings and preview settings.
type Config struct {
	// Paths
	BaseDir    string `json:"base_dir"`
	CatalogXML string `json:"catalog_xml"`
	CatalogTag string `json:"catalog_tag"`
	Heightmap  string `json:"heightmap"`
	OutputDir  string `json:"output_dir"`

	// Terrain
	CellSize         float64 `json:"cell_size"`
	HeightScale      float64 `json:"height_scale"`
	MaxHeightmapSize int     `json:"max_heightmap_size"`

	// Brush
	BrushRadius    float64 `json:"brush_radius"`
	SpawnCount     int     `json:"spawn_count"`
	CommitKey      string  `json:"commit_key"`
	BoundaryDetail int     `json:"boundary_detail"`
	Seed           uint64  `json:"seed"`

	// Preview settings
	PreviewSize int `json:"preview_size"`
	Supersample int `json:"supersample"`
	Workers     int `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults and clamps brush settings
// to their minimums. CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.DataDir != "" {
		c.BaseDir = flags.DataDir
	}
	if flags.Heightmap != "" {
		c.Heightmap = flags.Heightmap
	}
	if flags.Catalog != "" {
		c.CatalogXML = flags.Catalog
	}
	if flags.Tag != "" {
		c.CatalogTag = flags.Tag
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Radius != 0 {
		c.BrushRadius = flags.Radius
	}
	if flags.Count != 0 {
		c.SpawnCount = flags.Count
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}

	// Resolve relative paths against base dir
	c.CatalogXML = c.resolvePath(c.CatalogXML, "catalog.xml")
	c.Heightmap = c.resolvePath(c.Heightmap, "")
	c.OutputDir = c.resolvePath(c.OutputDir, "brush-out")

	// Terrain defaults
	if c.CellSize <= 0 {
		c.CellSize = 1
	}
	if c.HeightScale <= 0 {
		c.HeightScale = 10
	}

	// Brush: clamp rather than reject
	if c.BrushRadius == 0 {
		c.BrushRadius = 2
	}
	if math.IsNaN(c.BrushRadius) || math.IsInf(c.BrushRadius, 0) {
		c.BrushRadius = 1
	}
	c.BrushRadius = max(c.BrushRadius, 1)
	if c.SpawnCount == 0 {
		c.SpawnCount = 8
	}
	c.SpawnCount = max(c.SpawnCount, 1)
	if utf8.RuneCountInString(c.CommitKey) != 1 {
		c.CommitKey = "p"
	}
	if c.BoundaryDetail <= 0 {
		c.BoundaryDetail = 128
	}

	// Defaults for preview settings
	if c.PreviewSize <= 0 {
		c.PreviewSize = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// CommitRune returns the commit key as a rune.
func (c *Config) CommitRune() rune {
	r, _ := utf8.DecodeRuneInString(c.CommitKey)
	return r
}

func (c *Config) resolvePath(p, def string) string {
	if p == "" {
		if def == "" {
			return ""
		}
		p = def
	}
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir   string
	Heightmap string
	Catalog   string
	Tag       string
	OutputDir string
	Radius    float64
	Count     int
	Seed      uint64
	Workers   int
}
