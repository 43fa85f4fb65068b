package stroke

import (
	"encoding/json"
	"fmt"
	"os"

	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
)

// ManifestEntry is one placed prop in the output manifest.
type ManifestEntry struct {
	Handle   scene.Handle  `json:"handle"`
	Name     string        `json:"name"`
	Prefab   string        `json:"prefab"`
	Position mathutil.Vec3 `json:"position"`
	Rotation mathutil.Quat `json:"rotation"`
	Up       mathutil.Vec3 `json:"up"`
}

// Manifest lists the props placed by a run.
func Manifest(props []*scene.Prop) []ManifestEntry {
	entries := make([]ManifestEntry, len(props))
	for i, p := range props {
		entries[i] = ManifestEntry{
			Handle:   p.Handle,
			Name:     p.Name,
			Prefab:   p.Prefab,
			Position: p.Position,
			Rotation: p.Rotation,
			Up:       p.Up(),
		}
	}
	return entries
}

// WriteManifest writes the placed props as indented JSON.
func WriteManifest(path string, props []*scene.Prop) error {
	data, err := json.MarshalIndent(Manifest(props), "", "  ")
	if err != nil {
		return fmt.Errorf("stroke: manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("stroke: manifest: %w", err)
	}
	return nil
}
