// Package stroke replays scripted brush input against a session and renders
// the resulting frames, for headless painting and regression checks.
package stroke

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"prop-brush/internal/mathutil"
)

// Script is a sequence of input steps applied to one session.
type Script struct {
	CameraUp *mathutil.Vec3 `json:"camera_up,omitempty"` // default +Y
	Steps    []Step         `json:"steps"`
}

// Step is one frame of host input. Fields left at their zero value do
// nothing; they apply in declaration order.
type Step struct {
	Toggle     []int   `json:"toggle,omitempty"` // catalog item indices to flip
	Radius     float64 `json:"radius,omitempty"`
	Count      int     `json:"count,omitempty"`
	Scroll     float64 `json:"scroll,omitempty"`
	Deactivate bool    `json:"deactivate,omitempty"`
	Activate   bool    `json:"activate,omitempty"`
	Aim        *AimRay `json:"aim,omitempty"`
	Key        string  `json:"key,omitempty"`
	Commit     bool    `json:"commit,omitempty"`
	Undo       bool    `json:"undo,omitempty"`
	Preview    bool    `json:"preview,omitempty"`
	Label      string  `json:"label,omitempty"`
}

// AimRay is the camera ray through the cursor.
type AimRay struct {
	Origin mathutil.Vec3 `json:"origin"`
	Dir    mathutil.Vec3 `json:"dir"`
}

// Load reads a JSON stroke script.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("stroke: read %s: %w", path, err)
	}
	var sc Script
	if err := json.Unmarshal(data, &sc); err != nil {
		return Script{}, fmt.Errorf("stroke: parse %s: %w", path, err)
	}
	for i, st := range sc.Steps {
		if st.Aim != nil && st.Aim.Dir.Len() == 0 {
			return Script{}, fmt.Errorf("stroke: %s: step %d: aim direction is zero", path, i)
		}
		if strings.ContainsAny(st.Label, `/\`) {
			return Script{}, fmt.Errorf("stroke: %s: step %d: label %q contains a path separator", path, i, st.Label)
		}
	}
	return sc, nil
}
