package server

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"example.com/bayerfix/internal/frame"
)

// DefaultProfileName is the geometry profile used when a request does not
// name one.
const DefaultProfileName = "default"

// GeometryProfile binds a sensor geometry to a name clients can select in
// API requests.
type GeometryProfile struct {
	Name     string         `yaml:"name"`
	Geometry frame.Geometry `yaml:"geometry"`
}

// Options configures server creation.
type Options struct {
	StorageDir  string
	ProfileFile string
	Profiles    []GeometryProfile
	Concurrency int
}

// LoadGeometryProfiles parses a YAML document enumerating the geometry
// profiles the daemon serves.
func LoadGeometryProfiles(path string) ([]GeometryProfile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("profile path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open profiles: %w", err)
	}
	var doc struct {
		Profiles []GeometryProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	if len(doc.Profiles) == 0 {
		return nil, errors.New("profile file contains no profiles")
	}
	return doc.Profiles, nil
}

func buildProfileMap(opts Options) (map[string]frame.Geometry, []string, error) {
	profiles := opts.Profiles
	if len(profiles) == 0 && strings.TrimSpace(opts.ProfileFile) != "" {
		var err error
		profiles, err = LoadGeometryProfiles(opts.ProfileFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load geometry profiles: %w", err)
		}
	}
	entries := make(map[string]frame.Geometry)
	for _, p := range profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, nil, errors.New("geometry profile missing name")
		}
		geo := p.Geometry
		if geo.Width == 0 && geo.Height == 0 {
			geo = frame.DefaultGeometry()
		}
		// Profiles usually only override the frame dimensions, so the
		// tuning knobs fall back the same way LoadGeometry backfills them.
		if geo.PatchSize == 0 {
			geo.PatchSize = frame.DefaultPatchSize
		}
		if geo.IntegScaleMs <= 0 {
			geo.IntegScaleMs = frame.DefaultIntegScaleMs
		}
		if err := geo.Validate(); err != nil {
			return nil, nil, fmt.Errorf("profile %s: %w", name, err)
		}
		if _, exists := entries[name]; exists {
			return nil, nil, fmt.Errorf("duplicate profile %s configured", name)
		}
		entries[name] = geo
	}
	if _, ok := entries[DefaultProfileName]; !ok {
		entries[DefaultProfileName] = frame.DefaultGeometry()
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return entries, names, nil
}
