package redirects

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trendfarm/internal/models"
)

var rulesHeader = []string{
	"# Affiliate link redirects - auto-generated",
	"# Do not edit manually",
	"",
}

// Store keeps the cloaked-path map as JSON and mirrors it into a static
// host rules file
type Store struct {
	mapPath   string
	rulesPath string
}

// NewStore creates a store for the JSON map and the rules file
func NewStore(mapPath, rulesPath string) *Store {
	return &Store{mapPath: mapPath, rulesPath: rulesPath}
}

// Load reads the redirect map. A missing file is an empty map.
func (s *Store) Load() (models.RedirectMap, error) {
	data, err := os.ReadFile(s.mapPath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.RedirectMap{}, nil
		}
		return nil, fmt.Errorf("failed to read redirect map: %w", err)
	}

	m := models.RedirectMap{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse redirect map %s: %w", s.mapPath, err)
	}
	return m, nil
}

// Save merges entries into the stored map (new keys win) and rewrites the
// rules file from the merged result
func (s *Store) Save(entries models.RedirectMap) (models.RedirectMap, error) {
	merged, err := s.Load()
	if err != nil {
		return nil, err
	}
	merged.Merge(entries)

	if err := writeFile(s.mapPath, func() ([]byte, error) {
		return json.MarshalIndent(merged, "", "  ")
	}); err != nil {
		return nil, fmt.Errorf("failed to write redirect map: %w", err)
	}

	if err := s.writeRules(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Regenerate rewrites the rules file from the stored map and returns the
// number of rules written
func (s *Store) Regenerate() (int, error) {
	m, err := s.Load()
	if err != nil {
		return 0, err
	}
	if err := s.writeRules(m); err != nil {
		return 0, err
	}
	return len(m), nil
}

func (s *Store) writeRules(m models.RedirectMap) error {
	if err := writeFile(s.rulesPath, func() ([]byte, error) {
		return []byte(RenderRules(m)), nil
	}); err != nil {
		return fmt.Errorf("failed to write redirect rules: %w", err)
	}
	return nil
}

// RenderRules renders one "<path>  <url>  302" line per entry, sorted by path
func RenderRules(m models.RedirectMap) string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	lines := append([]string(nil), rulesHeader...)
	for _, p := range paths {
		lines = append(lines, fmt.Sprintf("%s  %s  302", p, m[p]))
	}
	return strings.Join(lines, "\n") + "\n"
}

func writeFile(path string, render func() ([]byte, error)) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	data, err := render()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
