// Package artifacts persists finished predictions to disk: the output
// as JSON next to a yaml metadata sidecar. The CLI uses it for
// `run --save-dir`; the library never writes to disk on its own.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mlship/replicate-go/pkg/api"
)

// Metadata is the yaml sidecar written next to every saved output.
type Metadata struct {
	PredictionID string         `yaml:"prediction_id"`
	Version      string         `yaml:"version"`
	Status       api.Status     `yaml:"status"`
	CreatedAt    string         `yaml:"created_at"`
	CompletedAt  string         `yaml:"completed_at,omitempty"`
	SavedAt      time.Time      `yaml:"saved_at"`
	Error        string         `yaml:"error,omitempty"`
	Metrics      map[string]any `yaml:"metrics,omitempty"`
}

// Store writes prediction artifacts under a root directory, one
// subdirectory per prediction id.
type Store struct {
	rootPath string
}

// NewStore creates a store rooted at rootPath. The directory is created
// on the first Save.
func NewStore(rootPath string) *Store {
	return &Store{rootPath: rootPath}
}

// Save writes the prediction's output and metadata. The output lands in
// <root>/<id>/output.json, the sidecar in <root>/<id>/metadata.yaml.
func (s *Store) Save(p *api.Prediction) (string, error) {
	dir := filepath.Join(s.rootPath, p.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create artifact directory: %w", err)
	}

	output, err := json.MarshalIndent(p.Output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode output: %w", err)
	}
	outputPath := filepath.Join(dir, "output.json")
	if err := os.WriteFile(outputPath, output, 0644); err != nil {
		return "", fmt.Errorf("write output: %w", err)
	}

	meta := Metadata{
		PredictionID: p.ID,
		Version:      p.Version,
		Status:       p.Status,
		CreatedAt:    p.CreatedAt,
		SavedAt:      time.Now(),
		Metrics:      p.Metrics,
	}
	if p.CompletedAt != nil {
		meta.CompletedAt = *p.CompletedAt
	}
	if p.Error != nil {
		meta.Error = *p.Error
	}

	data, err := yaml.Marshal(&meta)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.yaml"), data, 0644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	return outputPath, nil
}

// Load reads the metadata sidecar of a saved prediction.
func (s *Store) Load(id string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(s.rootPath, id, "metadata.yaml"))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}

// List returns the metadata of every saved prediction, skipping entries
// without a readable sidecar.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read artifact root: %w", err)
	}

	var all []Metadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		all = append(all, *meta)
	}
	return all, nil
}

// OutputPath returns where a prediction's output would be saved.
func (s *Store) OutputPath(id string) string {
	return filepath.Join(s.rootPath, id, "output.json")
}
