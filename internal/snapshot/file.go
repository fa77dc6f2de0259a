package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/guimove/trainfit/internal/model"
)

// FileSource loads a snapshot from a JSON or YAML file.
// Used for offline runs, what-if analysis and CI pipelines.
type FileSource struct {
	path string
	snap *model.Snapshot
}

// NewFileSource creates a source that reads path. Files ending in .yaml or
// .yml are parsed as YAML, everything else as JSON.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// NewStaticSource creates a source serving a pre-built snapshot.
func NewStaticSource(snap model.Snapshot) *FileSource {
	return &FileSource{snap: &snap}
}

// Ping checks that the file exists.
func (s *FileSource) Ping(ctx context.Context) error {
	if s.snap != nil {
		return nil
	}
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("snapshot file: %w", err)
	}
	return nil
}

// BackendType returns "file".
func (s *FileSource) BackendType() string {
	return "file"
}

// Load parses the snapshot file.
func (s *FileSource) Load(ctx context.Context) (model.Snapshot, error) {
	if s.snap != nil {
		return *s.snap, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("reading snapshot file: %w", err)
	}

	var snap model.Snapshot
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &snap)
	default:
		err = json.Unmarshal(data, &snap)
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("parsing snapshot file %s: %w", s.path, err)
	}

	if len(snap.Carriers) == 0 && len(snap.Units) == 0 {
		return model.Snapshot{}, ErrEmptySnapshot
	}
	return snap, nil
}
