package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/pdasim/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Extensions recognized by the Loader.
var blueprintExts = []string{".yaml", ".yml", ".json"}

// Loader implements ports.DefinitionLoader over a directory of YAML or JSON blueprint files.
// A blueprint's ID is its `id` field, or the file name without extension.
type Loader struct {
	Dir string
}

// NewLoader creates a loader for dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load finds the blueprint with the given ID.
func (l *Loader) Load(ctx context.Context, id string) (*domain.Blueprint, error) {
	index, err := l.index()
	if err != nil {
		return nil, err
	}
	path, ok := index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, id)
	}
	return ReadBlueprint(path)
}

// List returns the IDs of all blueprints in the directory.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	index, err := l.index()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// index maps IDs to file paths, failing on collisions.
func (l *Loader) index() (map[string]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read blueprint directory: %w", err)
	}

	index := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !isBlueprintFile(entry.Name()) {
			continue
		}
		path := filepath.Join(l.Dir, entry.Name())
		bp, err := ReadBlueprint(path)
		if err != nil {
			return nil, err
		}
		if existing, ok := index[bp.ID]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", bp.ID, existing, path)
		}
		index[bp.ID] = path
	}
	return index, nil
}

func isBlueprintFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range blueprintExts {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadBlueprint decodes a single YAML or JSON blueprint file.
func ReadBlueprint(path string) (*domain.Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, path)
		}
		return nil, fmt.Errorf("failed to read blueprint: %w", err)
	}

	var bp domain.Blueprint
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &bp)
	} else {
		err = yaml.Unmarshal(data, &bp)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if bp.ID == "" {
		bp.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &bp, nil
}

// WriteBlueprint encodes bp as YAML or JSON depending on the extension of path.
func WriteBlueprint(path string, bp *domain.Blueprint) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(bp, "", "  ")
	} else {
		data, err = yaml.Marshal(bp)
	}
	if err != nil {
		return fmt.Errorf("failed to encode blueprint: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
