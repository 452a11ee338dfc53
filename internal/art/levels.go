package art

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// LevelSpec is a board definition loaded from a level file. It carries the
// art and presentation hints; the game binds factories to the characters.
type LevelSpec struct {
	ID       string
	Name     string
	Beneath  rune
	Art      []string
	ZOrder   []rune
	Metadata map[string]string
	FilePath string
}

type yamlLevel struct {
	ID       string            `yaml:"id"`
	Name     string            `yaml:"name"`
	Beneath  string            `yaml:"beneath,omitempty"`
	Art      []string          `yaml:"art"`
	Z        string            `yaml:"z,omitempty"`
	Metadata map[string]string `yaml:"metadata,omitempty"`
}

// ParseYAML parses a YAML level file.
func ParseYAML(data []byte) (LevelSpec, error) {
	var yl yamlLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return LevelSpec{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if yl.ID == "" {
		return LevelSpec{}, fmt.Errorf("level has no id")
	}
	if len(yl.Art) == 0 {
		return LevelSpec{}, fmt.Errorf("level %s has no art", yl.ID)
	}

	beneath := ' '
	if yl.Beneath != "" {
		rs := []rune(yl.Beneath)
		if len(rs) != 1 {
			return LevelSpec{}, fmt.Errorf("level %s: beneath must be a single character", yl.ID)
		}
		beneath = rs[0]
	}

	return LevelSpec{
		ID:       yl.ID,
		Name:     yl.Name,
		Beneath:  beneath,
		Art:      yl.Art,
		ZOrder:   []rune(yl.Z),
		Metadata: yl.Metadata,
	}, nil
}

// Loader loads level files from a directory tree.
type Loader struct {
	Root string
}

// NewLoader creates a level loader rooted at the given directory.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// LoadAll recursively scans and loads all level files, sorted by ID for
// deterministic ordering. Files that fail to parse do not stop the scan;
// their errors come back joined alongside the levels that did load, so a
// typo'd file is reported instead of silently vanishing.
func (l *Loader) LoadAll() ([]LevelSpec, error) {
	var levels []LevelSpec
	var broken []error

	err := filepath.WalkDir(l.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		level, err := l.LoadFile(path)
		if err != nil {
			broken = append(broken, err)
			return nil
		}
		levels = append(levels, level)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
	return levels, errors.Join(broken...)
}

// LoadFile loads a single level file.
func (l *Loader) LoadFile(path string) (LevelSpec, error) {
	return LoadFile(path)
}

// LoadFile loads a single level file.
func LoadFile(path string) (LevelSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LevelSpec{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	level, err := ParseYAML(data)
	if err != nil {
		return LevelSpec{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	level.FilePath = path
	return level, nil
}

// LoadByID loads a specific level by ID. Broken sibling files do not mask
// a level that loads; when the ID is missing, any parse failures seen
// during the scan are attached to the error, since one of them may be the
// level being asked for.
func (l *Loader) LoadByID(id string) (LevelSpec, error) {
	levels, err := l.LoadAll()
	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}
	if err != nil {
		return LevelSpec{}, fmt.Errorf("level not found: %s (loader reported: %w)", id, err)
	}
	return LevelSpec{}, fmt.Errorf("level not found: %s", id)
}

// ListIDs returns all loadable level IDs in sorted order, with parse
// failures joined into the error as in LoadAll.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, err
}
