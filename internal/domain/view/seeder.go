package view

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/labelboard/backend/internal/infrastructure/logging"
	"github.com/labelboard/backend/internal/shared/types"
)

// Seeder loads view presets from YAML files. Presets give the UI a usable
// default grid before (and regardless of) what the views() operation adds.
type Seeder struct {
	dir    string
	logger *logging.Logger
}

// NewSeeder creates a seeder for a presets directory
func NewSeeder(dir string, logger *logging.Logger) *Seeder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Seeder{dir: dir, logger: logger}
}

// Seed parses every .yaml/.yml file in the presets directory. A missing
// directory is not an error; the server just starts without presets. A
// malformed file is skipped with a warning; a preset without an id or
// target is rejected the same way.
func (s *Seeder) Seed() ([]types.ViewDef, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Info("no view presets directory", zap.String("dir", s.dir))
		return nil, nil
	}

	var defs []types.ViewDef
	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isYAML(info.Name()) {
			return nil
		}

		parsed, err := parseFile(path)
		if err != nil {
			s.logger.Warn("skipping view preset", zap.String("file", path), zap.Error(err))
			return nil
		}
		defs = append(defs, parsed...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk presets: %w", err)
	}

	s.logger.Info("seeded view presets", zap.Int("count", len(defs)))
	return defs, nil
}

// presetFile is the YAML document shape: one file declares several views
type presetFile struct {
	Views []types.ViewDef `yaml:"views"`
}

func parseFile(path string) ([]types.ViewDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	for _, def := range file.Views {
		if def.ID == 0 {
			return nil, fmt.Errorf("view preset without id")
		}
		if def.Target == "" {
			return nil, fmt.Errorf("view %d has no target", def.ID)
		}
	}
	return file.Views, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
