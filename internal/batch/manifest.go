package batch

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type manifest struct {
	Targets []Target `yaml:"targets"`
}

// LoadTargets reads a YAML manifest listing the databases of a batch run.
// Targets without an explicit id get a generated one. Each target names
// either a connection string or a stored profile; profile resolution is the
// caller's job.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading target manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing target manifest %s: %w", path, err)
	}
	if len(m.Targets) == 0 {
		return nil, fmt.Errorf("target manifest %s lists no targets", path)
	}

	for i := range m.Targets {
		if m.Targets[i].ID == "" {
			m.Targets[i].ID = uuid.NewString()
		}
	}
	return m.Targets, nil
}
