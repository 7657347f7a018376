package script

import (
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
)

//go:embed scenarios/*.pool
var scenarioFS embed.FS

// Scenario is a built-in script.
type Scenario struct {
	Name   string
	Source string
}

// Scenarios returns the built-in scripts sorted by name.
func Scenarios() ([]Scenario, error) {
	files, err := fs.Glob(scenarioFS, "scenarios/*.pool")
	if err != nil {
		return nil, errors.Wrap(err, "script: listing scenarios")
	}
	out := make([]Scenario, 0, len(files))
	for _, f := range files {
		data, err := scenarioFS.ReadFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, "script: reading %s", f)
		}
		out = append(out, Scenario{
			Name:   strings.TrimSuffix(path.Base(f), ".pool"),
			Source: string(data),
		})
	}
	return out, nil
}
