package scenario

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ppiankov/creditwatch/internal/score"
)

//go:embed suites/*.yaml
var builtinFS embed.FS

// Builtin lists the names of the embedded scenario suites.
func Builtin() []string {
	entries, _ := builtinFS.ReadDir("suites")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// LoadBuiltin parses an embedded suite by name.
func LoadBuiltin(name string) (*Scenario, error) {
	data, err := builtinFS.ReadFile(path.Join("suites", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown builtin suite: %q", name)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse builtin suite %q: %w", name, err)
	}
	return s, nil
}

// RunBuiltin runs every embedded suite against the scorer.
func RunBuiltin(scorer *score.Scorer) ([]*RunResult, error) {
	var results []*RunResult
	for _, name := range Builtin() {
		s, err := LoadBuiltin(name)
		if err != nil {
			return nil, err
		}
		r := Run(s, scorer)
		r.File = "builtin:" + name
		results = append(results, r)
	}
	return results, nil
}
