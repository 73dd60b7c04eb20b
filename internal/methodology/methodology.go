// Package methodology loads the ordered phase list that guides the
// scan loop.
package methodology

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPhases is the fallback sequence used when the methodology
// file is missing, unreadable, or empty.
var DefaultPhases = []string{"reconnaissance", "scanning", "exploitation"}

// Load reads the phase list from path. Plain text files carry one
// phase per line; blank lines and #-comments are skipped. Files
// ending in .yaml/.yml carry a `phases:` list. Any read or parse
// failure falls back to DefaultPhases, never to a partial list.
func Load(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaults()
	}

	var phases []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		phases = parseYAML(data)
	default:
		phases = parseText(data)
	}

	if len(phases) == 0 {
		return defaults()
	}
	return phases
}

func defaults() []string {
	return append([]string(nil), DefaultPhases...)
}

func parseText(data []byte) []string {
	var phases []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		phases = append(phases, line)
	}
	return phases
}

type yamlMethodology struct {
	Phases []string `yaml:"phases"`
}

func parseYAML(data []byte) []string {
	var doc yamlMethodology
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	var phases []string
	for _, p := range doc.Phases {
		p = strings.TrimSpace(p)
		if p != "" {
			phases = append(phases, p)
		}
	}
	return phases
}
