package compose

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// Preset loads a built-in mode by name.
func Preset(name string) (Mode, error) {
	data, err := presetFS.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return Mode{}, fmt.Errorf("compose: unknown preset mode %q", name)
	}
	m, err := Parse(data)
	if err != nil {
		return Mode{}, fmt.Errorf("compose: preset %q: %w", name, err)
	}
	return m, nil
}

// PresetNames lists the built-in modes.
func PresetNames() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
