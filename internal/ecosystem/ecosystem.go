// Package ecosystem provides gitignore templates for common toolchains.
// Templates are embedded in the binary; their patterns form the lowest
// priority rule source so anything the user writes overrides them.
package ecosystem

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed templates/*.gitignore
var templates embed.FS

// List returns the available template names, sorted case-insensitively.
func List() []string {
	entries, err := fs.ReadDir(templates, "templates")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".gitignore"))
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Template returns the gitignore content for the named ecosystem.
// Lookup is case-insensitive; an unknown name is an error the caller
// reports without aborting the run.
func Template(name string) (string, error) {
	for _, candidate := range List() {
		if strings.EqualFold(candidate, name) {
			data, err := templates.ReadFile("templates/" + candidate + ".gitignore")
			if err != nil {
				return "", fmt.Errorf("read template %s: %w", candidate, err)
			}
			return string(data), nil
		}
	}
	return "", fmt.Errorf("unknown ecosystem %q, use --list-ecosystems to see available options", name)
}
