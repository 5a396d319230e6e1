package ecosystem

import (
	"sort"
	"strings"
	"testing"
)

func TestList(t *testing.T) {
	names := List()
	if len(names) == 0 {
		t.Fatal("no templates embedded")
	}
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	if !sort.StringsAreSorted(lowered) {
		t.Errorf("templates not sorted case-insensitively: %v", names)
	}

	for _, want := range []string{"Go", "Rust", "Python", "Node"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("template %q missing from %v", want, names)
		}
	}
}

func TestTemplateCaseInsensitive(t *testing.T) {
	for _, name := range []string{"Go", "go", "GO"} {
		content, err := Template(name)
		if err != nil {
			t.Fatalf("Template(%q): %v", name, err)
		}
		if !strings.Contains(content, "*.exe") {
			t.Errorf("Template(%q) missing expected pattern", name)
		}
	}
}

func TestTemplateUnknown(t *testing.T) {
	_, err := Template("fortran77")
	if err == nil {
		t.Fatal("unknown template returned nil error")
	}
	if !strings.Contains(err.Error(), "--list-ecosystems") {
		t.Errorf("error %q does not point at --list-ecosystems", err)
	}
}
