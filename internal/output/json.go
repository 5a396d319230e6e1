package output

import (
	"encoding/json"
	"io"

	"tarp/internal/walker"
)

// jsonPreview is the machine-readable preview document.
type jsonPreview struct {
	Files     []jsonEntry    `json:"files"`
	Excluded  []jsonExcluded `json:"excluded,omitempty"`
	FileCount int            `json:"file_count"`
	TotalSize int64          `json:"total_size"`
}

type jsonEntry struct {
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	Kind       string `json:"kind"`
	LinkTarget string `json:"link_target,omitempty"`
}

type jsonExcluded struct {
	Path   string `json:"path"`
	Origin string `json:"origin"`
}

// PreviewJSON writes the preview as a single JSON document.
func PreviewJSON(w io.Writer, results *walker.Results, verbose bool) error {
	doc := jsonPreview{
		Files:     make([]jsonEntry, 0, len(results.Entries)),
		FileCount: len(results.Entries),
	}

	for _, entry := range results.Entries {
		doc.TotalSize += entry.Size
		doc.Files = append(doc.Files, jsonEntry{
			Path:       entry.RelativePath,
			Size:       entry.Size,
			Kind:       entry.Kind.String(),
			LinkTarget: entry.LinkTarget,
		})
	}

	if verbose {
		for _, excluded := range results.Excluded {
			doc.Excluded = append(doc.Excluded, jsonExcluded{
				Path:   excluded.RelativePath,
				Origin: excluded.Origin,
			})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
