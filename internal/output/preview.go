package output

import (
	"fmt"
	"io"

	"github.com/docker/go-units"

	"tarp/internal/rules"
	"tarp/internal/walker"
)

// Preview lists the files that would be archived, with optional sizes,
// followed by a summary line. With verbose set, excluded files and their
// rule origins are appended.
func Preview(w io.Writer, st Styles, results *walker.Results, showSize, verbose bool) {
	fmt.Fprintln(w, st.Header.Render("Files to be archived:"))
	fmt.Fprintln(w)

	var totalSize int64
	symlinks := 0
	for _, entry := range results.Entries {
		totalSize += entry.Size
		if entry.Kind == walker.KindSymlink {
			symlinks++
		}

		if showSize {
			size := fmt.Sprintf("%10s", units.HumanSize(float64(entry.Size)))
			if entry.Kind == walker.KindSymlink {
				size = "      link"
			}
			fmt.Fprintf(w, "  %s ", st.Dim.Render(size))
		} else {
			fmt.Fprint(w, "  ")
		}

		fmt.Fprint(w, st.Path.Render(entry.RelativePath))
		if entry.Kind == walker.KindSymlink {
			fmt.Fprint(w, st.Link.Render(" -> "+entry.LinkTarget))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d files (%d symlinks), %s total\n",
		st.Header.Render("Summary:"),
		len(results.Entries), symlinks,
		units.HumanSize(float64(totalSize)))

	if verbose && len(results.Excluded) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.Header.Render("Files excluded:"))
		for _, excluded := range results.Excluded {
			fmt.Fprintf(w, "  %s %s\n",
				st.Dim.Render(excluded.RelativePath),
				st.Dim.Render("("+excluded.Origin+")"))
		}
	}
}

// PrintRules dumps every indexed rule grouped by source, with a +/-
// marker for include/exclude. Used in verbose mode before walking.
func PrintRules(w io.Writer, st Styles, ix *rules.Index) {
	grouped := make(map[string][]*rules.Rule)
	var order []string
	for _, rule := range ix.AllRules() {
		source := rule.Origin.Source
		if _, seen := grouped[source]; !seen {
			order = append(order, source)
		}
		grouped[source] = append(grouped[source], rule)
	}

	for _, source := range order {
		fmt.Fprintf(w, "Rules (%s):\n", st.Source.Render(source))
		for _, rule := range grouped[source] {
			marker := st.Exclude.Render("-")
			if rule.Action == rules.ActionInclude {
				marker = st.Include.Render("+")
			}
			fmt.Fprintf(w, "  %s %s %s\n", marker, rule.Info.Original,
				st.Dim.Render("["+rule.Info.Bucket.String()+"]"))
		}
	}
}

// Summary prints the final archive statistics.
func Summary(w io.Writer, st Styles, output string, inputSize, outputSize int64) {
	ratio := 100.0
	if inputSize > 0 {
		ratio = float64(outputSize) / float64(inputSize) * 100.0
	}
	fmt.Fprintf(w, "Done! %s -> %s (%s, %.1f%% of original)\n",
		units.HumanSize(float64(inputSize)),
		units.HumanSize(float64(outputSize)),
		st.Path.Render(output), ratio)
}
