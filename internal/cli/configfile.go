package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"tarp/internal/config"
	"tarp/internal/output"
)

func runInitConfig(logger *log.Logger) int {
	if config.Exists() {
		logger.Error("config file already exists", "path", config.Path())
		return 1
	}
	path, err := config.Init()
	if err != nil {
		logger.Error("cannot create config file", "err", err)
		return 1
	}
	fmt.Printf("Created config file: %s\n", path)
	return 0
}

func runEditConfig(logger *log.Logger) int {
	path, err := config.Edit()
	if err != nil {
		logger.Error("cannot edit config file", "err", err)
		return 1
	}
	fmt.Printf("Edited config file: %s\n", path)
	return 0
}

func runShowConfig(st output.Styles) int {
	cfg := config.Load()

	fmt.Println(st.Header.Render("Configuration"))
	if config.Exists() {
		fmt.Printf("  %s %s\n", st.Dim.Render("file:"), config.Path())
	} else {
		fmt.Printf("  %s %s\n", st.Dim.Render("file:"), "(none, using defaults)")
	}
	fmt.Println()

	fmt.Println(st.Header.Render("[ignore]"))
	printList(st, "use", cfg.Ignore.Use)
	printList(st, "always_exclude", cfg.Ignore.AlwaysExclude)
	printList(st, "always_include", cfg.Ignore.AlwaysInclude)
	fmt.Println()

	fmt.Println(st.Header.Render("[defaults]"))
	format := cfg.Defaults.Format
	if format == "" {
		format = "tar.gz"
	}
	fmt.Printf("  format = %q\n", format)
	fmt.Printf("  reproducible = %v\n", cfg.Defaults.Reproducible)
	fmt.Printf("  dereference = %v\n", cfg.Defaults.Dereference)
	fmt.Printf("  preserve_owner = %v\n", cfg.Defaults.PreserveOwner)
	return 0
}

func printList(st output.Styles, key string, values []string) {
	if len(values) == 0 {
		fmt.Printf("  %s = []\n", key)
		return
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	fmt.Printf("  %s = [%s]\n", key, strings.Join(quoted, ", "))
}
