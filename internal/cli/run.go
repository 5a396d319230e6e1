package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pterm/pterm"

	"tarp/internal/archive"
	"tarp/internal/config"
	"tarp/internal/ecosystem"
	"tarp/internal/output"
	"tarp/internal/walker"
)

// Run executes one tarp invocation with the given config.
// Returns exit code: 0 = success, 1 = error.
func Run(cfg Config) int {
	level := log.WarnLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level: level,
	})

	var styles output.Styles
	if output.StdoutIsTerminal() {
		styles = output.NewStyles()
	} else {
		styles = output.NoStyles()
	}

	// Config and listing subcommands run before any scanning.
	switch {
	case cfg.InitConfig:
		return runInitConfig(logger)
	case cfg.EditConfig:
		return runEditConfig(logger)
	case cfg.ShowConfig:
		return runShowConfig(styles)
	case cfg.ListEcosystems:
		for _, name := range ecosystem.List() {
			fmt.Println(name)
		}
		return 0
	}

	root, err := resolveRoot(cfg.Path)
	if err != nil {
		logger.Error("cannot resolve path", "path", cfg.Path, "err", err)
		return 1
	}

	fileCfg := config.Load()
	applyDefaults(&cfg, &fileCfg)

	format, err := archive.ParseFormat(cfg.Format)
	if err != nil {
		logger.Error("invalid format", "format", cfg.Format, "err", err)
		return 1
	}

	outPath := cfg.Output
	if outPath == "" {
		outPath = filepath.Base(root) + "." + format.Extension()
	}

	ix := walker.BuildIndex(root, &fileCfg, walker.SourceOptions{
		Ecosystems:           cfg.WithEcosystem,
		WithoutIgnoreFiles:   cfg.WithoutIgnoreFiles,
		WithoutIgnoreFile:    cfg.WithoutIgnoreFile,
		WithIgnoreFiles:      cfg.WithIgnoreFile,
		WithoutExcludeAlways: cfg.WithoutExcludeAlways,
		WithoutIncludeAlways: cfg.WithoutIncludeAlways,
		WithExclude:          cfg.WithExclude,
		WithInclude:          cfg.WithInclude,
	}, logger)

	if cfg.Verbose {
		output.PrintRules(os.Stdout, styles, ix)
	}

	results, err := walker.Collect(ix, walker.Options{
		Dereference:  cfg.Dereference,
		Reproducible: cfg.Reproducible,
	}, logger)
	if err != nil {
		logger.Error("scan failed", "err", err)
		return 1
	}

	// The archive must never contain itself.
	excludeOutput(results, root, outPath)

	if len(results.Entries) == 0 {
		fmt.Println("No files to archive!")
		return 0
	}

	if cfg.Preview || cfg.Size || cfg.JSON {
		if cfg.JSON {
			if err := output.PreviewJSON(os.Stdout, results, cfg.Verbose); err != nil {
				logger.Error("cannot write JSON", "err", err)
				return 1
			}
			return 0
		}
		output.Preview(os.Stdout, styles, results, cfg.Size, cfg.Verbose)
		return 0
	}

	inputSize, err := writeArchive(outPath, format, results, cfg, logger)
	if err != nil {
		logger.Error("cannot create archive", "output", outPath, "err", err)
		return 1
	}

	if !cfg.Quiet {
		outInfo, err := os.Stat(outPath)
		if err != nil {
			logger.Error("cannot stat archive", "output", outPath, "err", err)
			return 1
		}
		output.Summary(os.Stdout, styles, outPath, inputSize, outInfo.Size())
	}
	return 0
}

// resolveRoot turns the requested path into an absolute, symlink-resolved
// directory so every rule and entry path shares one canonical root.
func resolveRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", path)
	}
	return resolved, nil
}

// applyDefaults fills unset flags from the configuration file. Boolean
// flags only upgrade from false so an explicit CLI flag always wins.
func applyDefaults(cfg *Config, fileCfg *config.Config) {
	if cfg.Format == "" {
		cfg.Format = fileCfg.Defaults.Format
	}
	if cfg.Format == "" {
		cfg.Format = "tar.gz"
	}
	if fileCfg.Defaults.Reproducible {
		cfg.Reproducible = true
	}
	if fileCfg.Defaults.Dereference {
		cfg.Dereference = true
	}
	if fileCfg.Defaults.PreserveOwner {
		cfg.PreserveOwner = true
	}
}

// excludeOutput removes the output file from the scan results in case it
// lives inside the directory being archived.
func excludeOutput(results *walker.Results, root, outPath string) {
	abs, err := filepath.Abs(outPath)
	if err != nil {
		return
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	rel = filepath.ToSlash(rel)
	for i, e := range results.Entries {
		if e.RelativePath == rel {
			results.Entries = append(results.Entries[:i], results.Entries[i+1:]...)
			return
		}
	}
}

func writeArchive(outPath string, format archive.Format, results *walker.Results, cfg Config, logger *log.Logger) (int64, error) {
	var inputSize int64
	for _, e := range results.Entries {
		inputSize += e.Size
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	bw := bufio.NewWriter(f)

	opts := archive.Options{
		Reproducible:  cfg.Reproducible,
		PreserveOwner: cfg.PreserveOwner,
	}

	var bar *pterm.ProgressbarPrinter
	if !cfg.Quiet && !cfg.Verbose && output.StdoutIsTerminal() {
		bar, _ = pterm.DefaultProgressbar.
			WithTotal(len(results.Entries)).
			WithTitle("Archiving").
			WithRemoveWhenDone(true).
			Start()
		if bar != nil {
			opts.OnEntry = func() { bar.Increment() }
		}
	}

	err = archive.Write(bw, format, results.Entries, opts)
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return inputSize, nil
}
