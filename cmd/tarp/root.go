package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tarp/internal/cli"
)

var (
	cfg      cli.Config
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "tarp [PATH]",
	Short: "Archive a directory while honoring ignore files",
	Long: `tarp archives a directory into tar, tar.gz, tar.bz2, tar.zst or zip
while honoring .gitignore, .ignore and any other gitignore-format files
you point it at. Rules stack like git's own: later sources win, and
negations can resurrect files an earlier rule excluded.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg.Path = "."
		if len(args) == 1 {
			cfg.Path = args[0]
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		exitCode = cli.Run(cfg)
		return nil
	},
}

// Execute runs the root command and maps it to a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return exitCode
}

func init() {
	f := rootCmd.Flags()

	f.StringVarP(&cfg.Output, "output", "o", "", "output archive file (default: <dir>.<ext>)")
	f.StringVarP(&cfg.Format, "format", "f", "", "archive format: tar, tar.gz, tar.bz2, tar.zst, zip")

	f.BoolVarP(&cfg.Preview, "preview", "p", false, "list files without creating an archive")
	f.BoolVarP(&cfg.Size, "size", "s", false, "preview with per-file and total sizes")
	f.BoolVar(&cfg.JSON, "json", false, "machine-readable preview")

	f.StringArrayVar(&cfg.WithExclude, "with-exclude", nil, "extra exclude pattern (repeatable)")
	f.StringArrayVar(&cfg.WithInclude, "with-include", nil, "extra force-include pattern (repeatable)")
	f.StringArrayVar(&cfg.WithIgnoreFile, "with-ignorefile", nil, "extra ignore file to honor (repeatable)")
	f.StringArrayVar(&cfg.WithEcosystem, "with-ecosystem", nil, "apply a built-in ecosystem template (repeatable)")

	f.BoolVar(&cfg.WithoutExcludeAlways, "without-exclude-always", false, "skip configured always_exclude patterns")
	f.BoolVar(&cfg.WithoutIncludeAlways, "without-include-always", false, "skip configured always_include patterns")
	f.BoolVar(&cfg.WithoutIgnoreFiles, "without-ignorefiles", false, "ignore all ignore files")
	f.StringArrayVar(&cfg.WithoutIgnoreFile, "without-ignorefile", nil, "skip one ignore file by name (repeatable)")

	f.BoolVar(&cfg.ListEcosystems, "list-ecosystems", false, "list built-in ecosystem templates")

	f.BoolVar(&cfg.Dereference, "dereference", false, "archive symlink targets instead of links")
	f.BoolVar(&cfg.PreserveOwner, "preserve-owner", false, "store file uid/gid in the archive")
	f.BoolVarP(&cfg.Reproducible, "reproducible", "r", false, "deterministic output: sorted entries, zeroed timestamps and ownership")

	f.BoolVarP(&cfg.Quiet, "quiet", "q", false, "suppress progress and summary")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "show resolved rules and excluded files")

	f.BoolVar(&cfg.ShowConfig, "show-config", false, "print the effective configuration")
	f.BoolVar(&cfg.InitConfig, "init-config", false, "write a commented default config file")
	f.BoolVar(&cfg.EditConfig, "edit-config", false, "open the config file in $EDITOR")
}
