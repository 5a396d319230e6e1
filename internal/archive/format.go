// Package archive serializes walker entries into tar and zip containers
// with optional compression.
package archive

import "fmt"

// Format is a supported archive output format.
type Format int

const (
	Tar Format = iota
	TarGz
	TarBz2
	TarZst
	Zip
)

// ParseFormat resolves a format name or alias.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "tar":
		return Tar, nil
	case "tar.gz", "tgz":
		return TarGz, nil
	case "tar.bz2", "tbz2":
		return TarBz2, nil
	case "tar.zst", "tzst":
		return TarZst, nil
	case "zip":
		return Zip, nil
	}
	return 0, fmt.Errorf("unknown format %q (want tar, tar.gz, tar.bz2, tar.zst or zip)", name)
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case Tar:
		return "tar"
	case TarGz:
		return "tar.gz"
	case TarBz2:
		return "tar.bz2"
	case TarZst:
		return "tar.zst"
	default:
		return "zip"
	}
}

func (f Format) String() string { return f.Extension() }
