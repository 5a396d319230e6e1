package walker

import (
	"io/fs"
	"os"
	"syscall"
)

// EntryKind is the kind of filesystem object a FileEntry describes.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDirectory
	KindSymlink
)

func (k EntryKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindSymlink:
		return "symlink"
	default:
		return "file"
	}
}

// FileEntry is a path selected for archiving, created the moment the
// walker decides to include it and immutable thereafter.
type FileEntry struct {
	// Path is the absolute path on disk.
	Path string
	// RelativePath is the archive member name, relative to the root.
	RelativePath string
	// Size is the content size in bytes; 0 for symlinks.
	Size int64
	// Kind distinguishes files, directories and symlinks.
	Kind EntryKind
	// LinkTarget is set for symlinks.
	LinkTarget string
	// Mode holds the permission bits (including setuid/setgid/sticky).
	Mode uint32
	// UID and GID are the owner; archived only with --preserve-owner.
	UID uint32
	GID uint32
	// ModTime is seconds since the Unix epoch; 0 in reproducible mode.
	ModTime int64
}

// ExcludedFile records a path that matched an Exclude rule, kept only
// for verbose reporting.
type ExcludedFile struct {
	RelativePath string
	Origin       string
}

// newFileEntry builds a FileEntry from path metadata. A symlink whose
// target cannot be read is still recorded as a symlink with an empty
// target; broken links never fail the walk.
func newFileEntry(path, relative string, info fs.FileInfo, reproducible bool) FileEntry {
	entry := FileEntry{
		Path:         path,
		RelativePath: relative,
		Mode:         uint32(info.Mode().Perm()),
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		entry.Kind = KindSymlink
		if target, err := os.Readlink(path); err == nil {
			entry.LinkTarget = target
		}
	case info.IsDir():
		entry.Kind = KindDirectory
	default:
		entry.Kind = KindFile
		entry.Size = info.Size()
	}

	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		entry.Mode = uint32(st.Mode) & 0o7777
		entry.UID = st.Uid
		entry.GID = st.Gid
	}

	if !reproducible {
		if sec := info.ModTime().Unix(); sec > 0 {
			entry.ModTime = sec
		}
	}

	return entry
}
