package archive

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"tarp/internal/walker"
)

// Options configures archive serialization.
type Options struct {
	// Reproducible zeroes timestamps and ownership so identical input
	// trees produce byte-identical archives.
	Reproducible bool
	// PreserveOwner keeps uid/gid on entries; otherwise both are 0.
	PreserveOwner bool
	// OnEntry, if set, is called once per processed entry (progress).
	OnEntry func()
}

// Write serializes entries into w in the given format. Directory entries
// are skipped; every other entry becomes one archive member preserving
// its relative path and permissions.
func Write(w io.Writer, format Format, entries []walker.FileEntry, opts Options) error {
	switch format {
	case Tar:
		return writeTar(w, entries, opts)
	case TarGz:
		gz := gzip.NewWriter(w)
		if err := writeTar(gz, entries, opts); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	case TarBz2:
		bz, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
		if err != nil {
			return fmt.Errorf("create bzip2 writer: %w", err)
		}
		if err := writeTar(bz, entries, opts); err != nil {
			bz.Close()
			return err
		}
		return bz.Close()
	case TarZst:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("create zstd writer: %w", err)
		}
		if err := writeTar(zw, entries, opts); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	case Zip:
		return writeZip(w, entries, opts)
	}
	return fmt.Errorf("unknown format %d", format)
}

func writeTar(w io.Writer, entries []walker.FileEntry, opts Options) error {
	tw := tar.NewWriter(w)

	for _, entry := range entries {
		if entry.Kind == walker.KindDirectory {
			progress(opts)
			continue
		}

		hdr := &tar.Header{
			Name:   entry.RelativePath,
			Mode:   int64(entry.Mode),
			Format: tar.FormatGNU,
		}
		applyOwnership(hdr, entry, opts)

		switch entry.Kind {
		case walker.KindSymlink:
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = entry.LinkTarget
			if err := tw.WriteHeader(hdr); err != nil {
				return fmt.Errorf("write tar header for %s: %w", entry.RelativePath, err)
			}
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = entry.Size
			if err := tw.WriteHeader(hdr); err != nil {
				return fmt.Errorf("write tar header for %s: %w", entry.RelativePath, err)
			}
			if err := copyFile(tw, entry.Path); err != nil {
				return fmt.Errorf("archive %s: %w", entry.RelativePath, err)
			}
		}

		progress(opts)
	}

	return tw.Close()
}

func applyOwnership(hdr *tar.Header, entry walker.FileEntry, opts Options) {
	if opts.Reproducible {
		hdr.ModTime = time.Unix(0, 0).UTC()
		return
	}
	hdr.ModTime = time.Unix(entry.ModTime, 0).UTC()
	if opts.PreserveOwner {
		hdr.Uid = int(entry.UID)
		hdr.Gid = int(entry.GID)
	}
}

func writeZip(w io.Writer, entries []walker.FileEntry, opts Options) error {
	zw := zip.NewWriter(w)

	for _, entry := range entries {
		if entry.Kind == walker.KindDirectory {
			progress(opts)
			continue
		}

		hdr := &zip.FileHeader{
			Name:   entry.RelativePath,
			Method: zip.Deflate,
		}
		if !opts.Reproducible && entry.ModTime > 0 {
			hdr.Modified = time.Unix(entry.ModTime, 0).UTC()
		}

		switch entry.Kind {
		case walker.KindSymlink:
			// Store the target as file content, the convention most zip
			// tools use for links.
			hdr.SetMode(os.ModeSymlink | 0o777)
			fw, err := zw.CreateHeader(hdr)
			if err != nil {
				return fmt.Errorf("create zip entry for %s: %w", entry.RelativePath, err)
			}
			if _, err := io.WriteString(fw, entry.LinkTarget); err != nil {
				return fmt.Errorf("write zip entry for %s: %w", entry.RelativePath, err)
			}
		default:
			hdr.SetMode(os.FileMode(entry.Mode & 0o7777))
			fw, err := zw.CreateHeader(hdr)
			if err != nil {
				return fmt.Errorf("create zip entry for %s: %w", entry.RelativePath, err)
			}
			f, err := os.Open(entry.Path)
			if err != nil {
				return fmt.Errorf("open %s: %w", entry.Path, err)
			}
			if _, err := io.Copy(fw, f); err != nil {
				f.Close()
				return fmt.Errorf("write zip entry for %s: %w", entry.RelativePath, err)
			}
			f.Close()
		}

		progress(opts)
	}

	return zw.Close()
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func progress(opts Options) {
	if opts.OnEntry != nil {
		opts.OnEntry()
	}
}
