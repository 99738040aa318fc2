package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
)

// Entry is one file of a bundle. Path is read from disk when set, otherwise
// Data is written as is.
type Entry struct {
	Name string
	Path string
	Data []byte
}

// WriteBundle streams entries into a zip archive written to w.
func WriteBundle(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, entry := range entries {
		if err := writeEntry(zw, entry); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, entry Entry) error {
	dst, err := zw.Create(entry.Name)
	if err != nil {
		return fmt.Errorf("zip: create %s: %w", entry.Name, err)
	}
	if entry.Path == "" {
		_, err = dst.Write(entry.Data)
		return err
	}
	src, err := os.Open(entry.Path)
	if err != nil {
		return fmt.Errorf("zip: open %s: %w", entry.Name, err)
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("zip: copy %s: %w", entry.Name, err)
	}
	return nil
}
