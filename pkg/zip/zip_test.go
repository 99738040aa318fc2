package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reel.webm")
	if err := os.WriteFile(path, []byte("webm-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var buf bytes.Buffer
	err := WriteBundle(&buf, []Entry{
		{Name: "reel.webm", Path: path},
		{Name: "caption.txt", Data: []byte("hello")},
	})
	if err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	want := map[string]string{"reel.webm": "webm-bytes", "caption.txt": "hello"}
	if len(zr.File) != len(want) {
		t.Fatalf("entries = %d, want %d", len(zr.File), len(want))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if string(got) != want[f.Name] {
			t.Fatalf("%s = %q, want %q", f.Name, got, want[f.Name])
		}
	}
}

func TestWriteBundleMissingFile(t *testing.T) {
	var buf bytes.Buffer
	err := WriteBundle(&buf, []Entry{{Name: "reel.webm", Path: filepath.Join(t.TempDir(), "missing")}})
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}
