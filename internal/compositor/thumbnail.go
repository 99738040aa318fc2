package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
)

// EncodeThumbnail returns frame as PNG bytes.
func EncodeThumbnail(frame image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("compositor: encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteThumbnail stores frame as a PNG file at path.
func WriteThumbnail(path string, frame image.Image) error {
	data, err := EncodeThumbnail(frame)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("compositor: write thumbnail: %w", err)
	}
	return nil
}
