package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Fetcher retrieves raw image bytes from an external location.
type Fetcher interface {
	Fetch(ctx context.Context, imageURL string) ([]byte, error)
}

// Dimensions returns the pixel width and height of an encoded image without
// decoding the full raster.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
