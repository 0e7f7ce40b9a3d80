package camera

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageInfo describes an image file as decoded from its header.
type ImageInfo struct {
	Path   string
	Format string
	Width  int
	Height int
}

// Probe decodes only the image header of path. It is informational: the
// content type sent to clients always comes from the file extension.
func Probe(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(bufio.NewReader(f))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return ImageInfo{
		Path:   path,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
