package imagepkg

import (
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// LoadImage decodes the PNG, JPEG or GIF at path. EXIF orientation is applied
// so phone photos come out upright.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("image: open %s: %w", path, err)
	}
	return img, nil
}

// SavePNG writes img to path as PNG regardless of the path's extension.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("image: create %s: %w", path, err)
	}
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		f.Close()
		return fmt.Errorf("image: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("image: close %s: %w", path, err)
	}
	return nil
}
