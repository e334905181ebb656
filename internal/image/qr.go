package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the edge length in pixels of a generated QR raster.
const DefaultQRSize = 256

// ParseRecoveryLevel maps a config value onto a go-qrcode recovery level.
// Unknown values fall back to Medium.
func ParseRecoveryLevel(s string) qrcode.RecoveryLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return qrcode.Low
	case "high", "q":
		return qrcode.High
	case "highest", "h":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// GenerateQRPNG returns PNG bytes of a QR code for the given text.
func GenerateQRPNG(text string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("qr: empty content")
	}
	b, err := qrcode.Encode(text, level, size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	return b, nil
}

// GenerateQRImage returns an image.Image for further composition.
func GenerateQRImage(text string, level qrcode.RecoveryLevel, size int) (image.Image, error) {
	b, err := GenerateQRPNG(text, level, size)
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(b))
}

// WriteQRFile encodes text and writes the PNG to path, replacing any
// previous file.
func WriteQRFile(text string, level qrcode.RecoveryLevel, size int, path string) error {
	if text == "" {
		return fmt.Errorf("qr: empty content")
	}
	if err := qrcode.WriteFile(text, level, size, path); err != nil {
		return fmt.Errorf("qr: write %s: %w", path, err)
	}
	return nil
}
