package image

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
)

// formatExtension returns the file extension (without dot) for a format name.
func formatExtension(format string) string {
	switch format {
	case "webp":
		return "webp"
	default:
		return "png"
	}
}

// Filename returns the output file name for hour in format, e.g. "07.png".
func Filename(hour int, format string) string {
	return fmt.Sprintf("%02d.%s", hour, formatExtension(format))
}

// Encode writes img to w in the specified format. Both formats are lossless.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		if err := imaging.Encode(w, img, imaging.PNG); err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}
	case "webp":
		if err := webp.Encode(w, img, webp.Options{Lossless: true}); err != nil {
			return fmt.Errorf("encoding webp: %w", err)
		}
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
	return nil
}
