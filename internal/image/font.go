package image

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// ErrWOFF marks a WOFF or WOFF2 font. Only TrueType fonts can be parsed.
var ErrWOFF = errors.New("WOFF fonts are not supported, convert the font to .ttf")

// LoadFace parses the TrueType font at path and returns a face of the given
// point size at 72 DPI.
func LoadFace(fsys afero.Fs, path string, size float64) (font.Face, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", path, err)
	}
	if bytes.HasPrefix(data, []byte("wOFF")) || bytes.HasPrefix(data, []byte("wOF2")) {
		return nil, fmt.Errorf("parsing font %s: %w", path, ErrWOFF)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// FaceOrDefault loads the font at path, falling back to the built-in face
// when it cannot be read or parsed. The fallback only changes how the label
// looks, so it is logged and never returned as an error.
func FaceOrDefault(fsys afero.Fs, path string, size float64, logger *zap.Logger) font.Face {
	face, err := LoadFace(fsys, path, size)
	if err != nil {
		fields := []zap.Field{zap.String("font", path), zap.Error(err)}
		if alt := woffSibling(fsys, path); alt != "" {
			fields = append(fields, zap.String("found", alt), zap.String("hint", ErrWOFF.Error()))
		}
		logger.Warn("font unavailable, using built-in face", fields...)
		return basicfont.Face7x13
	}
	logger.Debug("font loaded", zap.String("font", path), zap.Float64("size", size))
	return face
}

// woffSibling returns a .woff2 or .woff file next to a missing path with the
// same stem, or "" when there is none.
func woffSibling(fsys afero.Fs, path string) string {
	if ok, _ := afero.Exists(fsys, path); ok {
		return ""
	}
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range []string{".woff2", ".woff"} {
		if ok, _ := afero.Exists(fsys, stem+ext); ok {
			return stem + ext
		}
	}
	return ""
}
