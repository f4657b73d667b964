package cmd

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
)

// scaleScreenshot decodes a base64 PNG and downscales it by scale for token
// efficiency. A scale of 1.0 returns the original bytes. Returns the PNG
// bytes and the final dimensions.
func scaleScreenshot(b64 string, scale float64) ([]byte, int, int, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode screenshot: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode screenshot image: %w", err)
	}
	bounds := img.Bounds()

	if scale <= 0 || scale > 1 {
		return nil, 0, 0, fmt.Errorf("scale must be greater than 0 and at most 1, got %g", scale)
	}
	if scale == 1 {
		return data, bounds.Dx(), bounds.Dy(), nil
	}

	width := int(float64(bounds.Dx()) * scale)
	if width < 1 {
		width = 1
	}
	height := int(float64(bounds.Dy()) * scale)
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, 0, 0, fmt.Errorf("encode screenshot: %w", err)
	}
	return buf.Bytes(), width, height, nil
}

// saveScreenshot writes PNG data to the screenshot directory under a unique
// name and returns the full path.
func saveScreenshot(dir string, data []byte) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(dir, "screenshot-"+uuid.NewString()+".png")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func encodePNGBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
