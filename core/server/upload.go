package server

import (
	"fmt"
	"io"

	"bulk-manager/core/mapping"

	"github.com/gofiber/fiber/v2"
)

// MaxUploadBytes caps the size of an uploaded CSV file.
const MaxUploadBytes = 16 << 20

// Upload reads a multipart upload carrying a CSV "file" and a YAML or JSON "mapping".
// Any problem with either part is reported as an invalid mapping.
func Upload(c *fiber.Ctx) (string, mapping.Mapping, error) {
	raw := c.FormValue("mapping")
	if raw == "" {
		return "", mapping.Mapping{}, fmt.Errorf("%w: mapping form field is required", mapping.ErrInvalid)
	}
	m, err := mapping.Parse([]byte(raw))
	if err != nil {
		return "", mapping.Mapping{}, err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return "", mapping.Mapping{}, fmt.Errorf("%w: file form field is required: %v", mapping.ErrInvalid, err)
	}
	f, err := fh.Open()
	if err != nil {
		return "", mapping.Mapping{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		return "", mapping.Mapping{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return "", mapping.Mapping{}, fmt.Errorf("%w: upload exceeds %d bytes", mapping.ErrInvalid, MaxUploadBytes)
	}
	return string(data), m, nil
}
