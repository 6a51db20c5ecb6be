// Package imagecodec opens, crops and saves raster images for the converter.
package imagecodec

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"slices"
	"strings"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/bbox"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// SupportedExtensions lists the extensions that can be both decoded and re-encoded.
var SupportedExtensions = []string{"jpg", "jpeg", "png", "gif", "tif", "tiff", "bmp"}

// IsSupported reports whether ext (with or without the leading dot) names a
// supported image format.
func IsSupported(ext string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(strings.TrimPrefix(ext, ".")))
}

// ImageError describes a failed image operation.
type ImageError struct {
	Op   string
	Path string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// Codec is the imaging-backed image capability used by the pipeline.
type Codec struct {
	// JPEGQuality is used when saving .jpg/.jpeg crops.
	JPEGQuality int
}

// New returns a Codec with imaging's default JPEG quality.
func New() *Codec {
	return &Codec{JPEGQuality: 95}
}

// Open decodes the image at path.
func (c *Codec) Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &ImageError{Op: "open", Path: path, Err: err}
	}
	return img, nil
}

// Crop cuts box out of img. The box is rounded to whole pixels and the crop
// always has the box's size: any part outside the image is filled with black.
func (c *Codec) Crop(img image.Image, box bbox.Box) image.Image {
	full := box.Pixels()
	if full.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}

	inside := full.Intersect(img.Bounds())
	if inside == full {
		return imaging.Crop(img, full)
	}

	canvas := imaging.New(full.Dx(), full.Dy(), color.Black)
	if inside.Empty() {
		return canvas
	}
	return imaging.Paste(canvas, imaging.Crop(img, inside), inside.Min.Sub(full.Min))
}

// Save encodes img to path, choosing the format from the file extension.
func (c *Codec) Save(img image.Image, path string) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(c.JPEGQuality)); err != nil {
		return &ImageError{Op: "save", Path: path, Err: err}
	}
	return nil
}
