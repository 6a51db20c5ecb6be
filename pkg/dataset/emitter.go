package dataset

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/bbox"
)

// Cropper is the part of the image codec the emitter needs
type Cropper interface {
	Crop(img image.Image, box bbox.Box) image.Image
	Save(img image.Image, path string) error
}

// CropRecord is one row of the label file
type CropRecord struct {
	Filename string
	Label    string
}

// CropName builds "{base}_{index:03d}.{ext}"
func CropName(base string, index int, ext string) string {
	return fmt.Sprintf("%s_%03d.%s", base, index, ext)
}

// Emitter writes accepted field crops and their label records
type Emitter struct {
	dir    string
	codec  Cropper
	labels *LabelWriter
}

// NewEmitter creates an emitter saving crops into dir and records into labels
func NewEmitter(dir string, codec Cropper, labels *LabelWriter) *Emitter {
	return &Emitter{dir: dir, codec: codec, labels: labels}
}

// Emit crops src to box, saves it as CropName(base, index, ext) and appends the
// label record. index is the field's position in the recognition result, so
// rejected fields leave gaps in the numbering.
func (e *Emitter) Emit(src image.Image, box bbox.Box, label string, index int, base, ext string) (CropRecord, error) {
	record := CropRecord{Filename: CropName(base, index, ext), Label: label}

	crop := e.codec.Crop(src, box)
	if err := e.codec.Save(crop, filepath.Join(e.dir, record.Filename)); err != nil {
		return CropRecord{}, fmt.Errorf("failed to save crop %s: %w", record.Filename, err)
	}

	if err := e.labels.Append(record.Filename, record.Label); err != nil {
		return CropRecord{}, err
	}

	return record, nil
}
