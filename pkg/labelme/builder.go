package labelme

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/bbox"
)

// Builder accumulates the shapes of one image
type Builder struct {
	shapes []Shape
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{}
}

// AddShape records an accepted field as a rectangle
func (b *Builder) AddShape(label string, box bbox.Box) {
	b.shapes = append(b.shapes, Shape{
		Label:     label,
		Points:    box.Points(),
		GroupID:   nil,
		ShapeType: ShapeRectangle,
		Flags:     map[string]any{},
	})
}

// Len returns the number of shapes accumulated for the current image
func (b *Builder) Len() int {
	return len(b.shapes)
}

// Finalize produces the document for the current image and resets the
// builder for the next one
func (b *Builder) Finalize(imagePath string, width, height int) Document {
	shapes := b.shapes
	if shapes == nil {
		shapes = []Shape{}
	}
	b.shapes = nil

	return Document{
		Version:     Version,
		ShapeType:   ShapeRectangle,
		Flags:       map[string]any{},
		Shapes:      shapes,
		ImagePath:   imagePath,
		ImageData:   nil,
		ImageHeight: height,
		ImageWidth:  width,
	}
}

// Encode renders doc as tab-indented JSON with non-ASCII text kept literal
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write encodes doc into path
func Write(doc Document, path string) error {
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode annotation: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write annotation: %w", err)
	}
	return nil
}

// Persist copies the source image into dir and writes doc next to it as
// {base}.json
func Persist(doc Document, srcPath, dir, base string) error {
	if err := copyFile(srcPath, filepath.Join(dir, filepath.Base(srcPath))); err != nil {
		return fmt.Errorf("failed to copy source image: %w", err)
	}
	return Write(doc, filepath.Join(dir, base+".json"))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
