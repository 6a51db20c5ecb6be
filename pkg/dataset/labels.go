package dataset

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// LabelFileName is the label file written next to the crops
const LabelFileName = "labels.txt"

var labelReplacer = strings.NewReplacer("\r\n", " ", "\t", " ", "\r", " ", "\n", " ")

// SanitizeLabel replaces tab and line break characters with a single space so
// that every record stays on one tab-separated line
func SanitizeLabel(label string) string {
	return labelReplacer.Replace(label)
}

// Normalization selects the Unicode normal form applied to labels
type Normalization string

const (
	NormalizeNone Normalization = "none"
	NormalizeNFC  Normalization = "nfc"
	NormalizeNFKC Normalization = "nfkc"
)

// ParseNormalization validates a normalization name; empty means none
func ParseNormalization(s string) (Normalization, error) {
	switch n := Normalization(strings.ToLower(strings.TrimSpace(s))); n {
	case "", NormalizeNone:
		return NormalizeNone, nil
	case NormalizeNFC, NormalizeNFKC:
		return n, nil
	default:
		return "", fmt.Errorf("unknown normalization %q (want none, nfc or nfkc)", s)
	}
}

// Apply normalizes s with the selected form
func (n Normalization) Apply(s string) string {
	switch n {
	case NormalizeNFC:
		return norm.NFC.String(s)
	case NormalizeNFKC:
		return norm.NFKC.String(s)
	default:
		return s
	}
}

// LabelWriter appends filename/label records to the shared label file.
// Each record goes straight to the file so an interrupted run leaves a
// valid prefix.
type LabelWriter struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	count  int
	closed bool
}

// CreateLabelFile creates (or truncates) the label file at path
func CreateLabelFile(path string) (*LabelWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create label file: %w", err)
	}
	return &LabelWriter{f: f, path: path}, nil
}

// Append writes one "filename\tlabel\n" record
func (w *LabelWriter) Append(filename, label string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("label file %s is closed", w.path)
	}
	if _, err := fmt.Fprintf(w.f, "%s\t%s\n", filename, label); err != nil {
		return fmt.Errorf("failed to append label: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of records written so far
func (w *LabelWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Path returns the label file location
func (w *LabelWriter) Path() string {
	return w.path
}

// Close closes the underlying file; calling it again is a no-op
func (w *LabelWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.f.Close()
}
