package providers

import (
	"context"
	"time"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/bbox"
)

// DefaultTimeout bounds a single recognition call
const DefaultTimeout = 60 * time.Second

// Config represents the configuration for a provider
type Config struct {
	Provider string
	Timeout  time.Duration
}

// Image is one input file handed to a provider
type Image struct {
	Path   string
	Name   string
	Format string
	Data   []byte
}

// Field is one detected text region
type Field struct {
	Text    string
	Polygon []bbox.Point
}

// Result is the outcome of recognizing a single image.
// Raw holds the response body exactly as the service returned it.
type Result struct {
	Fields []Field
	Raw    []byte
}

// Recognizer interface that all OCR providers must implement
type Recognizer interface {
	// Recognize runs OCR over img and returns its fields in service order
	Recognize(ctx context.Context, config Config, img Image) (Result, error)
	// Name returns the provider's name
	Name() string
	// ValidateConfig validates the provider-specific configuration
	ValidateConfig(config Config) error
}

// WithTimeout derives a context bounded by config.Timeout, falling back to
// DefaultTimeout when none is set
func WithTimeout(ctx context.Context, config Config) (context.Context, context.CancelFunc) {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// TruncateBody truncates a response body to a maximum length for error messages.
// This helps keep error logs readable while still providing context.
// Default maxLen is 500 if not specified.
func TruncateBody(body []byte, maxLen ...int) string {
	limit := 500
	if len(maxLen) > 0 && maxLen[0] > 0 {
		limit = maxLen[0]
	}
	s := string(body)
	if len(s) > limit {
		return s[:limit] + "... (truncated)"
	}
	return s
}
