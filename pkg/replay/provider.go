package replay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/clova"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/providers"
)

// Suffix is appended to the image base name for persisted responses
const Suffix = "_clova.json"

// Provider answers recognition requests from responses saved by an earlier run
type Provider struct {
	dir string
}

// New creates a replay provider reading from dir, usually a previous run's
// recognized/ directory
func New(dir string) *Provider {
	return &Provider{dir: dir}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "replay"
}

// ValidateConfig checks that the replay directory exists
func (p *Provider) ValidateConfig(config providers.Config) error {
	if p.dir == "" {
		return fmt.Errorf("replay directory must be set")
	}
	info, err := os.Stat(p.dir)
	if err != nil {
		return fmt.Errorf("replay directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("replay path is not a directory: %s", p.dir)
	}
	return nil
}

// Recognize loads {base}_clova.json for img and parses it like a live response
func (p *Provider) Recognize(ctx context.Context, config providers.Config, img providers.Image) (providers.Result, error) {
	if err := ctx.Err(); err != nil {
		return providers.Result{}, err
	}

	path := filepath.Join(p.dir, ResponseName(img.Name))
	raw, err := os.ReadFile(path)
	if err != nil {
		return providers.Result{}, fmt.Errorf("no recorded response for %s: %w", img.Name, err)
	}

	fields, err := clova.ParseResponse(raw)
	if err != nil {
		return providers.Result{}, fmt.Errorf("%s: %w", path, err)
	}

	return providers.Result{Fields: fields, Raw: raw}, nil
}

// ResponseName returns the persisted response file name for an image file name
func ResponseName(imageName string) string {
	base := strings.TrimSuffix(imageName, filepath.Ext(imageName))
	return base + Suffix
}
