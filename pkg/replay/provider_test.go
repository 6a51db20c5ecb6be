package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/providers"
)

func TestProvider_ValidateConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name          string
		dir           string
		errorContains string
	}{
		{"existing directory", dir, ""},
		{"empty", "", "must be set"},
		{"missing", filepath.Join(dir, "nope"), "unavailable"},
		{"not a directory", file, "not a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.dir).ValidateConfig(providers.Config{})
			if tt.errorContains == "" {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error containing %q, got %v", tt.errorContains, err)
			}
		})
	}
}

func TestProvider_Recognize(t *testing.T) {
	dir := t.TempDir()
	raw := `{"images":[{"inferResult":"SUCCESS","fields":[{"inferText":"abcd","boundingPoly":{"vertices":[{"x":0,"y":0},{"x":30,"y":40}]}}]}]}`
	if err := os.WriteFile(filepath.Join(dir, "0000000001_clova.json"), []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken_clova.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	p := New(dir)

	result, err := p.Recognize(context.Background(), providers.Config{}, providers.Image{Name: "0000000001.png"})
	if err != nil {
		t.Fatalf("Recognize() error: %v", err)
	}
	if string(result.Raw) != raw {
		t.Errorf("Raw response not preserved")
	}
	if len(result.Fields) != 1 || result.Fields[0].Text != "abcd" || len(result.Fields[0].Polygon) != 2 {
		t.Errorf("Unexpected fields: %+v", result.Fields)
	}

	if _, err := p.Recognize(context.Background(), providers.Config{}, providers.Image{Name: "missing.png"}); err == nil {
		t.Error("Expected error for missing recording")
	}

	_, err = p.Recognize(context.Background(), providers.Config{}, providers.Image{Name: "broken.jpg"})
	if err == nil || !strings.Contains(err.Error(), "malformed") {
		t.Errorf("Expected malformed error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Recognize(ctx, providers.Config{}, providers.Image{Name: "0000000001.png"}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestResponseName(t *testing.T) {
	tests := map[string]string{
		"0000000001.png": "0000000001_clova.json",
		"scan.v2.jpeg":   "scan.v2_clova.json",
		"noext":          "noext_clova.json",
	}
	for in, want := range tests {
		if got := ResponseName(in); got != want {
			t.Errorf("ResponseName(%q) = %q, want %q", in, got, want)
		}
	}
}
