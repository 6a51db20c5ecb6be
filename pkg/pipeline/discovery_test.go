package pipeline

import (
	"bytes"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/bbox"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/dataset"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/providers"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name     string
		wantBase string
		wantExt  string
		wantErr  bool
	}{
		{"0000000001.png", "0000000001", "png", false},
		{"scan.v2.final.jpg", "scan.v2.final", "jpg", false},
		{"noext", "", "", true},
		{"trailing.", "", "", true},
		{".png", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, ext, err := SplitName(tt.name)
			if tt.wantErr {
				var fe *FilenameFormatError
				if !errors.As(err, &fe) {
					t.Fatalf("expected FilenameFormatError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if base != tt.wantBase || ext != tt.wantExt {
				t.Errorf("SplitName(%q) = %q, %q", tt.name, base, ext)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", ".hidden.png", "notes.txt", "noext", "skip.png", "tmp_1.png", "C.TIF"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	files, skipped, err := Discover(dir, []string{"skip.png", "tmp_*"})
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	// notes.txt, noext, skip.png, tmp_1.png
	if skipped != 4 {
		t.Errorf("Discover() skipped = %d, want 4", skipped)
	}

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	want := []string{"C.TIF", "a.jpg", "b.png"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Discover() = %v, want %v", names, want)
	}
	if files[1].Base != "a" || files[1].Ext != "jpg" || files[1].Path != filepath.Join(dir, "a.jpg") {
		t.Errorf("unexpected file: %+v", files[1])
	}

	if _, _, err := Discover(filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestDecide(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	fields := []providers.Field{
		{Text: "ok", Polygon: rect(10, 10, 50, 60)},
		{Text: "small", Polygon: rect(10, 10, 20, 15)},
		{Text: "none", Polygon: nil},
		{Text: "outside", Polygon: rect(200, 200, 260, 260)},
		{Text: "tab\there", Polygon: rect(0, 0, 16, 16)},
	}

	decisions := Decide(fields, 16, bounds, dataset.NormalizeNone)
	if len(decisions) != len(fields) {
		t.Fatalf("expected %d decisions, got %d", len(fields), len(decisions))
	}

	want := []Outcome{Accepted, Rejected, InvalidPolygon, Rejected, Accepted}
	for i, d := range decisions {
		if d.Index != i {
			t.Errorf("decision %d has index %d", i, d.Index)
		}
		if d.Outcome != want[i] {
			t.Errorf("decision %d (%s) = %s, want %s", i, fields[i].Text, d.Outcome, want[i])
		}
	}
	if decisions[0].Box != (bbox.Box{Left: 10, Upper: 10, Right: 50, Lower: 60}) {
		t.Errorf("unexpected box: %+v", decisions[0].Box)
	}
	if !errors.Is(decisions[2].Err, bbox.ErrInvalidPolygon) {
		t.Errorf("expected ErrInvalidPolygon, got %v", decisions[2].Err)
	}
	if decisions[4].Label != "tab here" {
		t.Errorf("label not sanitized: %q", decisions[4].Label)
	}
}

func TestDecide_Normalization(t *testing.T) {
	fields := []providers.Field{{Text: "\u1100\u1161", Polygon: rect(0, 0, 20, 20)}}
	d := Decide(fields, 16, image.Rect(0, 0, 32, 32), dataset.NormalizeNFC)
	if d[0].Label != "\uac00" {
		t.Errorf("label not normalized: %q", d[0].Label)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(&buf, 125)
	for i := 1; i <= 125; i++ {
		p.step(i)
	}
	p.finish(90 * time.Second)

	out := buf.String()
	for _, want := range []string{"\r010 / 125 Processing !!", "\r120 / 125 Processing !!", "\n- processing time: 1.5min\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "\r125 / 125") {
		t.Errorf("progress reported off-interval count: %q", out)
	}
}
