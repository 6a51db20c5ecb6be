package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DaveLogs/CLOVAOCR2TDS/internal/imagecodec"
)

// InputFile is one discovered source image.
type InputFile struct {
	Path string
	Name string
	Base string
	Ext  string
}

// SplitName splits name on its last dot.
func SplitName(name string) (base, ext string, err error) {
	idx := strings.LastIndex(name, ".")
	if idx <= 0 || idx == len(name)-1 {
		return "", "", &FilenameFormatError{Name: name}
	}
	return name[:idx], name[idx+1:], nil
}

// Discover lists the regular files of dir in lexicographic order, skipping
// dotfiles, excluded names and anything that is not a supported image.
// skipped counts the excluded, misnamed and unsupported files; dotfiles and
// directories are ignored silently.
func Discover(dir string, exclude []string) (files []InputFile, skipped int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list input directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !entry.Type().IsRegular() {
			continue
		}
		if excluded(name, exclude) {
			slog.Debug("Excluded input file", "file", name)
			skipped++
			continue
		}

		base, ext, err := SplitName(name)
		if err != nil {
			slog.Warn("Skipping input file", "file", name, "err", err)
			skipped++
			continue
		}
		if !imagecodec.IsSupported(ext) {
			slog.Warn("Skipping unsupported image format", "file", name, "ext", ext)
			skipped++
			continue
		}

		files = append(files, InputFile{
			Path: filepath.Join(dir, name),
			Name: name,
			Base: base,
			Ext:  ext,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, skipped, nil
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}
