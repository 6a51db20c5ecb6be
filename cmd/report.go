package cmd

import (
	"os"
	"time"

	"github.com/DaveLogs/CLOVAOCR2TDS/internal/config"
	"github.com/DaveLogs/CLOVAOCR2TDS/internal/utils"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/pipeline"
	yaml "go.yaml.in/yaml/v3"
)

type ReportConfig struct {
	InputPath       string   `yaml:"input_path"`
	OutputPath      string   `yaml:"output_path"`
	MinImageSize    int      `yaml:"min_image_size"`
	Provider        string   `yaml:"provider"`
	ReplayDir       string   `yaml:"replay_dir,omitempty"`
	RequestTimeout  string   `yaml:"request_timeout"`
	Deadline        string   `yaml:"deadline,omitempty"`
	Workers         int      `yaml:"workers"`
	ContinueOnError bool     `yaml:"continue_on_error"`
	Exclude         []string `yaml:"exclude,omitempty"`
	Normalize       string   `yaml:"normalize"`
}

type ReportSummary struct {
	Files           int    `yaml:"files"`
	Skipped         int    `yaml:"skipped"`
	Processed       int    `yaml:"processed"`
	Crops           int    `yaml:"crops"`
	Shapes          int    `yaml:"shapes"`
	Rejected        int    `yaml:"rejected"`
	InvalidPolygons int    `yaml:"invalid_polygons"`
	Elapsed         string `yaml:"elapsed"`
}

type ReportFailure struct {
	File  string `yaml:"file"`
	Error string `yaml:"error"`
}

type RunReport struct {
	Timestamp string          `yaml:"timestamp"`
	Config    ReportConfig    `yaml:"config"`
	Summary   ReportSummary   `yaml:"summary"`
	Failures  []ReportFailure `yaml:"failures,omitempty"`
}

// newRunReport never carries the API URL or the secret key.
func newRunReport(cfg *config.Config, s *pipeline.Summary) RunReport {
	report := RunReport{
		Timestamp: time.Now().Format("2006-01-02_15-04-05"),
		Config: ReportConfig{
			InputPath:       cfg.InputPath,
			OutputPath:      cfg.OutputPath,
			MinImageSize:    cfg.MinImageSize,
			Provider:        cfg.Provider,
			ReplayDir:       cfg.ReplayDir,
			RequestTimeout:  cfg.RequestTimeout.String(),
			Workers:         cfg.Workers,
			ContinueOnError: cfg.ContinueOnError,
			Exclude:         cfg.Exclude,
			Normalize:       cfg.Normalize,
		},
		Summary: ReportSummary{
			Files:           s.Files,
			Skipped:         s.Skipped,
			Processed:       s.Processed,
			Crops:           s.Crops,
			Shapes:          s.Shapes,
			Rejected:        s.Rejected,
			InvalidPolygons: s.InvalidPolygons,
			Elapsed:         s.Elapsed.Round(time.Millisecond).String(),
		},
	}
	if cfg.Deadline > 0 {
		report.Config.Deadline = cfg.Deadline.String()
	}
	for _, f := range s.Failures {
		report.Failures = append(report.Failures, ReportFailure{
			File:  f.File,
			Error: utils.MaskSensitiveError(f.Err).Error(),
		})
	}
	return report
}

func saveReport(report RunReport, outputPath string) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}

	return os.WriteFile(outputPath, data, 0644)
}
