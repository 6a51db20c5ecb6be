package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/DaveLogs/CLOVAOCR2TDS/internal/config"
	"github.com/DaveLogs/CLOVAOCR2TDS/internal/imagecodec"
	"github.com/DaveLogs/CLOVAOCR2TDS/internal/metrics"
	"github.com/DaveLogs/CLOVAOCR2TDS/internal/utils"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/bbox"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/clova"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/dataset"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/pipeline"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/providers"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/replay"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a directory of images into a text recognition data set",
	Long: `Run every image in --input_path through CLOVA OCR and build a training data set in --output_path.

The output directory must not exist yet. Three subdirectories are created:
  recognized/  raw OCR responses ({name}_clova.json)
  cropped/     one crop per accepted field plus labels.txt
  converted/   source images with LabelMe rectangle annotations

Use --provider replay --replay_dir <output>/recognized to rebuild a data set from saved
responses without calling the OCR service.`,
	RunE: runConvert,
}

func init() {
	RootCmd.AddCommand(convertCmd)

	f := convertCmd.Flags()
	f.String("input_path", "", "Directory with the source images (required)")
	f.String("output_path", "", "Directory to create for the data set (required, must not exist)")
	f.Int("min_image_size", bbox.DefaultMinSize, "Minimum crop width and height in pixels")
	f.String("provider", "clova", "Recognition provider: clova, replay")
	f.String("replay_dir", "", "Directory with saved *_clova.json responses for the replay provider")
	f.String("api_url", "", "CLOVA OCR APIGW invoke URL (env "+clova.EnvAPIURL+")")
	f.String("secret_key", "", "CLOVA OCR secret key (env "+clova.EnvSecretKey+")")
	f.Duration("request_timeout", providers.DefaultTimeout, "Timeout for a single recognition call")
	f.Duration("deadline", 0, "Deadline for the whole run (0 disables it)")
	f.Int("workers", 1, "Number of concurrent recognition calls; more than one implies --continue_on_error")
	f.Bool("continue_on_error", false, "Record failed files and keep going instead of aborting")
	f.StringSlice("exclude", []string{}, "File names or glob patterns to skip")
	f.String("normalize", string(dataset.NormalizeNone), "Unicode normalization for labels: none, nfc, nfkc")
	f.String("metrics_file", "", "Write run metrics in Prometheus text format to this file")
	f.String("report", "", "Write a YAML run report to this file")
}

func runConvert(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	loader := config.NewLoader()
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loader.Load(configFile)
	if err != nil {
		return err
	}
	if used := loader.ConfigFileUsed(); used != "" {
		slog.Info("Loaded configuration", "file", used)
	}

	recognizer, err := newRecognizer(cfg)
	if err != nil {
		return err
	}

	// already checked by Validate
	normalization, _ := dataset.ParseNormalization(cfg.Normalize)

	recorder := metrics.NewRecorder()
	out := cmd.OutOrStdout()

	summary, runErr := pipeline.Run(cmd.Context(), pipeline.Options{
		InputPath:       cfg.InputPath,
		OutputPath:      cfg.OutputPath,
		MinImageSize:    float64(cfg.MinImageSize),
		Recognizer:      recognizer,
		RequestTimeout:  cfg.RequestTimeout,
		Deadline:        cfg.Deadline,
		Workers:         cfg.Workers,
		ContinueOnError: cfg.ContinueOnError,
		Exclude:         cfg.Exclude,
		Normalize:       normalization,
		Codec:           imagecodec.New(),
		Metrics:         recorder,
		Progress:        out,
	})

	if summary != nil {
		printSummary(out, summary)

		if cfg.Report != "" {
			if err := saveReport(newRunReport(cfg, summary), cfg.Report); err != nil {
				slog.Error("Failed to save report", "file", cfg.Report, "err", err)
			} else {
				fmt.Fprintf(out, "Report saved to: %s\n", cfg.Report)
			}
		}
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Error("Failed to write metrics", "file", cfg.MetricsFile, "err", err)
		}
	}

	if runErr != nil {
		return utils.MaskSensitiveError(runErr)
	}
	return nil
}

func newRecognizer(cfg *config.Config) (providers.Recognizer, error) {
	registry := providers.NewRegistry()
	registry.Register(clova.New(cfg.Clova.APIURL, cfg.Clova.SecretKey))
	registry.Register(replay.New(cfg.ReplayDir))

	name := strings.ToLower(cfg.Provider)
	recognizer, err := registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported provider: %s (available: %s)", cfg.Provider, strings.Join(registry.List(), ", "))
	}

	providerConfig := providers.Config{
		Provider: name,
		Timeout:  cfg.RequestTimeout,
	}
	if err := recognizer.ValidateConfig(providerConfig); err != nil {
		return nil, fmt.Errorf("provider configuration validation failed: %w", err)
	}

	return recognizer, nil
}

func printSummary(w io.Writer, s *pipeline.Summary) {
	fmt.Fprintf(w, "\n=== SUMMARY ===\n")
	fmt.Fprintf(w, "Files: %d\n", s.Files)
	if s.Skipped > 0 {
		fmt.Fprintf(w, "Skipped: %d\n", s.Skipped)
	}
	fmt.Fprintf(w, "Processed: %d\n", s.Processed)
	fmt.Fprintf(w, "Crops: %d\n", s.Crops)
	fmt.Fprintf(w, "Rejected fields: %d\n", s.Rejected)
	if s.InvalidPolygons > 0 {
		fmt.Fprintf(w, "Invalid polygons: %d\n", s.InvalidPolygons)
	}
	if len(s.Failures) > 0 {
		fmt.Fprintf(w, "Failed files: %d\n", len(s.Failures))
		for _, f := range s.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.File, utils.MaskSensitiveError(f.Err))
		}
	}
	fmt.Fprintf(w, "Elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
}
