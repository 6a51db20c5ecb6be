// Package pipeline converts a directory of images into a text recognition
// training set: raw OCR responses, labeled field crops and per-image
// rectangle annotations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/DaveLogs/CLOVAOCR2TDS/internal/imagecodec"
	"github.com/DaveLogs/CLOVAOCR2TDS/internal/metrics"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/dataset"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/labelme"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/providers"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/replay"
	"golang.org/x/sync/errgroup"
)

// Output subdirectories created under the output root.
const (
	RecognizedDir = "recognized"
	CroppedDir    = "cropped"
	ConvertedDir  = "converted"
)

// ErrFilesFailed is returned when the run finished but some files failed.
var ErrFilesFailed = errors.New("some files failed")

// Codec decodes source images and cuts crops out of them.
type Codec interface {
	Open(path string) (image.Image, error)
	dataset.Cropper
}

// Options configures a run.
type Options struct {
	InputPath    string
	OutputPath   string
	MinImageSize float64

	Recognizer     providers.Recognizer
	RequestTimeout time.Duration
	// Deadline bounds the whole run; zero means no deadline.
	Deadline time.Duration

	// Workers bounds in-flight recognition calls. More than one worker
	// implies ContinueOnError.
	Workers         int
	ContinueOnError bool

	Exclude   []string
	Normalize dataset.Normalization

	Codec    Codec
	Metrics  *metrics.Recorder
	Progress io.Writer
}

// FileFailure records a file that could not be converted.
type FileFailure struct {
	File string
	Err  error
}

// Summary describes a finished run. Crops, Shapes and the line count of
// the label file always agree, including for a file whose crops failed
// part way: its annotation keeps the shapes written so far.
type Summary struct {
	Files           int
	Skipped         int
	Processed       int
	Crops           int
	Shapes          int
	Rejected        int
	InvalidPolygons int
	Failures        []FileFailure
	Elapsed         time.Duration
}

type recognized struct {
	result providers.Result
	err    error
}

type runner struct {
	opts    Options
	config  providers.Config
	emitter *dataset.Emitter
	dirs    struct{ recognized, cropped, converted string }
	summary *Summary
}

// Run executes one batch run. The output root must not exist yet; it is only
// created after the input has been validated and listed.
func Run(ctx context.Context, opts Options) (_ *Summary, err error) {
	start := time.Now()

	if opts.Recognizer == nil {
		return nil, errors.New("no recognizer configured")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Codec == nil {
		opts.Codec = imagecodec.New()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRecorder()
	}

	if _, err := os.Stat(opts.InputPath); err != nil {
		if os.IsNotExist(err) {
			return nil, &InputNotFoundError{Path: opts.InputPath}
		}
		return nil, fmt.Errorf("failed to stat input path: %w", err)
	}
	if _, err := os.Lstat(opts.OutputPath); err == nil {
		return nil, &OutputAlreadyExistsError{Path: opts.OutputPath}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat output path: %w", err)
	}

	files, skipped, err := Discover(opts.InputPath, opts.Exclude)
	if err != nil {
		return nil, err
	}
	for range skipped {
		opts.Metrics.File(metrics.FileSkipped)
	}

	r := &runner{
		opts: opts,
		config: providers.Config{
			Provider: opts.Recognizer.Name(),
			Timeout:  opts.RequestTimeout,
		},
		summary: &Summary{Files: len(files), Skipped: skipped},
	}
	r.dirs.recognized = filepath.Join(opts.OutputPath, RecognizedDir)
	r.dirs.cropped = filepath.Join(opts.OutputPath, CroppedDir)
	r.dirs.converted = filepath.Join(opts.OutputPath, ConvertedDir)

	for _, dir := range []string{r.dirs.recognized, r.dirs.cropped, r.dirs.converted} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	labels, err := dataset.CreateLabelFile(filepath.Join(r.dirs.cropped, dataset.LabelFileName))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := labels.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close label file: %w", cerr))
		}
	}()
	r.emitter = dataset.NewEmitter(r.dirs.cropped, opts.Codec, labels)

	if opts.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Deadline)
		defer cancel()
	}

	slog.Info("Starting conversion",
		"input", opts.InputPath,
		"output", opts.OutputPath,
		"files", len(files),
		"skipped", skipped,
		"provider", r.config.Provider,
		"workers", opts.Workers)

	prog := newProgress(opts.Progress, len(files))
	err = r.run(ctx, files, prog)

	r.summary.Elapsed = time.Since(start)
	prog.finish(r.summary.Elapsed)

	return r.summary, err
}

// run emits results strictly in file order from a single loop. With one
// worker each file is recognized inline; otherwise a pool recognizes ahead.
func (r *runner) run(ctx context.Context, files []InputFile, prog *progress) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	continueOnError := r.opts.ContinueOnError || r.opts.Workers > 1

	next := func(i int) recognized {
		if err := ctx.Err(); err != nil {
			return recognized{err: err}
		}
		return r.recognize(ctx, files[i])
	}
	wait := func() {}
	if r.opts.Workers > 1 {
		p := r.startPool(ctx, files)
		next = func(i int) recognized { return p.next(ctx, i) }
		wait = func() { <-p.done }
	}

	var runErr error
	for i, f := range files {
		if err := r.process(f, next(i)); err != nil {
			r.opts.Metrics.File(metrics.FileFailed)
			r.summary.Failures = append(r.summary.Failures, FileFailure{File: f.Name, Err: err})
			slog.Error("Failed to process file", "file", f.Name, "err", err)

			if !continueOnError {
				runErr = err
				break
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				runErr = fmt.Errorf("run stopped: %w", ctxErr)
				break
			}
		} else {
			r.opts.Metrics.File(metrics.FileProcessed)
			r.summary.Processed++
		}
		prog.step(i + 1)
	}

	cancel()
	wait()

	if runErr != nil {
		return runErr
	}
	if n := len(r.summary.Failures); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFilesFailed, n, len(files))
	}
	return nil
}

// pool recognizes files ahead of the writing loop. A permit is taken for
// every launched file and only returned when the loop takes its result, so
// at most Workers results are in flight or waiting at any time.
type pool struct {
	slots   []chan recognized
	permits chan struct{}
	done    chan struct{}
}

func (r *runner) startPool(ctx context.Context, files []InputFile) *pool {
	p := &pool{
		slots:   make([]chan recognized, len(files)),
		permits: make(chan struct{}, r.opts.Workers),
		done:    make(chan struct{}),
	}
	for i := range p.slots {
		p.slots[i] = make(chan recognized, 1)
	}

	go func() {
		defer close(p.done)

		var g errgroup.Group
		defer func() { _ = g.Wait() }()

		for i, f := range files {
			if ctx.Err() != nil {
				return
			}
			select {
			case p.permits <- struct{}{}:
			case <-ctx.Done():
				return
			}
			g.Go(func() error {
				p.slots[i] <- r.recognize(ctx, f)
				return nil
			})
		}
	}()

	return p
}

func (p *pool) next(ctx context.Context, i int) recognized {
	select {
	case res := <-p.slots[i]:
		<-p.permits
		return res
	case <-ctx.Done():
		return recognized{err: ctx.Err()}
	}
}

func (r *runner) recognize(ctx context.Context, f InputFile) recognized {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return recognized{err: fmt.Errorf("failed to read %s: %w", f.Name, err)}
	}

	start := time.Now()
	result, err := r.opts.Recognizer.Recognize(ctx, r.config, providers.Image{
		Path:   f.Path,
		Name:   f.Name,
		Format: f.Ext,
		Data:   data,
	})
	r.opts.Metrics.Recognition(r.config.Provider, time.Since(start), err)
	if err != nil {
		return recognized{err: &RecognitionError{File: f.Name, Err: err}}
	}

	slog.Debug("Recognized file", "file", f.Name, "fields", len(result.Fields), "duration", time.Since(start))
	return recognized{result: result}
}

// process persists everything derived from one recognized file.
func (r *runner) process(f InputFile, res recognized) error {
	if res.err != nil {
		return res.err
	}

	if err := r.saveRaw(f, res.result.Raw); err != nil {
		return err
	}

	img, err := r.opts.Codec.Open(f.Path)
	if err != nil {
		return err
	}
	bounds := img.Bounds()

	// a failed crop stops emission but the annotation still gets the shapes
	// whose label lines were written
	var emitErr error
	builder := labelme.NewBuilder()
	for _, d := range Decide(res.result.Fields, r.opts.MinImageSize, bounds, r.opts.Normalize) {
		if emitErr != nil {
			break
		}
		switch d.Outcome {
		case InvalidPolygon:
			r.summary.InvalidPolygons++
			r.opts.Metrics.Field(metrics.FieldInvalid)
			slog.Warn("Skipping field", "file", f.Name, "index", d.Index, "err", d.Err)
		case Rejected:
			r.summary.Rejected++
			r.opts.Metrics.Field(metrics.FieldRejected)
			slog.Debug("Rejected field", "file", f.Name, "index", d.Index, "width", d.Box.Width(), "height", d.Box.Height())
		case Accepted:
			if _, err := r.emitter.Emit(img, d.Box, d.Label, d.Index, f.Base, f.Ext); err != nil {
				emitErr = err
				continue
			}
			builder.AddShape(d.Label, d.Box)
			r.summary.Crops++
			r.opts.Metrics.Field(metrics.FieldAccepted)
		}
	}

	doc := builder.Finalize(f.Name, bounds.Dx(), bounds.Dy())
	if err := labelme.Persist(doc, f.Path, r.dirs.converted, f.Base); err != nil {
		return errors.Join(emitErr, fmt.Errorf("failed to write annotation for %s: %w", f.Name, err))
	}
	r.summary.Shapes += len(doc.Shapes)

	return emitErr
}

// saveRaw writes the raw response re-indented with four spaces and with
// non-ASCII text unescaped.
func (r *runner) saveRaw(f InputFile, raw []byte) error {
	data, err := reindentJSON(raw, "    ")
	if err != nil {
		return &RecognitionError{File: f.Name, Err: fmt.Errorf("malformed response: %w", err)}
	}

	path := filepath.Join(r.dirs.recognized, f.Base+replay.Suffix)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save response for %s: %w", f.Name, err)
	}
	return nil
}

