package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"transcriptgraph/internal/annotation"
	"transcriptgraph/internal/config"
	"transcriptgraph/internal/graph"
	"transcriptgraph/internal/logger"
	"transcriptgraph/internal/media"
	"transcriptgraph/internal/output"
	"transcriptgraph/internal/performance"
	"transcriptgraph/internal/recognition"
)

// Application turns one media document into an annotation View per run
type Application struct {
	config    *config.Configuration
	zapLogger *zap.Logger
	engine    recognition.Engine
	ingester  *recognition.Ingester
	builder   *graph.Builder
	monitor   *performance.PerformanceMonitor
	stdout    io.Writer

	mu        sync.RWMutex
	lastRunID string
}

// NewApplication creates a new application instance with all components initialized
func NewApplication() (*Application, error) {
	cfg, err := LoadConfiguration(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return nil, err
	}
	return NewApplicationFromConfig(cfg)
}

// LoadConfiguration reads configPath when set, otherwise the environment
func LoadConfiguration(configPath string) (*config.Configuration, error) {
	if configPath != "" {
		cfg, err := config.NewConfigurationFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configPath, err)
		}
		return cfg, nil
	}

	cfg, err := config.NewConfigurationFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	return cfg, nil
}

// NewApplicationFromConfig builds the logger and the file-backed recognition
// engine from cfg
func NewApplicationFromConfig(cfg *config.Configuration) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	zapLogger, err := logger.NewLoggerWithLevel(cfg.GetLogLevel(), cfg.GetDebugMode())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return NewApplicationWithConfig(cfg, zapLogger, newFileEngine(cfg, zapLogger))
}

// newFileEngine reads recognition.input_path, defaulting to the dump beside
// the source media document rather than beside the resolved audio
func newFileEngine(cfg *config.Configuration, zapLogger *zap.Logger) *recognition.FileEngine {
	path := cfg.GetRecognitionInputPath()
	if path == "" && cfg.GetSourceMediaPath() != "" {
		path = recognition.DumpPathFor(cfg.GetSourceMediaPath())
	}
	return recognition.NewFileEngine(path, zapLogger)
}

// NewApplicationWithConfig wires an application around an existing engine.
// A nil engine falls back to the file engine.
func NewApplicationWithConfig(cfg *config.Configuration, zapLogger *zap.Logger, engine recognition.Engine) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	if engine == nil {
		engine = newFileEngine(cfg, zapLogger)
	}

	opts := graph.Options{
		ViewID:    cfg.GetViewID(),
		Language:  cfg.GetTranscriptLanguage(),
		Separator: cfg.GetTranscriptSeparator(),
	}

	return &Application{
		config:    cfg,
		zapLogger: zapLogger,
		engine:    engine,
		ingester:  recognition.NewIngesterWithSeparator(engine, zapLogger, opts.Separator),
		builder:   graph.NewBuilder(opts, zapLogger),
		monitor:   performance.NewPerformanceMonitorWithBenchmark(zapLogger, cfg.GetDebugMode()),
		stdout:    os.Stdout,
	}, nil
}

// Run resolves the media document, recognizes it, assembles the View and
// writes it out. The whole run is bounded by run.timeout_sec.
func (app *Application) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run cancelled before start: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(app.config.GetRunTimeoutSec())*time.Second)
	defer cancel()

	runID := uuid.New().String()
	app.mu.Lock()
	app.lastRunID = runID
	app.mu.Unlock()

	docID := app.config.GetSourceDocumentID()
	runLogger := app.zapLogger.With(zap.String("run_id", runID))
	runLogger.Info("starting transcript graph run",
		zap.String("source_document", docID),
		zap.String("media_type", app.config.GetSourceMediaType()),
		zap.String("media_path", app.config.GetSourceMediaPath()),
		zap.Bool("debug_mode", app.config.GetDebugMode()))

	audio, err := app.resolveMedia(ctx, runLogger)
	if err != nil {
		runLogger.Error("failed to resolve media", zap.Error(err))
		return fmt.Errorf("failed to resolve media: %w", err)
	}
	defer func() {
		if err := audio.Close(); err != nil {
			runLogger.Warn("failed to remove temporary audio", zap.Error(err))
		}
	}()

	timer := app.monitor.StartRun(0, 0)
	segments, err := app.ingester.Ingest(ctx, audio.Path)
	if err != nil {
		app.monitor.EndRun(timer, err)
		return fmt.Errorf("failed to ingest recognition output: %w", err)
	}

	timer.Segments = len(segments)
	timer.Words = recognition.CountWords(segments)
	view, err := app.builder.Build(segments, docID)
	app.monitor.EndRun(timer, err)
	if err != nil {
		return err
	}

	if err := app.writeView(runID, docID, view); err != nil {
		runLogger.Error("failed to write view", zap.Error(err))
		return err
	}

	runLogger.Info("transcript graph run completed",
		zap.String("view", view.ID()),
		zap.Int("annotations", len(view.Annotations())),
		zap.Duration("processing_time", timer.ProcessingTime))
	return nil
}

// resolveMedia yields the audio for the engine. Without a media path the
// engine is expected to find its input on its own.
func (app *Application) resolveMedia(ctx context.Context, runLogger *zap.Logger) (*media.Audio, error) {
	path := app.config.GetSourceMediaPath()
	if path == "" {
		runLogger.Debug("no media path configured, skipping media resolution")
		return &media.Audio{}, nil
	}

	resolver, err := media.NewResolver(app.config.GetSourceMediaType(), path, media.Options{
		DocumentID: app.config.GetSourceDocumentID(),
		TmpDir:     app.config.GetMediaTmpDir(),
		FFmpegPath: app.config.GetFFmpegPath(),
		Logger:     runLogger,
	})
	if err != nil {
		return nil, err
	}
	return resolver.Resolve(ctx)
}

// writeView writes to output.path, or stdout when it is empty. A failed
// write leaves no file behind.
func (app *Application) writeView(runID, docID string, view *annotation.View) error {
	path := app.config.GetOutputPath()
	if path == "" {
		return output.NewViewWriter(app.stdout, app.zapLogger).WriteView(runID, docID, view)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	writer := output.NewViewWriter(file, app.zapLogger)
	writeErr := writer.WriteView(runID, docID, view)
	closeErr := writer.Close()
	if writeErr == nil && closeErr != nil {
		writeErr = fmt.Errorf("failed to close output file %s: %w", path, closeErr)
	}
	if writeErr != nil {
		_ = os.Remove(path)
		return writeErr
	}
	return nil
}

// LastRunID returns the id of the most recent run, empty before the first
func (app *Application) LastRunID() string {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.lastRunID
}

// Metrics returns the accumulated assembly metrics
func (app *Application) Metrics() performance.PerformanceMetrics {
	return app.monitor.GetMetrics()
}

// Shutdown reports the accumulated metrics and flushes the logger
func (app *Application) Shutdown() error {
	app.zapLogger.Info("shutting down application")
	app.monitor.LogCurrentMetrics()
	if app.config.GetDebugMode() {
		app.zapLogger.Info(app.monitor.GetPerformanceSummary())
	}

	// Sync fails on terminals; nothing to recover
	_ = app.zapLogger.Sync()

	app.zapLogger.Info("application shutdown completed")
	return nil
}
