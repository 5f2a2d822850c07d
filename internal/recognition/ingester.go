package recognition

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Engine is the speech recognition engine producing timed segments for an audio file
type Engine interface {
	Recognize(ctx context.Context, audioPath string) ([]Segment, error)
}

// Ingester runs the recognition engine and validates its output before assembly
type Ingester struct {
	logger    *zap.Logger
	engine    Engine
	separator string
}

// NewIngester creates an Ingester around the given engine
func NewIngester(engine Engine, logger *zap.Logger) *Ingester {
	return NewIngesterWithSeparator(engine, logger, DefaultSeparator)
}

// NewIngesterWithSeparator creates an Ingester for engines using a different leading separator
func NewIngesterWithSeparator(engine Engine, logger *zap.Logger, separator string) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{
		logger:    logger,
		engine:    engine,
		separator: separator,
	}
}

// Ingest recognizes the audio file and returns the validated segment sequence.
// A single malformed segment rejects the whole sequence.
func (in *Ingester) Ingest(ctx context.Context, audioPath string) ([]Segment, error) {
	if in.engine == nil {
		return nil, fmt.Errorf("recognition engine not initialized")
	}

	in.logger.Info("running speech recognition", zap.String("audio_path", audioPath))

	segments, err := in.engine.Recognize(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("speech recognition failed for %s: %w", audioPath, err)
	}

	if err := ValidateSegments(segments, in.separator); err != nil {
		in.logger.Error("rejected recognition output", zap.Error(err))
		return nil, err
	}

	in.logger.Info("recognition output ingested",
		zap.Int("segments", len(segments)),
		zap.Int("words", CountWords(segments)))

	return segments, nil
}

// ValidateSegments checks every segment in order and returns the first failure
func ValidateSegments(segments []Segment, separator string) error {
	for i := range segments {
		if err := segments[i].Validate(i, separator); err != nil {
			return err
		}
	}
	return nil
}

// CountWords returns the number of words across all segments
func CountWords(segments []Segment) int {
	n := 0
	for _, s := range segments {
		n += len(s.Words)
	}
	return n
}
