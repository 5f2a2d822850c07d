package graph

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"transcriptgraph/internal/annotation"
	"transcriptgraph/internal/assembler"
	"transcriptgraph/internal/recognition"
)

// DefaultLanguage is the language tag of the produced TextDocument
const DefaultLanguage = "en"

// DefaultViewID is the identifier of the produced View
const DefaultViewID = "v_0"

// Options control a single assembly run
type Options struct {
	ViewID    string
	Language  string
	Separator string
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		ViewID:    DefaultViewID,
		Language:  DefaultLanguage,
		Separator: recognition.DefaultSeparator,
	}
}

// Assemble turns a recognized segment sequence into an annotation View for
// the source document sourceDocID. Any failure aborts the run and no View
// is returned.
func Assemble(segments []recognition.Segment, sourceDocID string, opts Options) (*annotation.View, error) {
	if err := recognition.ValidateSegments(segments, opts.Separator); err != nil {
		return nil, err
	}

	view := annotation.NewView(opts.ViewID)
	if err := view.RegisterExternal(sourceDocID); err != nil {
		return nil, fmt.Errorf("failed to register source document: %w", err)
	}
	declareContains(view, sourceDocID, opts.Language)

	text := assembler.NewTextAssembler(opts.Separator)
	cur := assembler.Cursor{}

	for si, segment := range segments {
		sentenceText := text.AppendSegment(segment.Text)

		tokenIDs := make([]string, 0, len(segment.Words))
		for wi, word := range segment.Words {
			var span assembler.Span
			var err error
			span, cur, err = text.LocateWord(cur, word.Text, si, wi)
			if err != nil {
				return nil, err
			}

			token, err := view.NewToken(span.Text, span.Start, span.End)
			if err != nil {
				return nil, err
			}
			tokenIDs = append(tokenIDs, token.ID)

			frame, err := view.NewTimeFrame(toMillis(word.Start), toMillis(word.End))
			if err != nil {
				return nil, err
			}
			if _, err := view.NewAlignment(frame.ID, token.ID); err != nil {
				return nil, err
			}
		}

		frame, err := view.NewTimeFrame(toMillis(segment.Start), toMillis(segment.End))
		if err != nil {
			return nil, err
		}
		sentence, err := view.NewSentence(tokenIDs, sentenceText)
		if err != nil {
			return nil, err
		}
		if _, err := view.NewAlignment(frame.ID, sentence.ID); err != nil {
			return nil, err
		}
	}

	doc, err := view.NewTextDocument(text.Text(), opts.Language)
	if err != nil {
		return nil, err
	}
	if _, err := view.NewAlignment(sourceDocID, doc.ID); err != nil {
		return nil, err
	}

	return view, nil
}

func declareContains(view *annotation.View, sourceDocID, language string) {
	view.NewContain(annotation.TypeTextDocument, map[string]string{"document": sourceDocID, "lang": language})
	view.NewContain(annotation.TypeTimeFrame, map[string]string{
		"timeUnit":  annotation.TimeUnitMilliseconds,
		"document":  sourceDocID,
		"frameType": annotation.FrameTypeSpeech,
	})
	view.NewContain(annotation.TypeAlignment, nil)
	view.NewContain(annotation.TypeSentence, map[string]string{"document": sourceDocID})
	view.NewContain(annotation.TypeToken, nil)
}

// toMillis converts engine seconds to whole milliseconds, rounding to nearest
func toMillis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}

// Builder runs Assemble with logging for the application layer
type Builder struct {
	logger *zap.Logger
	opts   Options
}

// NewBuilder creates a Builder using the given options
func NewBuilder(opts Options, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger, opts: opts}
}

// Build assembles the View for one run and logs its outcome
func (b *Builder) Build(segments []recognition.Segment, sourceDocID string) (*annotation.View, error) {
	started := time.Now()

	b.logger.Debug("assembling annotation graph",
		zap.String("source_document", sourceDocID),
		zap.Int("segments", len(segments)),
		zap.Int("words", recognition.CountWords(segments)))

	view, err := Assemble(segments, sourceDocID, b.opts)
	if err != nil {
		b.logger.Error("annotation graph assembly failed",
			zap.Error(err),
			zap.String("source_document", sourceDocID))
		return nil, fmt.Errorf("failed to assemble annotation graph: %w", err)
	}

	doc, _ := view.TextDocument()
	b.logger.Info("annotation graph assembled",
		zap.String("view", view.ID()),
		zap.Int("tokens", len(view.Tokens())),
		zap.Int("time_frames", len(view.TimeFrames())),
		zap.Int("sentences", len(view.Sentences())),
		zap.Int("alignments", len(view.Alignments())),
		zap.Int("transcript_chars", utf8.RuneCountInString(doc.Text)),
		zap.Duration("elapsed", time.Since(started)))

	return view, nil
}
