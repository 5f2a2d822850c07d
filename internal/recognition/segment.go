package recognition

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// DefaultSeparator is the leading separator the recognition engine puts on word and segment text
const DefaultSeparator = " "

// ErrMalformedSegment reports recognition output that cannot be assembled
var ErrMalformedSegment = errors.New("malformed segment")

// Word is a timed sub-unit of a Segment as produced by the recognition engine
type Word struct {
	Text  string  `json:"word" yaml:"word"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// Segment is a recognized unit of speech with its aggregate text, timing and words
type Segment struct {
	Text  string  `json:"text" yaml:"text"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Words []Word  `json:"words" yaml:"words"`
}

// MalformedSegmentError describes why a segment was rejected.
// WordIndex is -1 when the problem concerns the segment itself.
type MalformedSegmentError struct {
	SegmentIndex int
	WordIndex    int
	Text         string
	Reason       string
}

func (e *MalformedSegmentError) Error() string {
	if e.WordIndex < 0 {
		return fmt.Sprintf("malformed segment %d: %s", e.SegmentIndex, e.Reason)
	}
	return fmt.Sprintf("malformed segment %d: word %d (%q): %s", e.SegmentIndex, e.WordIndex, e.Text, e.Reason)
}

// Is allows errors.Is(err, ErrMalformedSegment)
func (e *MalformedSegmentError) Is(target error) bool {
	return target == ErrMalformedSegment
}

// StripSeparator removes one leading separator from recognized text, if present
func StripSeparator(text, separator string) string {
	if separator == "" {
		return text
	}
	return strings.TrimPrefix(text, separator)
}

// Validate checks a single segment. index is its position in the run and is
// only used for error context.
func (s *Segment) Validate(index int, separator string) error {
	if err := checkTimes(s.Start, s.End); err != "" {
		return &MalformedSegmentError{SegmentIndex: index, WordIndex: -1, Text: s.Text, Reason: err}
	}

	if len(s.Words) == 0 {
		return &MalformedSegmentError{SegmentIndex: index, WordIndex: -1, Text: s.Text, Reason: "word list cannot be empty"}
	}

	prevStart := math.Inf(-1)
	for i, w := range s.Words {
		if err := checkTimes(w.Start, w.End); err != "" {
			return &MalformedSegmentError{SegmentIndex: index, WordIndex: i, Text: w.Text, Reason: err}
		}
		if w.Start < prevStart {
			return &MalformedSegmentError{SegmentIndex: index, WordIndex: i, Text: w.Text, Reason: "words must be time-ordered"}
		}
		if StripSeparator(w.Text, separator) == "" {
			return &MalformedSegmentError{SegmentIndex: index, WordIndex: i, Text: w.Text, Reason: "word text cannot be empty"}
		}
		prevStart = w.Start
	}

	return nil
}

// MaxTimestampSeconds is the first time, in seconds, that no longer fits int64 milliseconds
const MaxTimestampSeconds = float64(math.MaxInt64 / 1000)

func checkTimes(start, end float64) string {
	switch {
	case math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0):
		return "timestamps must be finite"
	case start >= MaxTimestampSeconds || end >= MaxTimestampSeconds:
		return "timestamp exceeds the millisecond range"
	case start < 0:
		return "start cannot be negative"
	case end < start:
		return "end must not precede start"
	}
	return ""
}
