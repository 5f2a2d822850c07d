package assembler

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"transcriptgraph/internal/recognition"
)

// ErrTokenNotFound reports a recognized word that does not occur in the transcript after the cursor
var ErrTokenNotFound = errors.New("token not found")

// TokenNotFoundError carries the context of a failed offset recovery
type TokenNotFoundError struct {
	SegmentIndex int
	WordIndex    int
	Text         string
	Cursor       int
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("token not found: segment %d word %d: %q does not occur at or after offset %d",
		e.SegmentIndex, e.WordIndex, e.Text, e.Cursor)
}

// Is allows errors.Is(err, ErrTokenNotFound)
func (e *TokenNotFoundError) Is(target error) bool {
	return target == ErrTokenNotFound
}

// Cursor is the search position in the transcript. Byte indexes the
// underlying string, Rune is the same position in characters.
type Cursor struct {
	Byte int
	Rune int
}

// Span is a located word: its stripped text and rune offsets [Start, End)
type Span struct {
	Text  string
	Start int
	End   int
}

// TextAssembler builds the canonical transcript segment by segment and
// recovers the character offsets of recognized words in it
type TextAssembler struct {
	separator string
	text      strings.Builder
	runes     int
}

// NewTextAssembler creates an assembler stripping the given leading separator
func NewTextAssembler(separator string) *TextAssembler {
	return &TextAssembler{separator: separator}
}

// AppendSegment adds a segment's text to the transcript, joined by one space,
// and returns the stripped text that was appended
func (ta *TextAssembler) AppendSegment(text string) string {
	stripped := recognition.StripSeparator(text, ta.separator)
	if ta.text.Len() > 0 {
		ta.text.WriteByte(' ')
		ta.runes++
	}
	ta.text.WriteString(stripped)
	ta.runes += utf8.RuneCountInString(stripped)
	return stripped
}

// Locate finds the first occurrence of the stripped word at or after cur.
// It returns the word's span and the cursor just past it; the assembler
// itself keeps no search position.
func (ta *TextAssembler) Locate(cur Cursor, word string) (Span, Cursor, error) {
	stripped := recognition.StripSeparator(word, ta.separator)
	transcript := ta.text.String()

	if cur.Byte < 0 || cur.Byte > len(transcript) {
		return Span{}, cur, &TokenNotFoundError{SegmentIndex: -1, WordIndex: -1, Text: stripped, Cursor: cur.Rune}
	}

	idx := strings.Index(transcript[cur.Byte:], stripped)
	if idx < 0 {
		return Span{}, cur, &TokenNotFoundError{SegmentIndex: -1, WordIndex: -1, Text: stripped, Cursor: cur.Rune}
	}

	matchByte := cur.Byte + idx
	start := cur.Rune + utf8.RuneCountInString(transcript[cur.Byte:matchByte])
	end := start + utf8.RuneCountInString(stripped)

	next := Cursor{Byte: matchByte + len(stripped), Rune: end}
	return Span{Text: stripped, Start: start, End: end}, next, nil
}

// LocateWord is Locate with segment and word indexes attached to any failure
func (ta *TextAssembler) LocateWord(cur Cursor, word string, segmentIndex, wordIndex int) (Span, Cursor, error) {
	span, next, err := ta.Locate(cur, word)
	if err != nil {
		var notFound *TokenNotFoundError
		if errors.As(err, &notFound) {
			notFound.SegmentIndex = segmentIndex
			notFound.WordIndex = wordIndex
		}
		return span, next, err
	}
	return span, next, nil
}

// Len returns the transcript length in characters
func (ta *TextAssembler) Len() int {
	return ta.runes
}

// Text hands the assembled transcript off. The builder's buffer backs the
// returned string, so the assembler must not be appended to afterwards.
func (ta *TextAssembler) Text() string {
	return ta.text.String()
}

// Slice returns text[start:end] in rune offsets, or "" when out of range
func Slice(text string, start, end int) string {
	if start < 0 || end < start {
		return ""
	}
	runeIdx := 0
	startByte, endByte := -1, -1
	for byteIdx := range text {
		if runeIdx == start {
			startByte = byteIdx
		}
		if runeIdx == end {
			endByte = byteIdx
			break
		}
		runeIdx++
	}
	if startByte < 0 && runeIdx == start {
		startByte = len(text)
	}
	if endByte < 0 && runeIdx == end {
		endByte = len(text)
	}
	if startByte < 0 || endByte < 0 {
		return ""
	}
	return text[startByte:endByte]
}
