package recognition

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockEngine is a mock implementation of the recognition engine for testing
type MockEngine struct {
	recognizeError error
	segments       []Segment
	calls          []string
}

func (m *MockEngine) Recognize(ctx context.Context, audioPath string) ([]Segment, error) {
	m.calls = append(m.calls, audioPath)
	if m.recognizeError != nil {
		return nil, m.recognizeError
	}
	return m.segments, nil
}

func TestIngester_Ingest(t *testing.T) {
	t.Run("should return validated segments from the engine", func(t *testing.T) {
		// Arrange
		engine := &MockEngine{segments: []Segment{
			{Text: " hello world", Start: 0, End: 1, Words: []Word{{" hello", 0, 0.5}, {" world", 0.5, 1}}},
		}}
		ingester := NewIngester(engine, zaptest.NewLogger(t))

		// Act
		segments, err := ingester.Ingest(context.Background(), "/audio/d1.wav")

		// Assert
		require.NoError(t, err)
		assert.Len(t, segments, 1)
		assert.Equal(t, []string{"/audio/d1.wav"}, engine.calls)
	})

	t.Run("should reject output containing a malformed segment", func(t *testing.T) {
		engine := &MockEngine{segments: []Segment{
			{Text: " ok", Start: 0, End: 1, Words: []Word{{" ok", 0, 1}}},
			{Text: " nothing", Start: 1, End: 2, Words: []Word{}},
		}}
		ingester := NewIngester(engine, zaptest.NewLogger(t))

		segments, err := ingester.Ingest(context.Background(), "a.wav")

		assert.ErrorIs(t, err, ErrMalformedSegment)
		assert.Nil(t, segments)
	})

	t.Run("should wrap engine failures", func(t *testing.T) {
		engine := &MockEngine{recognizeError: assert.AnError}
		ingester := NewIngester(engine, zaptest.NewLogger(t))

		_, err := ingester.Ingest(context.Background(), "a.wav")

		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "speech recognition failed")
	})

	t.Run("should fail without an engine", func(t *testing.T) {
		ingester := NewIngester(nil, nil)

		_, err := ingester.Ingest(context.Background(), "a.wav")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not initialized")
	})

	t.Run("should honour a custom separator", func(t *testing.T) {
		engine := &MockEngine{segments: []Segment{
			{Text: "_a", Start: 0, End: 1, Words: []Word{{"_", 0, 1}}},
		}}
		ingester := NewIngesterWithSeparator(engine, zaptest.NewLogger(t), "_")

		_, err := ingester.Ingest(context.Background(), "a.wav")

		assert.ErrorIs(t, err, ErrMalformedSegment)
	})
}

func TestFileEngine_Recognize(t *testing.T) {
	t.Run("should load a JSON dump", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		path := filepath.Join(dir, "out.json")
		content := `{"language":"en","duration":1.0,"segments":[
			{"id":0,"text":" hello world","start":0.0,"end":1.0,
			 "words":[{"word":" hello","start":0.0,"end":0.5,"probability":0.9},
			          {"word":" world","start":0.5,"end":1.0,"probability":0.8}]}]}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		engine := NewFileEngine(path, zaptest.NewLogger(t))

		// Act
		segments, err := engine.Recognize(context.Background(), "ignored.wav")

		// Assert
		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Equal(t, " hello world", segments[0].Text)
		assert.Equal(t, []Word{{" hello", 0, 0.5}, {" world", 0.5, 1}}, segments[0].Words)
	})

	t.Run("should load a YAML dump", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "out.yaml")
		content := `language: en
segments:
  - text: " the cat"
    start: 0
    end: 2
    words:
      - {word: " the", start: 0, end: 1}
      - {word: " cat", start: 1, end: 2}
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		engine := NewFileEngine(path, nil)

		segments, err := engine.Recognize(context.Background(), "")

		require.NoError(t, err)
		require.Len(t, segments, 1)
		assert.Len(t, segments[0].Words, 2)
		assert.Equal(t, " cat", segments[0].Words[1].Text)
	})

	t.Run("should derive the dump path from the audio path", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "d1.json"), []byte(`{"segments":[]}`), 0644))
		engine := NewFileEngine("", zaptest.NewLogger(t))

		segments, err := engine.Recognize(context.Background(), filepath.Join(dir, "d1.wav"))

		require.NoError(t, err)
		assert.Empty(t, segments)
	})

	t.Run("should return error for a missing dump", func(t *testing.T) {
		engine := NewFileEngine("/tmp/non-existent-recognition.json", zaptest.NewLogger(t))

		_, err := engine.Recognize(context.Background(), "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read recognition dump")
	})

	t.Run("should return error for an invalid dump", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"segments": [`), 0644))
		engine := NewFileEngine(path, zaptest.NewLogger(t))

		_, err := engine.Recognize(context.Background(), "")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse recognition dump")
	})

	t.Run("should stop on a cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		engine := NewFileEngine("whatever.json", zaptest.NewLogger(t))

		_, err := engine.Recognize(ctx, "")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDumpPathFor(t *testing.T) {
	tests := []struct {
		mediaPath string
		expected  string
	}{
		{mediaPath: "/media/show.mp4", expected: "/media/show.json"},
		{mediaPath: "talk.wav", expected: "talk.json"},
		{mediaPath: "/media/archive.2024/raw", expected: "/media/archive.2024/raw.json"},
		{mediaPath: "noext", expected: "noext.json"},
	}

	for _, tt := range tests {
		t.Run(tt.mediaPath, func(t *testing.T) {
			assert.Equal(t, tt.expected, DumpPathFor(tt.mediaPath))
		})
	}
}
