package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"transcriptgraph/internal/annotation"
	"transcriptgraph/internal/graph"
	"transcriptgraph/internal/recognition"
)

func assembledView(t *testing.T) *annotation.View {
	t.Helper()
	segments := []recognition.Segment{{
		Text: " hello world", Start: 0, End: 1,
		Words: []recognition.Word{{Text: " hello", Start: 0, End: 0.5}, {Text: " world", Start: 0.5, End: 1}},
	}}
	view, err := graph.Assemble(segments, "d1", graph.DefaultOptions())
	require.NoError(t, err)
	return view
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestViewWriter_WriteView(t *testing.T) {
	t.Run("should output the view as an MMIF-style JSON envelope", func(t *testing.T) {
		// Arrange
		var buffer bytes.Buffer
		writer := NewViewWriter(&buffer, zaptest.NewLogger(t))

		// Act
		err := writer.WriteView("run-1", "d1", assembledView(t))

		// Assert
		require.NoError(t, err)

		var parsed map[string]interface{}
		require.NoError(t, json.Unmarshal(buffer.Bytes(), &parsed))
		assert.Equal(t, "run-1", parsed["run_id"])
		assert.Equal(t, "d1", parsed["source_document"])
		assert.Len(t, parsed["transcript_blake3"], 64)

		view := parsed["view"].(map[string]interface{})
		assert.Equal(t, "v_0", view["id"])
		annotations := view["annotations"].([]interface{})
		assert.Len(t, annotations, 11)

		first := annotations[0].(map[string]interface{})
		assert.Equal(t, string(annotation.TypeToken), first["@type"])
		props := first["properties"].(map[string]interface{})
		assert.Equal(t, "t_0", props["id"])
		assert.Equal(t, "hello", props["word"])

		contains := view["metadata"].(map[string]interface{})["contains"].(map[string]interface{})
		tf := contains[string(annotation.TypeTimeFrame)].(map[string]interface{})
		assert.Equal(t, "milliseconds", tf["timeUnit"])
		assert.Equal(t, "d1", tf["document"])
	})

	t.Run("should produce identical bytes for identical runs", func(t *testing.T) {
		var first, second bytes.Buffer

		require.NoError(t, NewViewWriter(&first, nil).WriteView("run", "d1", assembledView(t)))
		require.NoError(t, NewViewWriter(&second, nil).WriteView("run", "d1", assembledView(t)))

		assert.Equal(t, first.String(), second.String())
	})

	t.Run("should reject a view without a text document", func(t *testing.T) {
		var buffer bytes.Buffer
		writer := NewViewWriter(&buffer, zaptest.NewLogger(t))

		err := writer.WriteView("run", "d1", annotation.NewView("v_0"))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid view")
		assert.Empty(t, buffer.String())
	})

	t.Run("should reject a nil view", func(t *testing.T) {
		writer := NewViewWriter(&bytes.Buffer{}, zaptest.NewLogger(t))

		assert.Error(t, writer.WriteView("run", "d1", nil))
	})

	t.Run("should surface write failures", func(t *testing.T) {
		writer := NewViewWriter(failingWriter{}, zaptest.NewLogger(t))

		err := writer.WriteView("run", "d1", assembledView(t))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write JSON output")
	})
}

func TestReadEnvelope(t *testing.T) {
	t.Run("should decode what WriteView wrote", func(t *testing.T) {
		// Arrange
		view := assembledView(t)
		expected, err := NewEnvelope("run-9", "d1", view)
		require.NoError(t, err)
		var buffer bytes.Buffer
		require.NoError(t, NewViewWriter(&buffer, nil).WriteView("run-9", "d1", view))

		// Act
		decoded, err := ReadEnvelope(&buffer)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, expected, decoded)
		assert.NoError(t, VerifyTranscript(decoded))
	})

	t.Run("should detect a tampered transcript", func(t *testing.T) {
		var buffer bytes.Buffer
		require.NoError(t, NewViewWriter(&buffer, nil).WriteView("run", "d1", assembledView(t)))
		// the sentence carries the same text; the document comes last
		written := buffer.String()
		at := strings.LastIndex(written, `"text": "hello world"`)
		require.True(t, at >= 0)
		tampered := written[:at] + `"text": "hello there"` + written[at+len(`"text": "hello world"`):]

		decoded, err := ReadEnvelope(strings.NewReader(tampered))
		require.NoError(t, err)

		assert.Error(t, VerifyTranscript(decoded))
	})

	t.Run("should reject unknown annotation types", func(t *testing.T) {
		input := `{"view":{"id":"v_0","annotations":[{"@type":"http://example.com/X","properties":{}}]}}`

		_, err := ReadEnvelope(strings.NewReader(input))

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown annotation type")
	})

	t.Run("should reject malformed JSON", func(t *testing.T) {
		_, err := ReadEnvelope(strings.NewReader(`{"view":`))

		assert.Error(t, err)
	})
}

func TestViewWriter_Close(t *testing.T) {
	writer := NewViewWriter(&bytes.Buffer{}, zaptest.NewLogger(t))

	assert.NoError(t, writer.Close())
}
