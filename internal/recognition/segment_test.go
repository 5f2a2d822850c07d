package recognition

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment_Validate(t *testing.T) {
	tests := []struct {
		name          string
		segment       Segment
		expectedValid bool
		expectedWord  int
		expectedError string
	}{
		{
			name: "valid segment",
			segment: Segment{
				Text: " hello world", Start: 0, End: 1,
				Words: []Word{{" hello", 0, 0.5}, {" world", 0.5, 1}},
			},
			expectedValid: true,
		},
		{
			name:          "empty word list",
			segment:       Segment{Text: " silence", Start: 0, End: 1},
			expectedWord:  -1,
			expectedError: "word list cannot be empty",
		},
		{
			name: "inverted word timestamps",
			segment: Segment{
				Text: " hello", Start: 0, End: 1,
				Words: []Word{{" hello", 0.8, 0.2}},
			},
			expectedWord:  0,
			expectedError: "end must not precede start",
		},
		{
			name: "negative word start",
			segment: Segment{
				Text: " hello", Start: 0, End: 1,
				Words: []Word{{" hello", -0.1, 0.2}},
			},
			expectedWord:  0,
			expectedError: "start cannot be negative",
		},
		{
			name: "inverted segment timestamps",
			segment: Segment{
				Text: " hello", Start: 2, End: 1,
				Words: []Word{{" hello", 1, 2}},
			},
			expectedWord:  -1,
			expectedError: "end must not precede start",
		},
		{
			name: "non-finite timestamp",
			segment: Segment{
				Text: " hello", Start: 0, End: 1,
				Words: []Word{{" hello", math.NaN(), 1}},
			},
			expectedWord:  0,
			expectedError: "timestamps must be finite",
		},
		{
			name: "segment end beyond the millisecond range",
			segment: Segment{
				Text: " hello", Start: 0, End: 1e17,
				Words: []Word{{" hello", 0, 1}},
			},
			expectedWord:  -1,
			expectedError: "timestamp exceeds the millisecond range",
		},
		{
			name: "word end beyond the millisecond range",
			segment: Segment{
				Text: " hello", Start: 0, End: 1,
				Words: []Word{{" hello", 0, MaxTimestampSeconds}},
			},
			expectedWord:  0,
			expectedError: "timestamp exceeds the millisecond range",
		},
		{
			name: "words out of order",
			segment: Segment{
				Text: " a b", Start: 0, End: 2,
				Words: []Word{{" a", 1, 2}, {" b", 0, 1}},
			},
			expectedWord:  1,
			expectedError: "words must be time-ordered",
		},
		{
			name: "word that is only a separator",
			segment: Segment{
				Text: " a", Start: 0, End: 2,
				Words: []Word{{" a", 0, 1}, {" ", 1, 2}},
			},
			expectedWord:  1,
			expectedError: "word text cannot be empty",
		},
		{
			name: "zero-length word",
			segment: Segment{
				Text: " a", Start: 0, End: 1,
				Words: []Word{{" a", 0.5, 0.5}},
			},
			expectedValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := tt.segment.Validate(3, DefaultSeparator)

			// Assert
			if tt.expectedValid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSegment))
			assert.Contains(t, err.Error(), tt.expectedError)

			var malformed *MalformedSegmentError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, 3, malformed.SegmentIndex)
			assert.Equal(t, tt.expectedWord, malformed.WordIndex)
		})
	}
}

func TestStripSeparator(t *testing.T) {
	assert.Equal(t, "hello", StripSeparator(" hello", " "))
	assert.Equal(t, "hello", StripSeparator("hello", " "))
	assert.Equal(t, " hello", StripSeparator("  hello", " "))
	assert.Equal(t, " hello", StripSeparator(" hello", ""))
}

func TestValidateSegments(t *testing.T) {
	t.Run("should report the first malformed segment", func(t *testing.T) {
		// Arrange
		segments := []Segment{
			{Text: " ok", Start: 0, End: 1, Words: []Word{{" ok", 0, 1}}},
			{Text: " empty", Start: 1, End: 2},
			{Text: " also empty", Start: 2, End: 3},
		}

		// Act
		err := ValidateSegments(segments, DefaultSeparator)

		// Assert
		var malformed *MalformedSegmentError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, 1, malformed.SegmentIndex)
	})

	t.Run("should accept an empty sequence", func(t *testing.T) {
		assert.NoError(t, ValidateSegments(nil, DefaultSeparator))
	})
}

func TestCountWords(t *testing.T) {
	segments := []Segment{
		{Words: []Word{{" a", 0, 1}, {" b", 1, 2}}},
		{Words: []Word{{" c", 2, 3}}},
	}

	assert.Equal(t, 3, CountWords(segments))
	assert.Equal(t, 0, CountWords(nil))
}
