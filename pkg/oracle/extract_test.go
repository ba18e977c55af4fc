package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	t.Run("fenced block preferred", func(t *testing.T) {
		content := "Here you go:\n```json\n{\"next_part\": \"Yes\"}\n```\nLet me know if you need more."
		span, err := ExtractJSON(content)
		require.NoError(t, err)
		assert.Equal(t, `{"next_part": "Yes"}`, span)
	})

	t.Run("fenced block wins over surrounding braces", func(t *testing.T) {
		content := "{not json} ```json\n{\"a\":\"b\"}\n``` {also not json}"
		span, err := ExtractJSON(content)
		require.NoError(t, err)
		assert.Equal(t, `{"a":"b"}`, span)
	})

	t.Run("brace span with surrounding prose", func(t *testing.T) {
		content := `Sure! Here is the JSON: {"series_status":"Ended","next_season":"No","expected_on":"N/A"}`
		span, err := ExtractJSON(content)
		require.NoError(t, err)
		assert.Equal(t, `{"series_status":"Ended","next_season":"No","expected_on":"N/A"}`, span)
	})

	t.Run("unterminated fence falls back to brace span", func(t *testing.T) {
		content := "```json\n{\"a\":\"b\"}"
		span, err := ExtractJSON(content)
		require.NoError(t, err)
		assert.Equal(t, `{"a":"b"}`, span)
	})

	t.Run("no json span", func(t *testing.T) {
		_, err := ExtractJSON("I could not find any information about that title.")
		assert.ErrorIs(t, err, ErrMalformedOutput)
	})

	t.Run("closing brace before opening", func(t *testing.T) {
		_, err := ExtractJSON("} nothing here {")
		assert.ErrorIs(t, err, ErrMalformedOutput)
	})
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"Ended", "Completed"},
		{"Completed", "Completed"},
		{"The series is complete", "Completed"},
		{"FINISHED", "Completed"},
		{"Final season aired", "Completed"},
		{"Ongoing", "On Going"},
		{"Returning Series", "On Going"},
		{"", "On Going"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.status))
		})
	}
}
