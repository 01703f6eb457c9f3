package commentary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: " Energy"}, {Text: "\n"}}},
		}},
	}
	text, err := extractText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Energy", text)

	_, err = extractText(&genai.GenerateContentResponse{})
	assert.Error(t, err)
	_, err = extractText(nil)
	assert.Error(t, err)
}
