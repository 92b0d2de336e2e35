package swarm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_TaggedFenceWinsOverStrayBraces(t *testing.T) {
	text := "Here is the result:\n```json\n{\"a\": 1}\n```\nBy the way {\"a\": 2} was a draft."

	value, err := Extract(text)
	require.NoError(t, err)

	obj, ok := value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), obj["a"])
}

func TestExtract_UntaggedFenceWithTypeToken(t *testing.T) {
	text := "```data\n{\"a\": 1}\n```\nstray {\"a\": 2}"

	value, err := Extract(text)
	require.NoError(t, err)

	obj, ok := value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), obj["a"])
}

func TestExtract_FallsThroughBrokenFence(t *testing.T) {
	// The fenced candidate is not valid JSON, so the brace scan must win.
	text := "```json\nnot json at all\n```\nfinal answer: {\"entities\": []}"

	value, err := Extract(text)
	require.NoError(t, err)

	obj, ok := value.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, obj, "entities")
}

func TestExtract_BraceSpan(t *testing.T) {
	text := "The graph is {\"entities\": [{\"id\": \"p1\"}]} as requested."

	value, err := Extract(text)
	require.NoError(t, err)
	obj := value.(map[string]any)
	assert.Len(t, obj["entities"], 1)
}

func TestExtract_WholeTextArray(t *testing.T) {
	value, err := Extract("  [1, 2, 3]  ")
	require.NoError(t, err)

	arr, ok := value.([]any)
	require.True(t, ok)
	assert.Len(t, arr, 3)
}

func TestExtract_ScalarIsNotStructured(t *testing.T) {
	_, err := Extract("42")
	assert.Error(t, err)
}

func TestExtract_FailureCarriesSample(t *testing.T) {
	long := strings.Repeat("the model rambled on and on ", 40)

	_, err := Extract(long)
	require.Error(t, err)

	var exErr *ExtractionError
	require.True(t, errors.As(err, &exErr))
	assert.NotEmpty(t, exErr.Sample)
	assert.LessOrEqual(t, len(exErr.Sample), 250)
}

func TestExtractObject_RejectsArray(t *testing.T) {
	_, err := ExtractObject("[1, 2]")
	assert.Error(t, err)

	obj, err := ExtractObject("{\"k\": \"v\"}")
	require.NoError(t, err)
	assert.Equal(t, "v", obj["k"])
}
