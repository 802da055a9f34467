package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	m := NewMockEmbedderWithDim(16)
	ctx := context.Background()

	a, err := m.EmbedTexts(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)
	b, err := m.EmbedTexts(ctx, []string{"alpha", "beta"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a[0], a[1])
	assert.Len(t, a[0], 16)
	assert.Equal(t, 2, m.CallCount())
}

func TestMockEmbedder_UnitLength(t *testing.T) {
	v := GenerateDeterministicVector("some chunk text", DefaultDim)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockEmbedder_InjectedFunc(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("boom")
	}

	_, err := m.EmbedTexts(context.Background(), []string{"x"})
	require.Error(t, err)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	_, err = m.EmbedTexts(context.Background(), []string{"x"})
	require.NoError(t, err)
}
