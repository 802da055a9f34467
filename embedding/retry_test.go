package embedding

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/pdfcorpus/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyEmbedder fails the first `failures` calls.
func flakyEmbedder(failures int32, calls *atomic.Int32) *mock.MockEmbedder {
	emb := mock.NewMockEmbedder()
	emb.EmbedTextsFunc = func(ctx context.Context, in []string) ([][]float32, error) {
		if calls.Add(1) <= failures {
			return nil, errors.New("503 service unavailable")
		}
		out := make([][]float32, len(in))
		for i := range out {
			out[i] = []float32{1, 0}
		}
		return out, nil
	}
	return emb
}

func TestWithRetry_Invalid(t *testing.T) {
	_, err := NewGenerator(mock.NewMockEmbedder(), WithRetry(0, time.Millisecond))
	assert.ErrorIs(t, err, ErrInvalidRetry)
}

func TestGenerator_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	g, err := NewGenerator(flakyEmbedder(2, &calls), WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	defer g.Release()

	res, err := g.Generate(context.Background(), texts(4))
	require.NoError(t, err)
	assert.Len(t, res.Vectors, 4)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerator_RetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	g, err := NewGenerator(flakyEmbedder(5, &calls), WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	defer g.Release()

	_, err = g.Generate(context.Background(), texts(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerator_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	g, err := NewGenerator(flakyEmbedder(1, &calls))
	require.NoError(t, err)
	defer g.Release()

	_, err = g.Generate(context.Background(), texts(1))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerator_RetryStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	g, err := NewGenerator(flakyEmbedder(10, &calls), WithRetry(5, time.Hour))
	require.NoError(t, err)
	defer g.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = g.Generate(ctx, texts(1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())
}
