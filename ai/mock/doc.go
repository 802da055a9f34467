// Package mock provides test double implementations of AI service interfaces.
//
// MockEmbedder implements ai.Embedder without any external service. By
// default it returns deterministic unit vectors derived from an FNV hash of
// the text, so repeated runs over the same chunks produce identical indexes.
//
// # Usage in Tests
//
//	embedder := mock.NewMockEmbedderWithDim(8)
//	vectors, err := embedder.EmbedTexts(ctx, []string{"a", "b"})
//
//	// Custom behavior injection
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("model unavailable")
//	}
//
//	// Check call counts
//	count := embedder.CallCount()
package mock
