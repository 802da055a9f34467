// Package gemini provides an ai.Embedder backed by Google Gemini embedding
// models such as text-embedding-004.
//
//	config := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderGemini),
//	    ai.WithToken(os.Getenv("GEMINI_API_KEY")),
//	    ai.WithEmbeddingModel("text-embedding-004"),
//	)
//	embedder, err := gemini.NewEmbedder(ctx, config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer embedder.(io.Closer).Close()
package gemini
