package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/pdfcorpus/ai/mock"
	"github.com/poiesic/pdfcorpus/chunking"
	"github.com/poiesic/pdfcorpus/config"
	"github.com/poiesic/pdfcorpus/core"
	"github.com/poiesic/pdfcorpus/embedding"
	"github.com/poiesic/pdfcorpus/extract"
	"github.com/poiesic/pdfcorpus/lexical"
	"github.com/poiesic/pdfcorpus/metadata"
	"github.com/poiesic/pdfcorpus/storage"
	"github.com/poiesic/pdfcorpus/storage/badger"
	"github.com/poiesic/pdfcorpus/vectorindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedClock = func() time.Time {
	return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
}

func words(tag string, n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("%s%d", tag, i)
	}
	return strings.Join(w, " ")
}

// fakeExtractor serves page text keyed by file base name.
type fakeExtractor struct {
	pages map[string][]string
	err   error
}

func (f *fakeExtractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	pages, ok := f.pages[filepath.Base(path)]
	if !ok {
		return nil, extract.ErrUnreadablePDF
	}
	return pages, nil
}

type testEnv struct {
	cfg       *config.Config
	dir       string
	extractor *fakeExtractor
	minilm    *mock.MockEmbedder
	mpnet     *mock.MockEmbedder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		Chunks:     filepath.Join(dir, "chunks"),
		Embeddings: filepath.Join(dir, "embeddings"),
		Vectors:    filepath.Join(dir, "vectors"),
		BM25:       filepath.Join(dir, "bm25"),
		Metadata:   filepath.Join(dir, "metadata"),
		Results:    filepath.Join(dir, "results"),
	}
	require.NoError(t, cfg.EnsureDirs())

	return &testEnv{
		cfg:       cfg,
		dir:       dir,
		extractor: &fakeExtractor{pages: map[string][]string{}},
		minilm:    mock.NewMockEmbedderWithDim(4),
		mpnet:     mock.NewMockEmbedderWithDim(6),
	}
}

// addPDF writes a file whose bytes are unique to name and registers its pages.
func (e *testEnv) addPDF(t *testing.T, name string, pages ...string) string {
	t.Helper()
	path := filepath.Join(e.dir, "inbox", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 "+name), 0o644))
	e.extractor.pages[name] = pages
	return path
}

func (e *testEnv) models() []Model {
	return []Model{
		{Name: "minilm", ID: "sentence-transformers/all-MiniLM-L6-v2", Embedder: e.minilm},
		{Name: "mpnet", ID: "sentence-transformers/all-mpnet-base-v2", Embedder: e.mpnet},
	}
}

func (e *testEnv) pipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	p, err := NewPipeline(e.cfg, e.extractor, e.models(), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func (e *testEnv) ledger(t *testing.T) *metadata.Ledger {
	t.Helper()
	l, err := metadata.LoadLedger(e.cfg.LedgerFile(), nil)
	require.NoError(t, err)
	return l
}

func (e *testEnv) indexLen(t *testing.T, alias string) int {
	t.Helper()
	idx, err := vectorindex.Load(e.cfg.IndexFile(alias))
	require.NoError(t, err)
	return idx.Len()
}

func TestNewPipeline_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := NewPipeline(nil, env.extractor, env.models())
	assert.ErrorIs(t, err, ErrConfigRequired)

	_, err = NewPipeline(env.cfg, nil, env.models())
	assert.ErrorIs(t, err, ErrExtractorRequired)

	_, err = NewPipeline(env.cfg, env.extractor, nil)
	assert.ErrorIs(t, err, ErrModelsRequired)

	_, err = NewPipeline(env.cfg, env.extractor, []Model{{Name: "x", ID: "x"}})
	assert.ErrorIs(t, err, embedding.ErrEmbedderRequired)
}

func TestIngest_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "framework.pdf", words("a", 250), words("b", 250), words("c", 150))

	var batchSizes []int
	env.minilm.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batchSizes = append(batchSizes, len(texts))
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.GenerateDeterministicVector(text, 4)
		}
		return out, nil
	}

	catalog, backend, err := badger.NewMemoryCatalog()
	require.NoError(t, err)
	defer backend.Close()
	defer catalog.Close()

	p := env.pipeline(t, WithCatalog(catalog))
	res, err := p.Ingest(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.False(t, res.Skipped)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, 3, res.LexicalDocs)
	assert.Equal(t, []int{3}, batchSizes)
	assert.Equal(t, []State{
		StateStart, StateHashCheck, StateChunk,
		StateEmbed, StateEmbed, StateIndexUpdate, StateIndexUpdate,
		StateLexicalRebuild, StateMetadataWrite, StateQACheck, StateDone,
	}, res.Transitions)

	require.Len(t, res.Models, 2)
	assert.Equal(t, ModelResult{Name: "minilm", ID: "sentence-transformers/all-MiniLM-L6-v2", Vectors: 3, Dim: 4, IndexTotal: 3, IndexCreated: true}, res.Models[0])
	assert.Equal(t, 6, res.Models[1].Dim)

	chunks, err := chunking.ReadChunks(env.cfg.ChunksFile("framework"))
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{300, 300, 50}, []int{chunks[0].WordCount, chunks[1].WordCount, chunks[2].WordCount})

	vectors, err := embedding.ReadNPY(env.cfg.EmbeddingsFile("mpnet", "framework"))
	require.NoError(t, err)
	assert.Len(t, vectors, 3)
	assert.Len(t, vectors[0], 6)
	info, err := embedding.ReadInfo(env.cfg.EmbeddingInfoFile("minilm", "framework"))
	require.NoError(t, err)
	assert.Equal(t, 3, info.Chunks)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", info.Model)

	assert.Equal(t, 3, env.indexLen(t, "minilm"))
	assert.Equal(t, 3, env.indexLen(t, "mpnet"))

	corpus, err := lexical.ReadCorpus(env.cfg.Paths.BM25)
	require.NoError(t, err)
	assert.Equal(t, []string{"framework.pdf_1", "framework.pdf_2", "framework.pdf_3"}, corpus.IDs)

	records, err := metadata.ReadDocument(env.cfg.MetadataFile("framework"))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "sha256:"+res.Document.Hash, records[0].HashRef)
	assert.Equal(t, "2025-03-14", records[0].DateIndexed)
	assert.Equal(t, env.cfg.ModelIDs(), records[0].EmbeddingModels)

	entries := env.ledger(t).Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, core.LedgerEntry{Document: "framework.pdf", Hash: res.Document.Hash, DateIndexed: "2025-03-14"}, entries[0])

	doc, err := catalog.GetDocument(context.Background(), res.Document.Hash)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.ChunkCount)
	assert.Equal(t, 3, doc.PageCount)
	assert.Equal(t, []string{"minilm", "mpnet"}, doc.Models)
	chunkRecords, err := catalog.GetChunks(context.Background(), res.Document.Hash)
	require.NoError(t, err)
	require.Len(t, chunkRecords, 3)
	assert.Equal(t, core.IDFromContent(chunks[1].Text), chunkRecords[1].Fingerprint)
}

func TestIngest_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "framework.pdf", words("a", 400))
	p := env.pipeline(t)

	_, err := p.Ingest(context.Background(), path)
	require.NoError(t, err)
	indexBefore, err := os.ReadFile(env.cfg.IndexFile("minilm"))
	require.NoError(t, err)
	calls := env.minilm.CallCount()

	res, err := p.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, []State{StateStart, StateHashCheck, StateDone}, res.Transitions)
	assert.Equal(t, calls, env.minilm.CallCount())

	indexAfter, err := os.ReadFile(env.cfg.IndexFile("minilm"))
	require.NoError(t, err)
	assert.Equal(t, indexBefore, indexAfter)
	assert.Equal(t, 1, env.ledger(t).Len())
}

func TestIngest_SameContentDifferentName(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "original.pdf", words("a", 40))
	copyPath := filepath.Join(env.dir, "copy.pdf")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(copyPath, data, 0o644))

	p := env.pipeline(t)
	_, err = p.Ingest(context.Background(), path)
	require.NoError(t, err)

	res, err := p.Ingest(context.Background(), copyPath)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.NoFileExists(t, env.cfg.ChunksFile("copy"))
}

func TestIngest_SecondDocumentAppends(t *testing.T) {
	env := newTestEnv(t)
	first := env.addPDF(t, "a.pdf", words("a", 650))
	second := env.addPDF(t, "b.pdf", words("b", 100))
	p := env.pipeline(t)

	_, err := p.Ingest(context.Background(), first)
	require.NoError(t, err)
	res, err := p.Ingest(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Chunks)
	assert.Equal(t, 4, res.Models[0].IndexTotal)
	assert.False(t, res.Models[0].IndexCreated)
	assert.Equal(t, 4, res.LexicalDocs)
	assert.Equal(t, 4, env.indexLen(t, "mpnet"))
	assert.Equal(t, 2, env.ledger(t).Len())
}

func TestIngest_DimensionMismatch(t *testing.T) {
	env := newTestEnv(t)
	first := env.addPDF(t, "a.pdf", words("a", 50))
	second := env.addPDF(t, "b.pdf", words("b", 50))

	_, err := env.pipeline(t).Ingest(context.Background(), first)
	require.NoError(t, err)
	indexBefore, err := os.ReadFile(env.cfg.IndexFile("mpnet"))
	require.NoError(t, err)

	env.mpnet.Dim = 8
	res, err := env.pipeline(t).Ingest(context.Background(), second)
	require.Error(t, err)
	assert.ErrorIs(t, err, vectorindex.ErrDimensionMismatch)
	assert.Equal(t, StateFailed, res.State)

	state, ok := FailedState(err)
	require.True(t, ok)
	assert.Equal(t, StateIndexUpdate, state)

	indexAfter, err := os.ReadFile(env.cfg.IndexFile("mpnet"))
	require.NoError(t, err)
	assert.Equal(t, indexBefore, indexAfter)
	assert.False(t, env.ledger(t).Contains(res.Document.Hash))
	assert.Equal(t, 1, env.ledger(t).Len())
}

func TestIngest_EmbeddingCountMismatch(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "a.pdf", words("a", 700))
	env.mpnet.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0, 0, 0, 0, 0}}, nil
	}

	res, err := env.pipeline(t).Ingest(context.Background(), path)
	assert.ErrorIs(t, err, embedding.ErrEmbeddingMismatch)
	state, _ := FailedState(err)
	assert.Equal(t, StateEmbed, state)
	assert.Equal(t, StateFailed, res.State)
	assert.Zero(t, env.ledger(t).Len())
	assert.NoFileExists(t, env.cfg.IndexFile("minilm"))
}

func TestIngest_EmbedderFailureNotRetriedByDefault(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "a.pdf", words("a", 50))
	env.minilm.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("503 service unavailable")
	}

	_, err := env.pipeline(t).Ingest(context.Background(), path)
	require.Error(t, err)
	state, _ := FailedState(err)
	assert.Equal(t, StateEmbed, state)
	assert.Equal(t, 1, env.minilm.CallCount())
	assert.Zero(t, env.ledger(t).Len())
}

func TestIngest_EmbedderRetryWhenConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Embedding.MaxAttempts = 3
	env.cfg.Embedding.RetryBackoff = time.Millisecond
	path := env.addPDF(t, "a.pdf", words("a", 50))

	failures := 2
	env.minilm.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("503 service unavailable")
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = mock.GenerateDeterministicVector(texts[i], 4)
		}
		return out, nil
	}

	res, err := env.pipeline(t).Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 3, env.minilm.CallCount())
}

func TestIngest_LogsOneComponentPerLine(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "a.pdf", words("a", 50))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := env.pipeline(t, WithLogger(logger)).Ingest(context.Background(), path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	components := map[string]bool{}
	for _, line := range lines {
		assert.LessOrEqual(t, strings.Count(line, "component="), 1, line)
		if i := strings.Index(line, "component="); i >= 0 {
			components[strings.Fields(line[i:])[0]] = true
		}
	}
	assert.True(t, components["component=ingestion"])
	assert.True(t, components["component=lexical"])
}

func TestIngest_MissingFile(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.pipeline(t).Ingest(context.Background(), filepath.Join(env.dir, "missing.pdf"))
	assert.ErrorIs(t, err, core.ErrDocumentNotFound)
	state, _ := FailedState(err)
	assert.Equal(t, StateHashCheck, state)
	assert.Equal(t, []State{StateStart, StateHashCheck, StateFailed}, res.Transitions)
}

func TestIngest_ExtractorFailure(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "a.pdf", words("a", 50))
	env.extractor.err = fmt.Errorf("%w: broken xref", extract.ErrUnreadablePDF)

	_, err := env.pipeline(t).Ingest(context.Background(), path)
	assert.ErrorIs(t, err, extract.ErrUnreadablePDF)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StateChunk, stageErr.State)
	assert.Contains(t, err.Error(), "CHUNK")
	assert.NoFileExists(t, env.cfg.ChunksFile("a"))
}

func TestIngest_UnreadablePageLeavesLedgerUntouched(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "a.pdf", words("a", 50))
	extractor := extract.PageExtractorFunc(func(ctx context.Context, path string) ([]string, error) {
		return nil, fmt.Errorf("%w: %s: page 3: malformed content stream", extract.ErrUnreadablePDF, path)
	})

	p, err := NewPipeline(env.cfg, extractor, env.models(), WithClock(fixedClock))
	require.NoError(t, err)
	defer p.Release()

	res, err := p.Ingest(context.Background(), path)
	assert.ErrorIs(t, err, extract.ErrUnreadablePDF)
	state, ok := FailedState(err)
	require.True(t, ok)
	assert.Equal(t, StateChunk, state)
	assert.Equal(t, StateFailed, res.State)
	assert.Zero(t, env.ledger(t).Len())
	assert.NoFileExists(t, env.cfg.LedgerFile())
	assert.Zero(t, env.minilm.CallCount())
}

func TestIngest_SaveEmbeddingsDisabled(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "a.pdf", words("a", 50))

	_, err := env.pipeline(t, WithSaveEmbeddings(false)).Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.NoFileExists(t, env.cfg.EmbeddingsFile("minilm", "a"))
	assert.NoFileExists(t, env.cfg.EmbeddingInfoFile("minilm", "a"))
	assert.Equal(t, 1, env.indexLen(t, "minilm"))
}

func TestIngest_CustomChunkerAndGenerator(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "a.pdf", words("a", 45))
	chunker, err := chunking.NewChunker(chunking.WithChunkSize(10))
	require.NoError(t, err)

	p := env.pipeline(t, WithChunker(chunker), WithGeneratorOptions(embedding.WithBatchSize(2), embedding.WithPoolSize(3)))
	res, err := p.Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Chunks)
	assert.Equal(t, 5, env.indexLen(t, "minilm"))
}

func TestIngest_Cancelled(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "a.pdf", words("a", 50))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := env.pipeline(t).Ingest(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, res.State)
	assert.Zero(t, env.ledger(t).Len())
}

func TestIngest_CatalogFailureKeepsLedger(t *testing.T) {
	env := newTestEnv(t)
	path := env.addPDF(t, "a.pdf", words("a", 50))

	catalog, backend, err := badger.NewMemoryCatalog()
	require.NoError(t, err)
	require.NoError(t, backend.Close())
	defer catalog.Close()

	_, err = env.pipeline(t, WithCatalog(catalog)).Ingest(context.Background(), path)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	state, _ := FailedState(err)
	assert.Equal(t, StateQACheck, state)
	assert.Zero(t, env.ledger(t).Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "HASH_CHECK", StateHashCheck.String())
	assert.Equal(t, "LEXICAL_REBUILD", StateLexicalRebuild.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateQACheck.Terminal())
}
