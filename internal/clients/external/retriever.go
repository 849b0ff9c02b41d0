package external

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/sagaforge/saga-api/internal/errors"
)

// EmbeddingModel is the embeddings model used for lore indexing and
// query vectors. It must match the model the lore table was built with.
const EmbeddingModel = oai.EmbeddingModelTextEmbedding3Small

const retrieverTimeout = 10 * time.Second

// Embedder turns text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder implements Embedder over the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client oai.Client
	model  string
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates an OpenAIEmbedder sharing the provider's
// option style.
func NewOpenAIEmbedder(apiKey string, opts ...OpenAIOption) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.InvalidArgument("api key cannot be empty")
	}

	cfg := &openAIConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := clientOptions(apiKey, cfg)
	return &OpenAIEmbedder{
		client: oai.NewClient(reqOpts...),
		model:  EmbeddingModel,
	}, nil
}

// Embed returns the embedding vector for one text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, oai.EmbeddingNewParams{
		Model: e.model,
		Input: oai.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "embedding request failed")
	}
	if len(resp.Data) == 0 {
		return nil, errors.Internal("embedding response was empty")
	}

	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return vec, nil
}

// PgRetriever implements Retriever over a pgvector lore_chunks table.
type PgRetriever struct {
	pool     *pgxpool.Pool
	embedder Embedder
}

var _ Retriever = (*PgRetriever)(nil)

// PgRetrieverConfig holds the PgRetriever dependencies.
type PgRetrieverConfig struct {
	Pool     *pgxpool.Pool
	Embedder Embedder
}

// Validate validates the PgRetrieverConfig.
func (cfg *PgRetrieverConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Pool == nil {
		return errors.InvalidArgument("pool cannot be nil")
	}
	if cfg.Embedder == nil {
		return errors.InvalidArgument("embedder cannot be nil")
	}
	return nil
}

// NewPgRetriever creates a PgRetriever.
func NewPgRetriever(cfg *PgRetrieverConfig) (*PgRetriever, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PgRetriever{pool: cfg.Pool, embedder: cfg.Embedder}, nil
}

// Query embeds the text and returns the topK nearest lore chunks by
// cosine distance.
func (r *PgRetriever) Query(ctx context.Context, text string, topK int) ([]LoreChunk, error) {
	if text == "" {
		return nil, errors.InvalidArgument("query text cannot be empty")
	}
	if topK < 1 {
		return nil, errors.InvalidArgumentf("topK must be positive, got %d", topK)
	}

	ctx, cancel := context.WithTimeout(ctx, retrieverTimeout)
	defer cancel()

	embedding, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	const q = `
		SELECT id, content, source,
		       embedding <=> $1 AS distance
		FROM   lore_chunks
		ORDER  BY distance
		LIMIT  $2`

	rows, err := r.pool.Query(ctx, q, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, errors.Wrap(err, "lore query failed")
	}

	chunks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (LoreChunk, error) {
		var c LoreChunk
		err := row.Scan(&c.ID, &c.Content, &c.Source, &c.Distance)
		return c, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan lore rows")
	}

	slog.DebugContext(ctx, "lore retrieved", "query_len", len(text), "hits", len(chunks))
	return chunks, nil
}

// IndexChunk upserts one lore chunk with a freshly computed embedding.
// Used by data import tooling rather than the request path.
func (r *PgRetriever) IndexChunk(ctx context.Context, chunk LoreChunk) error {
	if chunk.ID == "" {
		return errors.InvalidArgument("chunk id cannot be empty")
	}
	embedding, err := r.embedder.Embed(ctx, chunk.Content)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO lore_chunks (id, content, source, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
		    content   = EXCLUDED.content,
		    source    = EXCLUDED.source,
		    embedding = EXCLUDED.embedding`

	if _, err := r.pool.Exec(ctx, q, chunk.ID, chunk.Content, chunk.Source, pgvector.NewVector(embedding)); err != nil {
		return errors.Wrapf(err, "failed to index chunk %s", chunk.ID)
	}
	return nil
}
