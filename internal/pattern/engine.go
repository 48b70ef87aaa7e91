package pattern

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ostrander/smithy/internal/apperr"
	"github.com/ostrander/smithy/internal/embedding"
	"github.com/ostrander/smithy/internal/models"
	"github.com/ostrander/smithy/internal/storage"
)

// Result bounds for k-nearest-neighbor queries.
const (
	DefaultSearchResults  = 5
	DefaultSimilarResults = 3
	MaxResults            = 50
)

// Match is one ranked search hit.
type Match struct {
	Document models.PatternDocument
	Score    float64
}

// Engine owns the pattern corpus, its persisted index, and the embedding
// backend. Reindexing is a full rebuild; the corpus is small (tens of
// documents), so queries rank every stored vector in memory.
type Engine struct {
	corpus   *storage.Corpus
	store    *Store
	embedder embedding.Embedder
	logger   *slog.Logger

	mu sync.Mutex // serializes reindex
}

// NewEngine creates a pattern engine over the given corpus and store.
func NewEngine(corpus *storage.Corpus, store *Store, embedder embedding.Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{corpus: corpus, store: store, embedder: embedder, logger: logger}
}

// Index rebuilds the document set from the corpus directory and replaces
// the stored index wholesale. Embeddings of documents whose source is
// unchanged are reused unless force is set. Returns the indexed count.
func (e *Engine) Index(ctx context.Context, force bool) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	docs, skipped, err := loadCorpus(e.corpus)
	if err != nil {
		return 0, err
	}
	if skipped > 0 {
		e.logger.Warn("skipped unparseable snippets", slog.Int("count", skipped))
	}

	// Reuse stored vectors keyed by (name, source hash) on a non-forced run.
	cached := map[string][]float32{}
	if !force {
		existing, err := e.store.All()
		if err != nil {
			return 0, err
		}
		for _, d := range existing {
			if len(d.Embedding) > 0 {
				cached[d.Name+"\x00"+d.SourceHash] = d.Embedding
			}
		}
	}

	var pendingIdx []int
	var pendingTexts []string
	for i := range docs {
		if vec, ok := cached[docs[i].Name+"\x00"+docs[i].SourceHash]; ok {
			docs[i].Embedding = vec
			continue
		}
		pendingIdx = append(pendingIdx, i)
		pendingTexts = append(pendingTexts, documentText(docs[i]))
	}

	if len(pendingTexts) > 0 {
		vecs, err := e.embedder.EmbedBatch(ctx, pendingTexts)
		if err != nil {
			return 0, err
		}
		for j, i := range pendingIdx {
			docs[i].Embedding = vecs[j]
		}
	}

	if err := e.store.Replace(docs); err != nil {
		return 0, err
	}
	e.logger.Info("pattern index rebuilt",
		slog.Int("documents", len(docs)),
		slog.Int("embedded", len(pendingTexts)),
		slog.Bool("force", force))
	return len(docs), nil
}

// Search embeds the query and returns the top-k documents by cosine
// similarity, optionally restricted to a category. Ties are broken by
// insertion order.
func (e *Engine) Search(ctx context.Context, query string, k int, category string) ([]Match, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrInvalid)
	}
	k = clampK(k, DefaultSearchResults)

	qvec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	docs, err := e.store.All()
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(docs))
	for _, d := range docs {
		if category != "" && d.Category != category {
			continue
		}
		matches = append(matches, Match{Document: d, Score: embedding.Cosine(qvec, d.Embedding)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Document.Position < matches[j].Document.Position
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// FindSimilar searches with a component-shaped query built from a
// description and optional category.
func (e *Engine) FindSimilar(ctx context.Context, description, category string, k int) ([]Match, error) {
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", apperr.ErrInvalid)
	}
	query := description
	if category != "" {
		query += " | category: " + category
	}
	return e.Search(ctx, query, clampK(k, DefaultSimilarResults), category)
}

// GetByName returns a single indexed document.
func (e *Engine) GetByName(name string) (*models.PatternDocument, error) {
	doc, err := e.store.GetByName(name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pattern: get %s: %w", name, err)
	}
	return doc, nil
}

// Stats reports the index size and whether embeddings are present.
func (e *Engine) Stats() (models.PatternStats, error) {
	docs, err := e.store.All()
	if err != nil {
		return models.PatternStats{}, err
	}
	present := len(docs) > 0
	for _, d := range docs {
		if len(d.Embedding) == 0 {
			present = false
			break
		}
	}
	return models.PatternStats{
		TotalDocuments:   len(docs),
		EmbeddingPresent: present,
		Platform:         models.DefaultPlatform,
	}, nil
}

func clampK(k, def int) int {
	if k <= 0 {
		return def
	}
	if k > MaxResults {
		return MaxResults
	}
	return k
}
