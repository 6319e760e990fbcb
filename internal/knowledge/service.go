// Package knowledge manages the protocol library: ingest of parsed
// protocol chunks and semantic search over them.
package knowledge

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/mindhouselabs/miod/internal/config"
	"github.com/mindhouselabs/miod/internal/store"
)

// Embedder produces embeddings via the hosted embed function.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Service owns the protocol library's relational rows and vector index.
type Service struct {
	store      *store.Store
	collection *chromem.Collection
	embedder   Embedder
	vectorSize int
	logger     *zap.Logger
}

// NewService opens the persistent vector index and binds it to the
// relational store.
func NewService(cfg config.KnowledgeConfig, st *store.Store, embedder Embedder, logger *zap.Logger) (*Service, error) {
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory %s: %w", cfg.Path, err)
	}

	db, err := chromem.NewPersistentDB(cfg.Path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector index: %w", err)
	}

	embedOne := func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := embedder.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		return vecs[0], nil
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embedOne)
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", cfg.Collection, err)
	}

	logger.Info("knowledge index opened",
		zap.String("path", cfg.Path),
		zap.String("collection", cfg.Collection),
		zap.Int("documents", collection.Count()))

	return &Service{
		store:      st,
		collection: collection,
		embedder:   embedder,
		vectorSize: cfg.VectorSize,
		logger:     logger,
	}, nil
}

// Search returns the best-matching protocol chunks for a query. Vector
// search is used when the index has documents and the embed function
// answers; otherwise it falls back to plain text matching against the
// relational rows.
func (s *Service) Search(ctx context.Context, query string, filter SearchFilter) ([]SearchResult, error) {
	k := filter.Limit
	if k <= 0 {
		k = 5
	}

	results, err := s.semanticSearch(ctx, query, k, filter)
	if err == nil {
		return results, nil
	}
	s.logger.Warn("semantic search unavailable, using text fallback",
		zap.String("query", query),
		zap.Error(err))

	return s.textSearch(ctx, query, k, filter)
}

func (s *Service) semanticSearch(ctx context.Context, query string, k int, filter SearchFilter) ([]SearchResult, error) {
	docCount := s.collection.Count()
	if docCount == 0 {
		return nil, fmt.Errorf("index is empty")
	}

	// Exact-match metadata constraints go to the index; array-valued
	// constraints are applied after.
	where := map[string]string{}
	if filter.Category != "" {
		where["category"] = filter.Category
	}
	if filter.EmergencyOnly {
		where["emergency"] = "true"
	}

	// Over-fetch so post-filtering still fills k.
	fetch := k * 4
	if fetch > docCount {
		fetch = docCount
	}

	hits, err := s.collection.Query(ctx, query, fetch, where, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	results := make([]SearchResult, 0, k)
	for _, hit := range hits {
		if !matchesArrayFilters(hit.Metadata, filter) {
			continue
		}
		results = append(results, SearchResult{
			ChunkID:    hit.ID,
			SourceFile: hit.Metadata["source_file"],
			Text:       hit.Content,
			Summary:    hit.Metadata["summary"],
			Category:   hit.Metadata["category"],
			Score:      float64(hit.Similarity),
			Source:     "semantic",
		})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

func matchesArrayFilters(meta map[string]string, filter SearchFilter) bool {
	if filter.Pattern != "" && !csvContains(meta["patterns"], filter.Pattern) {
		return false
	}
	if filter.Temperament != "" && !csvContains(meta["temperaments"], filter.Temperament) {
		return false
	}
	if filter.MaxTimeCommit > 0 {
		max, err := strconv.Atoi(meta["time_max"])
		if err != nil || max > filter.MaxTimeCommit {
			return false
		}
	}
	return true
}

func csvContains(csv, value string) bool {
	for _, item := range strings.Split(csv, ",") {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}

func (s *Service) textSearch(ctx context.Context, query string, k int, filter SearchFilter) ([]SearchResult, error) {
	chunks, err := s.store.SearchChunkText(ctx, query, store.ChunkFilter{
		Category:      filter.Category,
		Pattern:       filter.Pattern,
		Temperament:   filter.Temperament,
		MaxTimeCommit: filter.MaxTimeCommit,
		EmergencyOnly: filter.EmergencyOnly,
		Limit:         k,
	})
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	results := make([]SearchResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, SearchResult{
			ChunkID:    c.ID,
			SourceFile: c.SourceFile,
			Text:       c.ChunkText,
			Summary:    c.ChunkSummary,
			Category:   c.Category,
			Source:     "text",
		})
	}
	return results, nil
}
