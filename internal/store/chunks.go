package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChunkFilter narrows knowledge-chunk reads. Zero values mean "no filter".
type ChunkFilter struct {
	Category      string
	Pattern       string
	Temperament   string
	Difficulty    string
	MaxTimeCommit int
	EmergencyOnly bool
	Limit         int
}

func applyChunkFilter(q *gorm.DB, filter ChunkFilter) *gorm.DB {
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		q = q.Where("difficulty_level = ?", filter.Difficulty)
	}
	if filter.MaxTimeCommit > 0 {
		q = q.Where("time_commitment_max <= ?", filter.MaxTimeCommit)
	}
	if filter.EmergencyOnly {
		q = q.Where("emergency = ?", true)
	}
	// Array membership over the JSON-serialized columns. The quoted-value
	// LIKE works on both sqlite and postgres text columns.
	if filter.Pattern != "" {
		q = q.Where("applicable_patterns LIKE ?", `%"`+filter.Pattern+`"%`)
	}
	if filter.Temperament != "" {
		q = q.Where("temperament_match LIKE ?", `%"`+filter.Temperament+`"%`)
	}
	return q
}

// ListChunks returns chunks matching the filter, newest first.
func (s *Store) ListChunks(ctx context.Context, filter ChunkFilter) ([]KnowledgeChunk, error) {
	q := applyChunkFilter(s.db.WithContext(ctx).Model(&KnowledgeChunk{}), filter)

	q = q.Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var chunks []KnowledgeChunk
	if err := q.Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	return chunks, nil
}

// SearchChunkText returns chunks whose text or summary contains the
// query, under the same filter predicates as ListChunks.
func (s *Store) SearchChunkText(ctx context.Context, query string, filter ChunkFilter) ([]KnowledgeChunk, error) {
	q := applyChunkFilter(s.db.WithContext(ctx).Model(&KnowledgeChunk{}), filter)
	q = q.Where("chunk_text LIKE ? OR chunk_summary LIKE ?", "%"+query+"%", "%"+query+"%")

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var chunks []KnowledgeChunk
	if err := q.Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("searching chunk text: %w", err)
	}
	return chunks, nil
}

// GetChunk fetches one chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*KnowledgeChunk, error) {
	var chunk KnowledgeChunk
	if err := s.db.WithContext(ctx).First(&chunk, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("getting chunk %s: %w", id, translate(err))
	}
	return &chunk, nil
}

// chunkNamespace seeds deterministic chunk IDs.
var chunkNamespace = uuid.MustParse("6f1f647e-8c2e-4f6b-9a3d-2b0f5e7c41d9")

// ChunkID derives the ID for a (source_file, chunk_number) pair. The
// pair is the chunk's identity, so the same pair always maps to the
// same ID and a re-ingested chunk overwrites its vector-index document
// instead of adding a new one.
func ChunkID(sourceFile string, chunkNumber int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s#%d", sourceFile, chunkNumber))).String()
}

// UpsertChunks inserts a batch of chunks, updating rows that collide on
// (source_file, chunk_number). Missing IDs are derived from that pair,
// so the IDs on the passed chunks always match the persisted rows.
func (s *Store) UpsertChunks(ctx context.Context, chunks []KnowledgeChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	for i := range chunks {
		if chunks[i].ID == "" {
			chunks[i].ID = ChunkID(chunks[i].SourceFile, chunks[i].ChunkNumber)
		}
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_file"}, {Name: "chunk_number"}},
			UpdateAll: true,
		}).
		Create(&chunks).Error
	if err != nil {
		return 0, fmt.Errorf("upserting %d chunks: %w", len(chunks), err)
	}

	s.logger.Debug("chunks upserted", zap.Int("count", len(chunks)))
	return len(chunks), nil
}

// CountChunks returns the total chunk count.
func (s *Store) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&KnowledgeChunk{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// DeleteChunksBySource removes every chunk parsed from the given source
// file. Used when a source is re-ingested from scratch.
func (s *Store) DeleteChunksBySource(ctx context.Context, sourceFile string) (int64, error) {
	res := s.db.WithContext(ctx).Where("source_file = ?", sourceFile).Delete(&KnowledgeChunk{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting chunks for %s: %w", sourceFile, res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateChunkGlossary writes the glossary columns for one chunk.
func (s *Store) UpdateChunkGlossary(ctx context.Context, id string, simplified string, terms []string, levelBefore, levelAfter float64) error {
	res := s.db.WithContext(ctx).Model(&KnowledgeChunk{}).
		Where("id = ?", id).
		Select("simplified_text", "glossary_terms", "reading_level_before", "reading_level_after").
		Updates(KnowledgeChunk{
			SimplifiedText:     simplified,
			GlossaryTerms:      terms,
			ReadingLevelBefore: levelBefore,
			ReadingLevelAfter:  levelAfter,
		})
	if res.Error != nil {
		return fmt.Errorf("updating glossary for chunk %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
