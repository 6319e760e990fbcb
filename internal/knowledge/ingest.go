package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/mindhouselabs/miod/internal/store"
)

const defaultBatchSize = 50

var difficultyLevels = map[string]bool{
	"":             true,
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

// LoadRecords reads an ingest file of parsed protocol chunks. The file
// holds a JSON array of records.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

func (s *Service) validateRecord(r Record) error {
	if r.SourceFile == "" {
		return fmt.Errorf("source_file is required")
	}
	if r.ChunkNumber < 1 {
		return fmt.Errorf("chunk_number must be >= 1, got %d", r.ChunkNumber)
	}
	if strings.TrimSpace(r.ChunkText) == "" {
		return fmt.Errorf("chunk_text is empty")
	}
	if !difficultyLevels[r.DifficultyLevel] {
		return fmt.Errorf("difficulty_level %q not in beginner/intermediate/advanced", r.DifficultyLevel)
	}
	if r.TimeCommitmentMin < 0 || r.TimeCommitmentMax < 0 {
		return fmt.Errorf("time commitment cannot be negative")
	}
	if r.TimeCommitmentMax > 0 && r.TimeCommitmentMin > r.TimeCommitmentMax {
		return fmt.Errorf("time_commitment_min %d exceeds max %d", r.TimeCommitmentMin, r.TimeCommitmentMax)
	}
	if len(r.Embedding) > 0 && len(r.Embedding) != s.vectorSize {
		return fmt.Errorf("embedding has %d dimensions, want %d", len(r.Embedding), s.vectorSize)
	}
	return nil
}

// Ingest validates records and writes them to the relational store and
// the vector index in batches. With dryRun only validation runs; the
// report still counts what would have been inserted.
func (s *Service) Ingest(ctx context.Context, records []Record, batchSize int, dryRun bool) (*IngestReport, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	report := &IngestReport{Total: len(records), DryRun: dryRun}
	valid := make([]Record, 0, len(records))
	for i, r := range records {
		if err := s.validateRecord(r); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, RecordError{
				Index:       i,
				SourceFile:  r.SourceFile,
				ChunkNumber: r.ChunkNumber,
				Reason:      err.Error(),
			})
			continue
		}
		valid = append(valid, r)
	}

	if dryRun {
		report.Inserted = len(valid)
		s.logger.Info("dry run complete",
			zap.Int("total", report.Total),
			zap.Int("valid", len(valid)),
			zap.Int("failed", report.Failed))
		return report, nil
	}

	for start := 0; start < len(valid); start += batchSize {
		end := start + batchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[start:end]
		report.Batches++

		inserted, indexed, err := s.ingestBatch(ctx, batch)
		if err != nil {
			return report, fmt.Errorf("batch %d: %w", report.Batches, err)
		}
		report.Inserted += inserted
		report.Indexed += indexed

		s.logger.Info("batch ingested",
			zap.Int("batch", report.Batches),
			zap.Int("inserted", inserted),
			zap.Int("indexed", indexed))
	}

	return report, nil
}

func (s *Service) ingestBatch(ctx context.Context, batch []Record) (inserted, indexed int, err error) {
	chunks := make([]store.KnowledgeChunk, len(batch))
	for i, r := range batch {
		chunks[i] = store.KnowledgeChunk{
			SourceFile:         r.SourceFile,
			FileNumber:         r.FileNumber,
			ChunkNumber:        r.ChunkNumber,
			ChunkText:          r.ChunkText,
			ChunkSummary:       r.ChunkSummary,
			Category:           r.Category,
			ApplicablePatterns: r.ApplicablePatterns,
			TemperamentMatch:   r.TemperamentMatch,
			StateCreated:       r.StateCreated,
			TimeCommitmentMin:  r.TimeCommitmentMin,
			TimeCommitmentMax:  r.TimeCommitmentMax,
			DifficultyLevel:    r.DifficultyLevel,
			Emergency:          r.Emergency,
			TokensApprox:       len(r.ChunkText) / 4,
		}
	}

	inserted, err = s.store.UpsertChunks(ctx, chunks)
	if err != nil {
		return 0, 0, err
	}

	embeddings, err := s.batchEmbeddings(ctx, batch)
	if err != nil {
		return inserted, 0, err
	}

	docs := make([]chromem.Document, len(batch))
	for i, r := range batch {
		docs[i] = chromem.Document{
			ID:        chunks[i].ID,
			Content:   r.ChunkText,
			Embedding: embeddings[i],
			Metadata: map[string]string{
				"source_file":  r.SourceFile,
				"category":     r.Category,
				"difficulty":   r.DifficultyLevel,
				"emergency":    strconv.FormatBool(r.Emergency),
				"patterns":     strings.Join(r.ApplicablePatterns, ","),
				"temperaments": strings.Join(r.TemperamentMatch, ","),
				"time_max":     strconv.Itoa(r.TimeCommitmentMax),
				"summary":      r.ChunkSummary,
			},
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return inserted, 0, fmt.Errorf("indexing: %w", err)
	}
	return inserted, len(docs), nil
}

// batchEmbeddings returns one vector per record, calling the hosted
// embed function for records without a precomputed one.
func (s *Service) batchEmbeddings(ctx context.Context, batch []Record) ([][]float32, error) {
	out := make([][]float32, len(batch))

	var missing []int
	var texts []string
	for i, r := range batch {
		if len(r.Embedding) > 0 {
			out[i] = r.Embedding
			continue
		}
		missing = append(missing, i)
		texts = append(texts, r.ChunkText)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(texts), err)
	}
	for j, i := range missing {
		out[i] = vecs[j]
	}
	return out, nil
}
