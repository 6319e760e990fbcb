// Package store provides gorm-backed persistence for the hosted
// relational schema. Uniqueness, foreign keys and cascades are enforced
// by the database engine; this layer is filters, writes and shaping.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mindhouselabs/miod/internal/config"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps the database handle.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to the configured database.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", cfg.Driver, err)
	}

	logger.Info("database connected", zap.String("driver", cfg.Driver))

	return &Store{db: db, logger: logger}, nil
}

// allModels lists every table this service touches, for migration and
// schema verification.
func allModels() []any {
	return []any{
		&KnowledgeChunk{},
		&Conversation{},
		&ConversationMessage{},
		&Task{},
		&Report{},
		&Assessment{},
		&Document{},
		&ShareLink{},
		&PushSubscription{},
		&Partnership{},
		&Season{},
		&AuditEvent{},
	}
}

// Migrate creates or updates the schema for all models.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	s.logger.Info("schema migrated", zap.Int("models", len(allModels())))
	return nil
}

// VerifySchema checks that every expected table and the knowledge-chunk
// glossary columns exist, returning a list of missing items.
func (s *Store) VerifySchema(ctx context.Context) ([]string, error) {
	migrator := s.db.WithContext(ctx).Migrator()

	var missing []string
	for _, model := range allModels() {
		if !migrator.HasTable(model) {
			stmt := &gorm.Statement{DB: s.db}
			if err := stmt.Parse(model); err != nil {
				return nil, fmt.Errorf("parsing model: %w", err)
			}
			missing = append(missing, "table:"+stmt.Schema.Table)
		}
	}

	glossaryColumns := []string{
		"simplified_text",
		"glossary_terms",
		"reading_level_before",
		"reading_level_after",
		"language_variant",
	}
	for _, col := range glossaryColumns {
		if !migrator.HasColumn(&KnowledgeChunk{}, col) {
			missing = append(missing, "column:mio_knowledge_chunks."+col)
		}
	}

	return missing, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting raw connection: %w", err)
	}
	return sqlDB.Close()
}

// translate converts gorm's not-found error into the package sentinel.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
