package store

import (
	"time"
)

// KnowledgeChunk is one protocol chunk from the MIO knowledge base.
// Schema follows the hosted mio_knowledge_chunks table.
type KnowledgeChunk struct {
	ID           string `gorm:"primaryKey;type:uuid"`
	SourceFile   string `gorm:"not null;index:idx_chunk_source,unique,priority:1;type:varchar(255)"`
	FileNumber   int    `gorm:"index"`
	ChunkNumber  int    `gorm:"not null;index:idx_chunk_source,unique,priority:2"`
	ChunkText    string `gorm:"not null;type:text"`
	ChunkSummary string `gorm:"type:text"`
	Category     string `gorm:"index;type:varchar(64)"`

	ApplicablePatterns []string `gorm:"serializer:json"`
	TemperamentMatch   []string `gorm:"serializer:json"`
	StateCreated       []string `gorm:"serializer:json"`

	TimeCommitmentMin int
	TimeCommitmentMax int    `gorm:"index"`
	DifficultyLevel   string `gorm:"type:varchar(16)"`
	Emergency         bool   `gorm:"index"`
	TokensApprox      int

	// Glossary columns.
	SimplifiedText     string   `gorm:"type:text"`
	GlossaryTerms      []string `gorm:"serializer:json"`
	ReadingLevelBefore float64
	ReadingLevelAfter  float64
	LanguageVariant    string `gorm:"type:varchar(16)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (KnowledgeChunk) TableName() string { return "mio_knowledge_chunks" }

// Conversation is one coaching thread.
type Conversation struct {
	ID       string `gorm:"primaryKey;type:uuid"`
	UserID   string `gorm:"not null;index;type:varchar(64)"`
	Title    string `gorm:"type:varchar(255)"`
	SeasonID *string `gorm:"type:uuid;index"`

	Messages []ConversationMessage `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConversationID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Conversation) TableName() string { return "conversations" }

// ConversationMessage is one message in a thread, with its affect result.
type ConversationMessage struct {
	ID             string `gorm:"primaryKey;type:uuid"`
	ConversationID string `gorm:"not null;index;type:uuid"`
	Role           string `gorm:"not null;type:varchar(16)"` // user | coach
	Content        string `gorm:"not null;type:text"`
	Emotion        string `gorm:"type:varchar(32)"`
	Intensity      float64

	CreatedAt time.Time
}

func (ConversationMessage) TableName() string { return "conversation_messages" }

// Task is one assigned practice or action item.
type Task struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	UserID      string `gorm:"not null;index;type:varchar(64)"`
	SeasonID    *string `gorm:"type:uuid;index"`
	Title       string `gorm:"not null;type:varchar(255)"`
	ProtocolID  *string `gorm:"type:uuid"`
	DueAt       *time.Time
	CompletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Task) TableName() string { return "tasks" }

// Report is a generated coaching report.
type Report struct {
	ID         string `gorm:"primaryKey;type:uuid"`
	UserID     string `gorm:"not null;index;type:varchar(64)"`
	SeasonID   *string `gorm:"type:uuid;index"`
	Kind       string `gorm:"not null;type:varchar(32)"` // weekly | season | binder
	Title      string `gorm:"type:varchar(255)"`
	Body       string `gorm:"type:text"`
	StorageKey string `gorm:"type:varchar(512)"` // set when rendered to a document

	CreatedAt time.Time
}

func (Report) TableName() string { return "reports" }

// Assessment is one completed intake or progress assessment.
type Assessment struct {
	ID          string  `gorm:"primaryKey;type:uuid"`
	UserID      string  `gorm:"not null;index;type:varchar(64)"`
	Kind        string  `gorm:"not null;type:varchar(32)"` // intake | progress | underwriting
	Temperament string  `gorm:"type:varchar(16)"`
	Patterns    []string `gorm:"serializer:json"`
	Scores      map[string]float64 `gorm:"serializer:json"`

	CreatedAt time.Time
}

func (Assessment) TableName() string { return "assessments" }

// Document is an uploaded or generated file tracked against object storage.
type Document struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	UserID      string `gorm:"not null;index;type:varchar(64)"`
	Name        string `gorm:"not null;type:varchar(255)"`
	StorageKey  string `gorm:"not null;type:varchar(512)"`
	ContentType string `gorm:"type:varchar(128)"`
	Size        int64

	CreatedAt time.Time
}

func (Document) TableName() string { return "documents" }

// ShareLink grants time-limited access to a report or document.
type ShareLink struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	Token     string    `gorm:"not null;uniqueIndex;type:varchar(64)"`
	TargetKind string   `gorm:"not null;type:varchar(16)"` // report | document
	TargetID  string    `gorm:"not null;type:uuid"`
	ExpiresAt time.Time `gorm:"not null;index"`
	RevokedAt *time.Time

	CreatedAt time.Time
}

func (ShareLink) TableName() string { return "share_links" }

// PushSubscription is one browser push endpoint registration.
type PushSubscription struct {
	ID       string `gorm:"primaryKey;type:uuid"`
	UserID   string `gorm:"not null;index;type:varchar(64)"`
	Endpoint string `gorm:"not null;uniqueIndex;type:varchar(1024)"`
	P256dh   string `gorm:"type:varchar(255)"`
	Auth     string `gorm:"type:varchar(255)"`

	CreatedAt time.Time
}

func (PushSubscription) TableName() string { return "push_subscriptions" }

// Partnership is one underwritten partner relationship.
type Partnership struct {
	ID        string  `gorm:"primaryKey;type:uuid"`
	UserID    string  `gorm:"not null;index;type:varchar(64)"`
	Tier      string  `gorm:"not null;type:varchar(16)"`
	Composite float64
	Status    string `gorm:"not null;type:varchar(16)"` // active | pending | ended

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Partnership) TableName() string { return "partnerships" }

// Season is one coaching season (a program cycle).
type Season struct {
	ID       string    `gorm:"primaryKey;type:uuid"`
	Name     string    `gorm:"not null;type:varchar(128)"`
	StartsAt time.Time `gorm:"not null;index"`
	EndsAt   time.Time `gorm:"not null"`

	CreatedAt time.Time
}

func (Season) TableName() string { return "seasons" }

// AuditEvent is one append-only audit record.
type AuditEvent struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID string `gorm:"index;type:varchar(64)"`
	Action string `gorm:"not null;type:varchar(64)"`
	Detail string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"index"`
}

func (AuditEvent) TableName() string { return "audit_events" }
