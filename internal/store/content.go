package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tasks

// CreateTask records a new task.
func (s *Store) CreateTask(ctx context.Context, task Task) (*Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &task, nil
}

// CompleteTask marks a task done.
func (s *Store) CompleteTask(ctx context.Context, id string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&Task{}).
		Where("id = ? AND completed_at IS NULL", id).
		Update("completed_at", &now)
	if res.Error != nil {
		return fmt.Errorf("completing task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTasks returns a user's tasks, open ones first, then by due date.
func (s *Store) ListTasks(ctx context.Context, userID string, openOnly bool) ([]Task, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if openOnly {
		q = q.Where("completed_at IS NULL")
	}

	var tasks []Task
	if err := q.Order("completed_at IS NOT NULL, due_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Reports

// CreateReport stores a generated report.
func (s *Store) CreateReport(ctx context.Context, report Report) (*Report, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, fmt.Errorf("creating report: %w", err)
	}
	return &report, nil
}

// GetReport fetches one report.
func (s *Store) GetReport(ctx context.Context, id string) (*Report, error) {
	var report Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("getting report %s: %w", id, translate(err))
	}
	return &report, nil
}

// ListReports returns a user's reports, newest first.
func (s *Store) ListReports(ctx context.Context, userID string, limit int) ([]Report, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var reports []Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return reports, nil
}

// Assessments

// CreateAssessment stores a completed assessment.
func (s *Store) CreateAssessment(ctx context.Context, a Assessment) (*Assessment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, fmt.Errorf("creating assessment: %w", err)
	}
	return &a, nil
}

// LatestAssessment returns a user's most recent assessment of the given
// kind.
func (s *Store) LatestAssessment(ctx context.Context, userID, kind string) (*Assessment, error) {
	var a Assessment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("created_at DESC").
		First(&a).Error
	if err != nil {
		return nil, fmt.Errorf("getting latest %s assessment: %w", kind, translate(err))
	}
	return &a, nil
}

// Documents

// CreateDocument records an uploaded file's metadata.
func (s *Store) CreateDocument(ctx context.Context, doc Document) (*Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	return &doc, nil
}

// GetDocument fetches document metadata.
func (s *Store) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, translate(err))
	}
	return &doc, nil
}

// DeleteDocument removes document metadata. The object itself is
// deleted by the storage layer.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&Document{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting document %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Share links

// CreateShareLink issues a token for a report or document, valid for ttl.
func (s *Store) CreateShareLink(ctx context.Context, targetKind, targetID string, ttl time.Duration) (*ShareLink, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating share token: %w", err)
	}

	link := ShareLink{
		ID:         uuid.NewString(),
		Token:      hex.EncodeToString(buf),
		TargetKind: targetKind,
		TargetID:   targetID,
		ExpiresAt:  time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		return nil, fmt.Errorf("creating share link: %w", err)
	}
	return &link, nil
}

// ResolveShareLink returns the link for a token if it is still valid.
func (s *Store) ResolveShareLink(ctx context.Context, token string) (*ShareLink, error) {
	var link ShareLink
	err := s.db.WithContext(ctx).
		Where("token = ? AND revoked_at IS NULL AND expires_at > ?", token, time.Now()).
		First(&link).Error
	if err != nil {
		return nil, fmt.Errorf("resolving share link: %w", translate(err))
	}
	return &link, nil
}

// RevokeShareLink invalidates a link immediately.
func (s *Store) RevokeShareLink(ctx context.Context, id string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&ShareLink{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", &now)
	if res.Error != nil {
		return fmt.Errorf("revoking share link %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
