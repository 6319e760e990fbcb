package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// Push subscriptions

// UpsertPushSubscription registers a push endpoint, replacing keys when
// the endpoint is already known.
func (s *Store) UpsertPushSubscription(ctx context.Context, sub PushSubscription) (*PushSubscription, error) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
		}).
		Create(&sub).Error
	if err != nil {
		return nil, fmt.Errorf("upserting push subscription: %w", err)
	}
	return &sub, nil
}

// DeletePushSubscription removes a push endpoint registration.
func (s *Store) DeletePushSubscription(ctx context.Context, endpoint string) error {
	res := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&PushSubscription{})
	if res.Error != nil {
		return fmt.Errorf("deleting push subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPushSubscriptions returns a user's registered endpoints.
func (s *Store) ListPushSubscriptions(ctx context.Context, userID string) ([]PushSubscription, error) {
	var subs []PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("listing push subscriptions: %w", err)
	}
	return subs, nil
}

// Partnerships

// SavePartnership stores an underwriting outcome for a user, updating
// any existing partnership row.
func (s *Store) SavePartnership(ctx context.Context, p Partnership) (*Partnership, error) {
	var existing Partnership
	err := s.db.WithContext(ctx).Where("user_id = ?", p.UserID).First(&existing).Error
	if err == nil {
		p.ID = existing.ID
		if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
			return nil, fmt.Errorf("updating partnership: %w", err)
		}
		return &p, nil
	}

	p.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("creating partnership: %w", err)
	}
	return &p, nil
}

// GetPartnership returns the partnership for a user.
func (s *Store) GetPartnership(ctx context.Context, userID string) (*Partnership, error) {
	var p Partnership
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, fmt.Errorf("getting partnership: %w", translate(err))
	}
	return &p, nil
}

// Seasons

// CreateSeason records a program cycle.
func (s *Store) CreateSeason(ctx context.Context, season Season) (*Season, error) {
	if season.ID == "" {
		season.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&season).Error; err != nil {
		return nil, fmt.Errorf("creating season: %w", err)
	}
	return &season, nil
}

// CurrentSeason returns the season containing now, or ErrNotFound.
func (s *Store) CurrentSeason(ctx context.Context) (*Season, error) {
	now := time.Now()
	var season Season
	err := s.db.WithContext(ctx).
		Where("starts_at <= ? AND ends_at >= ?", now, now).
		Order("starts_at DESC").
		First(&season).Error
	if err != nil {
		return nil, fmt.Errorf("getting current season: %w", translate(err))
	}
	return &season, nil
}

// ListSeasons returns all seasons, newest first.
func (s *Store) ListSeasons(ctx context.Context) ([]Season, error) {
	var seasons []Season
	if err := s.db.WithContext(ctx).Order("starts_at DESC").Find(&seasons).Error; err != nil {
		return nil, fmt.Errorf("listing seasons: %w", err)
	}
	return seasons, nil
}

// Audit

// AppendAudit writes one audit event. Callers treat this as
// fire-and-forget: failures are logged by the caller and swallowed.
func (s *Store) AppendAudit(ctx context.Context, userID, action, detail string) error {
	event := AuditEvent{
		ID:     uuid.NewString(),
		UserID: userID,
		Action: action,
		Detail: detail,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("appending audit event: %w", err)
	}
	return nil
}

// RecentAudit returns the latest audit events.
func (s *Store) RecentAudit(ctx context.Context, limit int) ([]AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []AuditEvent
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("listing audit events: %w", err)
	}
	return events, nil
}
