package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateConversation starts a new thread for a user.
func (s *Store) CreateConversation(ctx context.Context, userID, title string, seasonID *string) (*Conversation, error) {
	conv := Conversation{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    title,
		SeasonID: seasonID,
	}
	if err := s.db.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}
	return &conv, nil
}

// GetConversation fetches a thread without its messages.
func (s *Store) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	var conv Conversation
	if err := s.db.WithContext(ctx).First(&conv, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("getting conversation %s: %w", id, translate(err))
	}
	return &conv, nil
}

// ListConversations returns a user's threads, most recently updated first.
func (s *Store) ListConversations(ctx context.Context, userID string, limit int) ([]Conversation, error) {
	q := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var convs []Conversation
	if err := q.Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	return convs, nil
}

// AppendMessage adds a message to a thread and touches the thread's
// updated_at.
func (s *Store) AppendMessage(ctx context.Context, msg ConversationMessage) (*ConversationMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	// Best-effort bump; message write already succeeded.
	s.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ?", msg.ConversationID).
		Update("updated_at", msg.CreatedAt)

	return &msg, nil
}

// ListMessages returns a thread's messages oldest first.
func (s *Store) ListMessages(ctx context.Context, conversationID string, limit int) ([]ConversationMessage, error) {
	q := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var msgs []ConversationMessage
	if err := q.Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	return msgs, nil
}

// DeleteConversation removes a thread; messages cascade.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	// Explicit child delete keeps sqlite (no FK enforcement by default)
	// consistent with the hosted database's cascade.
	if err := s.db.WithContext(ctx).Where("conversation_id = ?", id).Delete(&ConversationMessage{}).Error; err != nil {
		return fmt.Errorf("deleting messages for %s: %w", id, err)
	}
	res := s.db.WithContext(ctx).Delete(&Conversation{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting conversation %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
