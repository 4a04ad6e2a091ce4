package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/samkorsel/carpool-backend/internal/models"
)

// ConversationRepository handles database operations for conversations and
// their participants
type ConversationRepository struct {
	db DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// uniqueViolation is the PostgreSQL error code for unique constraint hits
const uniqueViolation = "23505"

// FindByRoutePair returns the id of the conversation for a route and an
// unordered participant pair, or ErrConversationNotFound.
func (r *ConversationRepository) FindByRoutePair(routeID, userA, userB string) (string, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM conversations
		WHERE route_id = $1 AND pair_key = $2`,
		routeID, models.PairKey(userA, userB),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrConversationNotFound
		}
		return "", fmt.Errorf("failed to find conversation: %w", err)
	}

	return id, nil
}

// GetOrCreate returns the conversation for (routeID, {creator, other}),
// creating it if absent. Creation enrolls both users (the creator flagged as
// admin) and seeds the welcome message, all in one transaction. Concurrent
// callers converge on a single row: the unique index on (route_id, pair_key)
// makes the first writer win and later callers re-read its conversation.
// The returned bool reports whether a new conversation was created.
func (r *ConversationRepository) GetOrCreate(routeID, creator, other, title, welcome string) (string, bool, error) {
	if id, err := r.FindByRoutePair(routeID, creator, other); err == nil {
		return id, false, nil
	} else if !errors.Is(err, ErrConversationNotFound) {
		return "", false, err
	}

	id, err := r.create(routeID, creator, other, title, welcome)
	if err == nil {
		return id, true, nil
	}

	// Lost the race: someone else created the conversation first
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		id, findErr := r.FindByRoutePair(routeID, creator, other)
		if findErr != nil {
			return "", false, findErr
		}
		return id, false, nil
	}

	return "", false, err
}

func (r *ConversationRepository) create(routeID, creator, other, title, welcome string) (string, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	conv := &models.Conversation{
		ID:        uuid.New().String(),
		Title:     title,
		RouteID:   routeID,
		PairKey:   models.PairKey(creator, other),
		CreatedBy: creator,
	}
	if _, err := tx.Exec(`
		INSERT INTO conversations (id, title, route_id, pair_key, created_by)
		VALUES ($1, $2, $3, $4, $5)`,
		conv.ID, conv.Title, conv.RouteID, conv.PairKey, conv.CreatedBy); err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO conversation_participants (conversation_id, user_id, is_admin)
		VALUES ($1, $2, TRUE), ($1, $3, FALSE)`,
		conv.ID, creator, other); err != nil {
		return "", fmt.Errorf("failed to enroll participants: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO messages (id, conversation_id, sender_id, content)
		VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), conv.ID, creator, welcome); err != nil {
		return "", fmt.Errorf("failed to seed welcome message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit conversation: %w", err)
	}

	return conv.ID, nil
}

// HasParticipant reports whether a user is enrolled in a conversation
func (r *ConversationRepository) HasParticipant(conversationID, userID string) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM conversation_participants
		WHERE conversation_id = $1 AND user_id = $2`,
		conversationID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}

	return count > 0, nil
}

// ListByUser returns the conversation list for a user, most recently
// active first. The displayed participant name is the other party's.
func (r *ConversationRepository) ListByUser(userID string) ([]models.ConversationSummary, error) {
	query := `
		SELECT c.id AS conversation_id,
		       c.title,
		       c.route_id,
		       (SELECT u.username
		        FROM conversation_participants cp2
		        JOIN users u ON u.id = cp2.user_id
		        WHERE cp2.conversation_id = c.id AND cp2.user_id != $1
		        LIMIT 1) AS participant_name,
		       (SELECT m.content FROM messages m
		        WHERE m.conversation_id = c.id
		        ORDER BY m.sent_at DESC LIMIT 1) AS last_message,
		       (SELECT m.sent_at FROM messages m
		        WHERE m.conversation_id = c.id
		        ORDER BY m.sent_at DESC LIMIT 1) AS last_updated
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = $1
		ORDER BY last_updated DESC NULLS LAST
	`

	summaries := []models.ConversationSummary{}
	if err := r.db.Select(&summaries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return summaries, nil
}

// GetDetail returns a conversation with its full message history, provided
// the user participates in it. Returns ErrForbidden for non-participants.
func (r *ConversationRepository) GetDetail(conversationID, userID string) (*models.ConversationDetail, error) {
	ok, err := r.HasParticipant(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	detail := &models.ConversationDetail{ConversationID: conversationID}
	var participantName sql.NullString
	err = r.db.QueryRow(`
		SELECT c.title, c.route_id,
		       (SELECT u.username
		        FROM conversation_participants cp2
		        JOIN users u ON u.id = cp2.user_id
		        WHERE cp2.conversation_id = c.id AND cp2.user_id != $2
		        LIMIT 1)
		FROM conversations c
		WHERE c.id = $1`,
		conversationID, userID,
	).Scan(&detail.Title, &detail.RouteID, &participantName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if participantName.Valid {
		detail.ParticipantName = participantName.String
	}

	messages := []models.Message{}
	err = r.db.Select(&messages, `
		SELECT m.id, m.conversation_id, m.sender_id, u.username AS sender_name,
		       m.content, m.sent_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.sent_at ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	detail.Messages = messages

	return detail, nil
}

// UnreadCount counts messages from other users newer than the user's last
// seen time per conversation (falling back to the join time)
func (r *ConversationRepository) UnreadCount(userID string) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM messages m
		JOIN conversation_participants cp ON cp.conversation_id = m.conversation_id
		WHERE cp.user_id = $1
		  AND m.sender_id != $1
		  AND m.sent_at > COALESCE(cp.last_seen_at, cp.joined_at)`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}

	return count, nil
}

// TouchLastSeen records that the user has viewed the conversation now
func (r *ConversationRepository) TouchLastSeen(conversationID, userID string) error {
	_, err := r.db.Exec(`
		UPDATE conversation_participants
		SET last_seen_at = NOW()
		WHERE conversation_id = $1 AND user_id = $2`,
		conversationID, userID)
	if err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}

	return nil
}
