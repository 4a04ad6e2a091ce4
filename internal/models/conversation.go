package models

import (
	"strings"
	"time"
)

// Conversation is a per-route messaging thread between two users. At most
// one conversation exists per (route, unordered participant pair); PairKey
// is the canonical encoding of that pair and carries the unique constraint.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	RouteID   string    `json:"route_id" db:"route_id"`
	PairKey   string    `json:"-" db:"pair_key"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ConversationSummary is one row of a user's conversation list
type ConversationSummary struct {
	ConversationID  string     `json:"conversation_id" db:"conversation_id"`
	Title           string     `json:"title" db:"title"`
	RouteID         string     `json:"route_id" db:"route_id"`
	ParticipantName string     `json:"participant_name" db:"participant_name"`
	LastMessage     *string    `json:"last_message,omitempty" db:"last_message"`
	LastUpdated     *time.Time `json:"last_updated,omitempty" db:"last_updated"`
}

// ConversationDetail is a conversation with its full message history
type ConversationDetail struct {
	ConversationID  string    `json:"conversation_id"`
	Title           string    `json:"title"`
	RouteID         string    `json:"route_id"`
	ParticipantName string    `json:"participant_name"`
	Messages        []Message `json:"messages"`
}

// PairKey returns the canonical key for an unordered user pair. Both
// argument orders produce the same key.
func PairKey(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}
