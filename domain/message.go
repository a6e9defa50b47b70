// Package domain contains core concepts of the chat system.
// Entities here are immutable once created and carry no runtime,
// network, or storage logic.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a one-to-one chat message. Either Text or ImageURL may be
// empty, never both. Messages are immutable after creation.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"image,omitempty"`
	Lang       string    `json:"lang,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
