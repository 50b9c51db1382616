package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message shown to a member, created alongside
// the email notifications for rental and reservation lifecycle events.
type Notification struct {
	ID         uuid.UUID         `json:"id"`
	MemberID   uuid.UUID         `json:"member_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}
