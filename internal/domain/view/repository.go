package view

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id is unknown or expired
var ErrSessionNotFound = errors.New("view: session not found")

// Session is a server-held view state
type Session struct {
	ID        uuid.UUID `json:"id"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStore persists sessions for a limited time
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}
