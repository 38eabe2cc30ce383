package events

import (
	"context"
	"time"
)

// ProfileCompleted is published after a profile submission persists
// successfully. Downstream consumers (welcome mail, notifications) subscribe
// to the configured topic; none live in this repository.
type ProfileCompleted struct {
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	CompletedAt time.Time `json:"completed_at"`
}

// Publisher sends onboarding events to a message broker. Publish returns the
// broker-assigned message id.
type Publisher interface {
	Publish(ctx context.Context, event ProfileCompleted) (string, error)
	Close() error
}
