// Package queue carries registration notifications over RabbitMQ: the API
// publishes a UserRegisteredEvent and a background consumer turns it into a
// welcome mail.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/sabha-admin/internal/model"
)

// UserRegisteredQueue is the durable queue registration events travel on.
const UserRegisteredQueue = "user.registered"

// UserRegisteredEvent is published once a new user row is confirmed.  It
// holds everything the welcome mail needs so the consumer never queries the
// database.
type UserRegisteredEvent struct {
	EventID      string `json:"event_id"`
	UserID       uint64 `json:"user_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	KarykarID    string `json:"karykar_id"`
	RegisteredAt string `json:"registered_at"`
}

// NewUserRegisteredEvent builds the event for u.
func NewUserRegisteredEvent(u model.User) UserRegisteredEvent {
	at := u.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	return UserRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Username:     u.Username,
		KarykarID:    model.FormatKarykarID(u.KarykarID),
		RegisteredAt: at.UTC().Format(time.RFC3339),
	}
}
