// Package core defines the ports between the console service and its adapters.
package core

import (
	"context"
	"time"

	"github.com/target/userdesk/internal/domain/model"
	"github.com/target/userdesk/internal/domain/userlist"
)

// This file holds the ports the console service depends on. Adapters live in
// internal/adapters; the service never imports them directly.

// UsersAPI is the remote user resource.
type UsersAPI interface {
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, in model.UserInput) (model.User, error)
	Update(ctx context.Context, id int64, in model.UserInput) (model.User, error)
	Delete(ctx context.Context, id int64) error
}

// StateStore persists console state per session.
// Load returns userlist.New() for unknown sessions.
type StateStore interface {
	Load(ctx context.Context, session string) (userlist.State, error)
	Save(ctx context.Context, session string, st userlist.State) error
	Delete(ctx context.Context, session string) error
	List(ctx context.Context) ([]SessionInfo, error)
}

// SessionInfo summarises a stored session for operator tooling.
type SessionInfo struct {
	ID        string
	Users     int
	Editing   bool
	ExpiresAt time.Time
}
