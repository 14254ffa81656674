package testutil

import (
	"fmt"

	"github.com/target/userdesk/internal/domain/model"
)

// UserBuilder builds model.User fixtures.
type UserBuilder struct {
	u model.User
}

// NewUser starts a builder with a deterministic user for id.
func NewUser(id int64) *UserBuilder {
	return &UserBuilder{u: model.User{
		ID:       id,
		Username: fmt.Sprintf("user%d", id),
		Email:    fmt.Sprintf("user%d@example.com", id),
	}}
}

// WithUsername sets the username.
func (b *UserBuilder) WithUsername(name string) *UserBuilder {
	b.u.Username = name
	return b
}

// WithEmail sets the email.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.u.Email = email
	return b
}

// Build returns the user.
func (b *UserBuilder) Build() model.User { return b.u }

// Users returns deterministic users for the given ids, in order.
func Users(ids ...int64) []model.User {
	out := make([]model.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, NewUser(id).Build())
	}
	return out
}
