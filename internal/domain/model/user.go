//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strconv"
	"strings"
)

// User is the remote user resource as returned by the users API.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DisplayID returns the id prefixed for table display (e.g. "#7").
func (u User) DisplayID() string {
	return "#" + strconv.FormatInt(u.ID, 10)
}

// UserInput is the create/update payload sent to the users API.
// Empty strings are legal; only surrounding whitespace is removed.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUserInput builds a UserInput from raw form values, trimming whitespace.
func NewUserInput(username, email string) UserInput {
	return UserInput{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
	}
}

// Key returns a stable identity for the payload, used to collapse duplicate submissions.
func (in UserInput) Key() string {
	return strconv.Quote(in.Username) + "|" + strconv.Quote(in.Email)
}
