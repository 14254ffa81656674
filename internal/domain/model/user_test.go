package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserInput_TrimsWhitespace(t *testing.T) {
	in := NewUserInput("  alice \t", "\na@x.com  ")
	assert.Equal(t, "alice", in.Username)
	assert.Equal(t, "a@x.com", in.Email)
}

func TestNewUserInput_AllowsEmptyValues(t *testing.T) {
	in := NewUserInput("   ", "")
	assert.Empty(t, in.Username)
	assert.Empty(t, in.Email)
}

func TestUserInput_KeyDistinguishesFields(t *testing.T) {
	a := NewUserInput("a|b", "c")
	b := NewUserInput("a", "b|c")
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), NewUserInput(" a|b ", "c").Key())
}

func TestUser_DisplayID(t *testing.T) {
	assert.Equal(t, "#7", User{ID: 7}.DisplayID())
}

func TestUser_JSONShape(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"username":"alice","email":"a@x.com"}`), &u))
	assert.Equal(t, User{ID: 7, Username: "alice", Email: "a@x.com"}, u)

	b, err := json.Marshal(UserInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice","email":"a@x.com"}`, string(b))
}
