package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/userdesk/config"
	"github.com/target/userdesk/internal/adapters/memory"
	"github.com/target/userdesk/internal/core"
	"github.com/target/userdesk/internal/domain/model"
	"github.com/target/userdesk/internal/domain/userlist"
	apperrors "github.com/target/userdesk/internal/errors"
	"github.com/target/userdesk/internal/mocks"
	"github.com/target/userdesk/internal/testutil"
)

type harness struct {
	cc    *commandContext
	out   *bytes.Buffer
	api   *mocks.MockUsersAPI
	store *memory.StateStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		out:   &bytes.Buffer{},
		api:   mocks.NewMockUsersAPI(ctrl),
		store: memory.NewStateStore(0),
	}
	h.cc = &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Out:    h.out,
		Err:    io.Discard,
		newUsersAPI: func(*commandContext) (core.UsersAPI, error) {
			return h.api, nil
		},
		newStateStore: func(*commandContext) (core.StateStore, func() error, error) {
			return h.store, nil, nil
		},
	}
	return h
}

func (h *harness) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	cmd, ok := commands()[name]
	require.True(t, ok, "unknown command %s", name)
	return cmd.run(h.cc, args)
}

func TestListUsers_Table(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().List(gomock.Any()).Return(testutil.Users(1, 2), nil)

	require.NoError(t, h.run(t, "list-users"))

	out := h.out.String()
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "2 Users")
}

func TestListUsers_JSON(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().List(gomock.Any()).Return([]model.User{{ID: 7, Username: "alice", Email: "a@x.com"}}, nil)

	require.NoError(t, h.run(t, "list-users", "-json"))
	assert.JSONEq(t, `[{"id":7,"username":"alice","email":"a@x.com"}]`, h.out.String())
}

func TestListUsers_Error(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().List(gomock.Any()).Return(nil, errors.New("boom"))

	err := h.run(t, "list-users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list users")
}

func TestCreateUser_TrimsInput(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().
		Create(gomock.Any(), model.UserInput{Username: "alice", Email: "a@x.com"}).
		Return(model.User{ID: 7, Username: "alice", Email: "a@x.com"}, nil)

	require.NoError(t, h.run(t, "create-user", "-username", " alice ", "-email", "a@x.com"))
	assert.Contains(t, h.out.String(), "created #7 alice <a@x.com>")
}

func TestUpdateUser(t *testing.T) {
	h := newHarness(t)
	h.api.EXPECT().
		Update(gomock.Any(), int64(3), model.UserInput{Username: "bob", Email: "b@x.com"}).
		Return(model.User{ID: 3, Username: "bob", Email: "b@x.com"}, nil)

	require.NoError(t, h.run(t, "update-user", "-id", "3", "-username", "bob", "-email", "b@x.com"))
	assert.Contains(t, h.out.String(), "updated #3")
}

func TestUpdateUser_RequiresID(t *testing.T) {
	h := newHarness(t)
	require.Error(t, h.run(t, "update-user", "-username", "bob"))
}

func TestDeleteUser_RequiresYes(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "delete-user", "-id", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-yes")
}

func TestDeleteUser_Many(t *testing.T) {
	h := newHarness(t)
	var (
		mu      sync.Mutex
		deleted []int64
	)
	h.api.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(3).DoAndReturn(func(_ context.Context, id int64) error {
		mu.Lock()
		defer mu.Unlock()
		deleted = append(deleted, id)
		if id == 4 {
			return errors.New("status 404")
		}
		return nil
	})

	err := h.run(t, "delete-user", "-id", "3, #4,5,3", "-yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete user 4")
	assert.ElementsMatch(t, []int64{3, 4, 5}, deleted)

	out := h.out.String()
	assert.Contains(t, out, "deleted #3")
	assert.Contains(t, out, "deleted #5")
	assert.NotContains(t, out, "deleted #4")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("1,#2, 2 ,3")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	_, err = parseIDs("")
	require.Error(t, err)
	_, err = parseIDs("1,x")
	require.Error(t, err)
	_, err = parseIDs("0")
	require.Error(t, err)
}

func seedSession(t *testing.T, store *memory.StateStore, id string, users ...int64) {
	t.Helper()
	st := userlist.New()
	st.ReplaceAll(testutil.Users(users...))
	require.NoError(t, store.Save(context.Background(), id, st))
}

func TestListSessions(t *testing.T) {
	h := newHarness(t)
	seedSession(t, h.store, "aaa", 1, 2)
	seedSession(t, h.store, "bbb")

	require.NoError(t, h.run(t, "list-sessions"))
	out := h.out.String()
	assert.Contains(t, out, "aaa")
	assert.Contains(t, out, "bbb")
	assert.Contains(t, out, "2 session(s)")
}

func TestClearSessions(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a target", func(t *testing.T) {
		h := newHarness(t)
		require.Error(t, h.run(t, "clear-sessions"))
		require.Error(t, h.run(t, "clear-sessions", "-all", "-session", "aaa"))
	})

	t.Run("dry run keeps sessions", func(t *testing.T) {
		h := newHarness(t)
		seedSession(t, h.store, "aaa", 1)
		require.NoError(t, h.run(t, "clear-sessions", "-all", "-dry-run"))
		assert.Contains(t, h.out.String(), "would clear aaa")
		sessions, err := h.store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, sessions, 1)
	})

	t.Run("single session", func(t *testing.T) {
		h := newHarness(t)
		seedSession(t, h.store, "aaa", 1)
		seedSession(t, h.store, "bbb", 2)
		require.NoError(t, h.run(t, "clear-sessions", "-session", "aaa"))
		sessions, err := h.store.List(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "bbb", sessions[0].ID)
	})

	t.Run("all sessions", func(t *testing.T) {
		h := newHarness(t)
		seedSession(t, h.store, "aaa", 1)
		seedSession(t, h.store, "bbb", 2)
		require.NoError(t, h.run(t, "clear-sessions", "-all"))
		sessions, err := h.store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, sessions)
		assert.Contains(t, h.out.String(), "cleared 2 session(s)")
	})

	t.Run("store failure stops the run", func(t *testing.T) {
		h := newHarness(t)
		store := mocks.NewMockStateStore(gomock.NewController(t))
		store.EXPECT().Delete(gomock.Any(), "aaa").Return(errors.New("READONLY"))
		h.cc.newStateStore = func(*commandContext) (core.StateStore, func() error, error) {
			return store, nil, nil
		}

		err := h.run(t, "clear-sessions", "-session", "aaa")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "clear session aaa")
		assert.Equal(t, apperrors.ErrCodeInternal, apperrors.GetCode(err))
		assert.NotContains(t, h.out.String(), "cleared aaa")
	})
}

func TestConnectStateStore_MemoryIsRejected(t *testing.T) {
	cc := &commandContext{Ctx: context.Background(), Config: config.AppConfig{
		Console: config.ConsoleConfig{SessionStore: config.SessionStoreMemory},
	}}
	_, _, err := connectStateStore(cc)
	require.ErrorIs(t, err, errSessionsNotShared)
}

func TestPrintUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	for name := range commands() {
		assert.Contains(t, buf.String(), name)
	}
}
