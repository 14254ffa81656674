package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/userdesk/internal/domain/model"
	"github.com/target/userdesk/internal/domain/userlist"
	"github.com/target/userdesk/internal/testutil"
)

func TestStateStore_LoadUnknownReturnsFreshState(t *testing.T) {
	store := NewStateStore(time.Hour)

	st, err := store.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, userlist.New(), st)
}

func TestStateStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore(time.Hour)

	st := userlist.New()
	st.ReplaceAll(testutil.Users(1, 2))
	require.True(t, st.StartEdit(2))
	require.NoError(t, store.Save(ctx, "s1", st))

	// mutating the caller's copy must not leak into the store
	st.Users[0].Username = "changed"

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "user1", got.Users[0].Username)
	assert.Equal(t, int64(2), got.Form.EditID)

	got.Append(model.User{ID: 9})
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Count())
}

func TestStateStore_SaveRequiresSession(t *testing.T) {
	store := NewStateStore(time.Hour)
	assert.Error(t, store.Save(context.Background(), " ", userlist.New()))
}

func TestStateStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := testutil.TestTime()
	store := NewStateStore(time.Minute).WithClock(func() time.Time { return now })

	st := userlist.New()
	st.Append(model.User{ID: 1})
	require.NoError(t, store.Save(ctx, "s1", st))

	now = now.Add(59 * time.Second)
	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count())

	now = now.Add(time.Second)
	got, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Count())

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStateStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStateStore(0)

	editing := userlist.New()
	editing.ReplaceAll(testutil.Users(4))
	editing.StartEdit(4)
	require.NoError(t, store.Save(ctx, "b", editing))
	require.NoError(t, store.Save(ctx, "a", userlist.New()))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.True(t, list[1].Editing)
	assert.Equal(t, 1, list[1].Users)

	require.NoError(t, store.Delete(ctx, "b"))
	require.NoError(t, store.Delete(ctx, "missing"))
	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
