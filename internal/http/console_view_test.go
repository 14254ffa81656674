package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/userdesk/internal/domain/userlist"
	"github.com/target/userdesk/internal/testutil"
)

func TestNewConsoleView_CreateMode(t *testing.T) {
	st := userlist.New()
	st.ReplaceAll(testutil.Users(1, 2))

	v := NewConsoleView(st, 3*time.Second)

	assert.Equal(t, 2, v.Count)
	assert.False(t, v.Empty)
	assert.True(t, v.Loaded)
	assert.False(t, v.Form.Editing)
	assert.Equal(t, "Add User", v.Form.SubmitLabel)
	assert.False(t, v.Toast.Visible)
}

func TestNewConsoleView_EditModeAndToast(t *testing.T) {
	st := userlist.New()
	st.ReplaceAll(testutil.Users(1, 2, 3))
	require.True(t, st.StartEdit(3))
	n := st.Notify("User updated", userlist.NotificationSuccess, testutil.TestTime())

	v := NewConsoleView(st, 2*time.Second)

	assert.True(t, v.Form.Editing)
	assert.Equal(t, int64(3), v.Form.EditID)
	assert.Equal(t, "user3", v.Form.Username)
	assert.Equal(t, "Update User", v.Form.SubmitLabel)
	assert.True(t, v.Toast.Visible)
	assert.Equal(t, "success", v.Toast.Kind)
	assert.Equal(t, n.Generation, v.Toast.Generation)
	assert.Equal(t, 2*time.Second, v.Toast.Delay)
}

func TestNewConsoleView_Empty(t *testing.T) {
	v := NewConsoleView(userlist.New(), time.Second)
	assert.True(t, v.Empty)
	assert.Zero(t, v.Count)
}

func TestTemplateDataBuilder(t *testing.T) {
	var data map[string]any
	h := CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		data = NewTemplateData(r, PageMeta{Title: "T", PageTitle: "P", CurrentPage: PageUsers}).
			WithError("oops").
			With("Extra", 1).
			Build()
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: "tok"})
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, data)
	assert.Equal(t, "T", data["Title"])
	assert.Equal(t, PageUsers, data["CurrentPage"])
	assert.Equal(t, "tok", data["CSRFToken"])
	assert.Equal(t, "oops", data["Error"])
	assert.Equal(t, 1, data["Extra"])
}
