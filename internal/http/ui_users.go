package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/target/userdesk/internal/domain/model"
	"github.com/target/userdesk/internal/domain/userlist"
	apperrors "github.com/target/userdesk/internal/errors"
	"github.com/target/userdesk/internal/service"
)

// ConsoleService is the slice of the user list controller the handlers need.
type ConsoleService interface {
	View(ctx context.Context, session string) (userlist.State, error)
	Load(ctx context.Context, session string) (userlist.State, error)
	Submit(ctx context.Context, session string, in model.UserInput) (userlist.State, error)
	Delete(ctx context.Context, p service.DeleteParams) (userlist.State, error)
	StartEdit(ctx context.Context, session string, id int64) (userlist.State, error)
	Cancel(ctx context.Context, session string) (userlist.State, error)
	ClearNotification(ctx context.Context, session string, generation uint64) (userlist.State, bool, error)
	ToastDuration() time.Duration
}

var _ ConsoleService = (*service.UserListService)(nil)

//nolint:gochecknoglobals // static page metadata
var (
	usersPageMeta  = PageMeta{Title: "Users · userdesk", PageTitle: "Users", CurrentPage: PageUsers}
	confirmDelMeta = PageMeta{Title: "Delete user · userdesk", PageTitle: "Delete user", CurrentPage: PageConfirmDelete}
)

// UserHandlers serves the users console.
type UserHandlers struct {
	T      *TemplateRenderer
	Svc    ConsoleService
	IsDev  bool
	Logger *slog.Logger
}

func (h *UserHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Index loads the list from the users API and renders the console.
func (h *UserHandlers) Index(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.Load(r.Context(), sessionID(r))
	h.respond(w, r, st, err)
}

// Console renders the current state without contacting the users API.
// ?reload=1 reloads the list first.
func (h *UserHandlers) Console(w http.ResponseWriter, r *http.Request) {
	session := sessionID(r)
	var (
		st  userlist.State
		err error
	)
	if r.URL.Query().Get("reload") == "1" {
		st, err = h.Svc.Load(r.Context(), session)
	} else {
		st, err = h.Svc.View(r.Context(), session)
	}
	h.respond(w, r, st, err)
}

// Submit creates or updates a user depending on the form mode.
func (h *UserHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, apperrors.Validation("malformed form body"))
		return
	}
	in := model.NewUserInput(r.PostFormValue("username"), r.PostFormValue("email"))
	st, err := h.Svc.Submit(r.Context(), sessionID(r), in)
	h.respond(w, r, st, err)
}

// Edit switches the form to edit mode for the row's user.
func (h *UserHandlers) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	st, err := h.Svc.StartEdit(r.Context(), sessionID(r), id)
	h.respond(w, r, st, err)
}

// Cancel leaves edit mode.
func (h *UserHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	st, err := h.Svc.Cancel(r.Context(), sessionID(r))
	h.respond(w, r, st, err)
}

// ConfirmDelete renders the confirmation page used when JavaScript is unavailable.
// htmx requests are sent there with a full navigation; the page must not be
// swapped into the console.
func (h *UserHandlers) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if WantsFragment(r) {
		HTMX(w).Redirect(userPath(id, "delete"))
		return
	}
	st, err := h.Svc.View(r.Context(), sessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	target := model.User{ID: id}
	if u, found := st.Find(id); found {
		target = u
	}
	data := NewTemplateData(r, confirmDelMeta).
		WithConsole(NewConsoleView(st, h.Svc.ToastDuration())).
		With("Target", target).
		Build()
	if err := h.T.RenderFull(w, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "confirm delete page")
	}
}

// Delete removes a user. Only confirm=yes sends the request; anything else
// re-renders the console unchanged.
func (h *UserHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, apperrors.Validation("malformed form body"))
		return
	}
	st, err := h.Svc.Delete(r.Context(), service.DeleteParams{
		Session:   sessionID(r),
		ID:        id,
		Confirmed: r.PostFormValue("confirm") == "yes",
	})
	h.respond(w, r, st, err)
}

// ClearToast hides the notification if the timer's generation is still
// current. A stale timer gets 204 so htmx leaves the newer toast alone.
func (h *UserHandlers) ClearToast(w http.ResponseWriter, r *http.Request) {
	gen, err := strconv.ParseUint(r.PathValue("gen"), 10, 64)
	if err != nil {
		h.fail(w, r, apperrors.ValidationField("gen", "notification generation must be an unsigned integer"))
		return
	}
	st, cleared, err := h.Svc.ClearNotification(r.Context(), sessionID(r), gen)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !cleared {
		HTMX(w).NoSwap()
		return
	}
	if !WantsFragment(r) {
		http.Redirect(w, r, PathConsole, http.StatusSeeOther)
		return
	}
	data := NewTemplateData(r, usersPageMeta).WithConsole(NewConsoleView(st, h.Svc.ToastDuration())).Build()
	if err := h.T.RenderFragment(w, fragmentToast, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "toast fragment")
	}
}

// respond renders the console for st: the fragment for htmx, a 303 to the
// console page for plain form posts, and the full page otherwise.
func (h *UserHandlers) respond(w http.ResponseWriter, r *http.Request, st userlist.State, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	HTMX(w).UsersChanged(st.Count())

	if !WantsFragment(r) && r.Method == http.MethodPost {
		http.Redirect(w, r, PathConsole, http.StatusSeeOther)
		return
	}

	data := NewTemplateData(r, usersPageMeta).WithConsole(NewConsoleView(st, h.Svc.ToastDuration())).Build()
	if WantsFragment(r) {
		if err := h.T.RenderFragment(w, fragmentConsole, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "console fragment")
		}
		return
	}
	if err := h.T.RenderFull(w, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "full page render")
	}
}

func (h *UserHandlers) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.fail(w, r, apperrors.ValidationField("id", "user id must be an integer"))
		return 0, false
	}
	return id, true
}

func userPath(id int64, action string) string {
	return "/users/" + strconv.FormatInt(id, 10) + "/" + action
}

func sessionID(r *http.Request) string {
	id, _ := ConsoleSessionFromContext(r.Context())
	return id
}
