package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/target/userdesk/internal/core"
	"github.com/target/userdesk/internal/domain/model"
	"github.com/target/userdesk/internal/domain/userlist"
	apperrors "github.com/target/userdesk/internal/errors"
	obserrors "github.com/target/userdesk/internal/observability/errors"
	"github.com/target/userdesk/internal/observability/metrics"
	"github.com/target/userdesk/internal/observability/statsd"
)

// Notification messages shown to console operators.
const (
	MsgLoadFailed   = "Error loading users"
	MsgCreated      = "User created successfully"
	MsgCreateFailed = "Error creating user"
	MsgUpdated      = "User updated successfully"
	MsgUpdateFailed = "Error updating user"
	MsgDeleted      = "User deleted successfully"
	MsgDeleteFailed = "Error deleting user"
)

// DefaultToastTime applies when UserListConfig.ToastDuration is unset.
const DefaultToastTime = 3 * time.Second

// UserListConfig holds the optional knobs of UserListService.
type UserListConfig struct {
	ToastDuration time.Duration
	Logger        *slog.Logger
	Metrics       statsd.Sink
	Now           func() time.Time
}

// UserListServiceOptions groups dependencies for UserListService.
type UserListServiceOptions struct {
	API    core.UsersAPI
	Store  core.StateStore
	Config UserListConfig
}

// UserListService is the console controller. Each session's state is
// mutated under that session's lock; users API calls run outside it and are
// reconciled afterwards. Identical concurrent requests share one API call.
type UserListService struct {
	api    core.UsersAPI
	store  core.StateStore
	toast  time.Duration
	logger *slog.Logger
	sink   statsd.Sink
	now    func() time.Time

	locks  sessionLocks
	flight singleflight.Group
}

// DeleteParams identifies a delete request. Unconfirmed deletes are dropped.
type DeleteParams struct {
	Session   string
	ID        int64
	Confirmed bool
}

// NewUserListService constructs a UserListService. API and Store are required.
func NewUserListService(opts UserListServiceOptions) *UserListService {
	if opts.API == nil {
		panic("user list service requires a users API")
	}
	if opts.Store == nil {
		panic("user list service requires a state store")
	}

	cfg := opts.Config
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = DefaultToastTime
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &UserListService{
		api:    opts.API,
		store:  opts.Store,
		toast:  cfg.ToastDuration,
		logger: cfg.Logger.With("component", "userlist"),
		sink:   cfg.Metrics,
		now:    cfg.Now,
		locks:  sessionLocks{held: make(map[string]*sessionLock)},
	}
}

// ToastDuration is how long notifications stay visible.
func (s *UserListService) ToastDuration() time.Duration { return s.toast }

// View returns a snapshot of the session's state.
func (s *UserListService) View(ctx context.Context, session string) (userlist.State, error) {
	unlock := s.locks.lock(session)
	defer unlock()
	return s.loadState(ctx, session)
}

// Load fetches the user list and replaces the local sequence. The form always
// returns to create mode; a failed fetch leaves the sequence untouched and
// shows MsgLoadFailed.
func (s *UserListService) Load(ctx context.Context, session string) (userlist.State, error) {
	return s.shared(flightKey(session, "load"), func() (userlist.State, error) {
		users, apiErr := s.api.List(ctx)
		return s.mutate(ctx, session, func(st *userlist.State) {
			st.ExpireNotification(s.now(), s.toast)
			st.ResetForm()
			if apiErr != nil {
				s.fail(ctx, st, failure{op: "load", session: session, msg: MsgLoadFailed, err: apiErr})
				return
			}
			st.ReplaceAll(users)
			metrics.EmitListSize(s.sink, st.Count())
		})
	})
}

// Submit creates a user in create mode, or updates the user captured by
// StartEdit in edit mode. The form resets only when the call succeeds and the
// form still targets what was submitted.
func (s *UserListService) Submit(ctx context.Context, session string, in model.UserInput) (userlist.State, error) {
	in = model.NewUserInput(in.Username, in.Email)

	current, err := s.View(ctx, session)
	if err != nil {
		return userlist.State{}, err
	}
	if current.Form.Editing() {
		return s.update(ctx, session, current.Form.EditID, in)
	}
	return s.create(ctx, session, in)
}

func (s *UserListService) create(ctx context.Context, session string, in model.UserInput) (userlist.State, error) {
	return s.shared(flightKey(session, "create", in.Key()), func() (userlist.State, error) {
		created, apiErr := s.api.Create(ctx, in)
		return s.mutate(ctx, session, func(st *userlist.State) {
			if apiErr != nil {
				s.fail(ctx, st, failure{op: "create", session: session, msg: MsgCreateFailed, err: apiErr})
				if !st.Form.Editing() {
					st.KeepDrafts(in)
				}
				return
			}
			st.Append(created)
			if !st.Form.Editing() {
				st.ResetForm()
			}
			s.succeed(st, MsgCreated)
		})
	})
}

func (s *UserListService) update(
	ctx context.Context,
	session string,
	id int64,
	in model.UserInput,
) (userlist.State, error) {
	key := flightKey(session, "update", strconv.FormatInt(id, 10), in.Key())
	return s.shared(key, func() (userlist.State, error) {
		updated, apiErr := s.api.Update(ctx, id, in)
		return s.mutate(ctx, session, func(st *userlist.State) {
			if apiErr != nil {
				s.fail(ctx, st, failure{op: "update", session: session, id: id, hasID: true, msg: MsgUpdateFailed, err: apiErr})
				if st.Form.Editing() && st.Form.EditID == id {
					st.KeepDrafts(in)
				}
				return
			}
			st.ReplaceByID(id, updated)
			if st.Form.Editing() && st.Form.EditID == id {
				st.ResetForm()
			}
			s.succeed(st, MsgUpdated)
		})
	})
}

// Delete removes a user after confirmation. Without confirmation nothing is
// sent and the state is returned unchanged.
func (s *UserListService) Delete(ctx context.Context, p DeleteParams) (userlist.State, error) {
	if !p.Confirmed {
		return s.View(ctx, p.Session)
	}

	return s.shared(flightKey(p.Session, "delete", strconv.FormatInt(p.ID, 10)), func() (userlist.State, error) {
		apiErr := s.api.Delete(ctx, p.ID)
		return s.mutate(ctx, p.Session, func(st *userlist.State) {
			if apiErr != nil {
				s.fail(ctx, st, failure{op: "delete", session: p.Session, id: p.ID, hasID: true, msg: MsgDeleteFailed, err: apiErr})
				return
			}
			st.RemoveByID(p.ID)
			if st.Form.Editing() && st.Form.EditID == p.ID {
				st.ResetForm()
			}
			s.succeed(st, MsgDeleted)
		})
	})
}

// StartEdit puts the form in edit mode for id. Unknown ids change nothing.
func (s *UserListService) StartEdit(ctx context.Context, session string, id int64) (userlist.State, error) {
	return s.mutate(ctx, session, func(st *userlist.State) {
		st.StartEdit(id)
	})
}

// Cancel returns the form to create mode.
func (s *UserListService) Cancel(ctx context.Context, session string) (userlist.State, error) {
	return s.mutate(ctx, session, func(st *userlist.State) {
		st.ResetForm()
	})
}

// ClearNotification hides the notification if it still has the given
// generation, and reports whether it did.
func (s *UserListService) ClearNotification(
	ctx context.Context,
	session string,
	generation uint64,
) (userlist.State, bool, error) {
	var cleared bool
	st, err := s.mutate(ctx, session, func(st *userlist.State) {
		cleared = st.ClearNotification(generation)
	})
	return st, cleared, err
}

// Reset forgets the session's state entirely.
func (s *UserListService) Reset(ctx context.Context, session string) error {
	unlock := s.locks.lock(session)
	defer unlock()
	if err := s.store.Delete(ctx, session); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "delete console state")
	}
	return nil
}

func (s *UserListService) loadState(ctx context.Context, session string) (userlist.State, error) {
	st, err := s.store.Load(ctx, session)
	if err != nil {
		return userlist.State{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "load console state")
	}
	st.Normalize()
	return st, nil
}

// mutate applies fn to the session's state under its lock and persists the result.
func (s *UserListService) mutate(
	ctx context.Context,
	session string,
	fn func(*userlist.State),
) (userlist.State, error) {
	unlock := s.locks.lock(session)
	defer unlock()

	st, err := s.loadState(ctx, session)
	if err != nil {
		return userlist.State{}, err
	}
	fn(&st)
	if err := s.store.Save(ctx, session, st); err != nil {
		return userlist.State{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "save console state")
	}
	return st.Clone(), nil
}

func (s *UserListService) shared(key string, fn func() (userlist.State, error)) (userlist.State, error) {
	v, err, _ := s.flight.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return userlist.State{}, err
	}
	st, _ := v.(userlist.State)
	return st.Clone(), nil
}

type failure struct {
	op      string
	session string
	id      int64
	msg     string
	err     error
	hasID   bool
}

func (s *UserListService) fail(ctx context.Context, st *userlist.State, f failure) {
	attrs := []any{
		"operation", f.op,
		"session", sessionTag(f.session),
		"error", f.err,
		"error_class", obserrors.Classify(f.err),
	}
	if f.hasID {
		attrs = append(attrs, "user_id", f.id)
	}
	s.logger.ErrorContext(ctx, "users api call failed", attrs...)
	st.Notify(f.msg, userlist.NotificationError, s.now())
	metrics.EmitNotification(s.sink, string(userlist.NotificationError))
}

func (s *UserListService) succeed(st *userlist.State, msg string) {
	st.Notify(msg, userlist.NotificationSuccess, s.now())
	metrics.EmitNotification(s.sink, string(userlist.NotificationSuccess))
}

func flightKey(session string, parts ...string) string {
	return session + "\x00" + strings.Join(parts, "\x00")
}

// sessionTag shortens a session id for logs.
func sessionTag(session string) string {
	if len(session) > 8 {
		return session[:8]
	}
	return session
}

// sessionLocks hands out one mutex per session and forgets it once unused.
type sessionLocks struct {
	mu   sync.Mutex
	held map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(session string) func() {
	l.mu.Lock()
	sl, ok := l.held[session]
	if !ok {
		sl = &sessionLock{}
		l.held[session] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.held, session)
		}
		l.mu.Unlock()
	}
}
