// Package userlist holds the console's per-session user list state and the
// pure operations that reconcile it with users API results.
package userlist

import (
	"slices"
	"time"

	"github.com/target/userdesk/internal/domain/model"
)

// FormMode is the two-state mode of the user form.
type FormMode string

const (
	// FormModeCreate submits new users.
	FormModeCreate FormMode = "create"
	// FormModeEdit submits an update for Form.EditID.
	FormModeEdit FormMode = "edit"
)

// NotificationKind selects the notification styling.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Form is the user form state. Username and Email carry the values shown in
// the form fields: the edited record in edit mode, or the last entered values
// after a failed submit.
type Form struct {
	Mode     FormMode `json:"mode"`
	EditID   int64    `json:"edit_id,omitempty"`
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
}

// Editing reports whether the form targets an existing user.
func (f Form) Editing() bool { return f.Mode == FormModeEdit }

// Notification is a transient message. Generation identifies which
// notification a pending auto-clear belongs to.
type Notification struct {
	Message    string           `json:"message,omitempty"`
	Kind       NotificationKind `json:"kind,omitempty"`
	Generation uint64           `json:"generation,omitempty"`
	ShownAt    time.Time        `json:"shown_at"`
}

// Visible reports whether there is a notification to display.
func (n Notification) Visible() bool { return n.Message != "" }

// State is everything one console session owns.
type State struct {
	Users        []model.User `json:"users"`
	Loaded       bool         `json:"loaded"`
	Form         Form         `json:"form"`
	Notification Notification `json:"notification"`
	// Generation is the last notification generation issued for this session.
	Generation uint64 `json:"generation"`
}

// New returns an empty state in create mode.
func New() State {
	return State{Form: Form{Mode: FormModeCreate}}
}

// Normalize repairs a decoded state so callers can rely on Form.Mode being set.
func (s *State) Normalize() {
	if s.Form.Mode != FormModeEdit {
		s.Form = Form{Mode: FormModeCreate, Username: s.Form.Username, Email: s.Form.Email}
	}
}

// Clone returns a deep copy safe to hand to renderers.
func (s State) Clone() State {
	out := s
	out.Users = slices.Clone(s.Users)
	return out
}

// Count returns the number of users in the local sequence.
func (s State) Count() int { return len(s.Users) }

// Empty reports whether the local sequence has no users.
func (s State) Empty() bool { return len(s.Users) == 0 }

// ReplaceAll replaces the local sequence with a fresh server listing.
func (s *State) ReplaceAll(users []model.User) {
	s.Users = slices.Clone(users)
	s.Loaded = true
}

// Append adds a newly created user to the end of the sequence.
func (s *State) Append(u model.User) {
	s.Users = append(s.Users, u)
}

// ReplaceByID replaces the first user whose id matches with u.
// It reports false and leaves the sequence untouched when nothing matches.
func (s *State) ReplaceByID(id int64, u model.User) bool {
	i := slices.IndexFunc(s.Users, func(x model.User) bool { return x.ID == id })
	if i < 0 {
		return false
	}
	s.Users[i] = u
	return true
}

// RemoveByID removes every user with the given id and returns how many were removed.
func (s *State) RemoveByID(id int64) int {
	before := len(s.Users)
	s.Users = slices.DeleteFunc(s.Users, func(x model.User) bool { return x.ID == id })
	return before - len(s.Users)
}

// Find returns the first user with the given id.
func (s State) Find(id int64) (model.User, bool) {
	i := slices.IndexFunc(s.Users, func(x model.User) bool { return x.ID == id })
	if i < 0 {
		return model.User{}, false
	}
	return s.Users[i], true
}

// StartEdit switches the form to edit mode for id, populated from the local record.
// It is a no-op returning false when id is not in the sequence.
func (s *State) StartEdit(id int64) bool {
	u, ok := s.Find(id)
	if !ok {
		return false
	}
	s.Form = Form{Mode: FormModeEdit, EditID: u.ID, Username: u.Username, Email: u.Email}
	return true
}

// ResetForm clears the form back to create mode.
func (s *State) ResetForm() {
	s.Form = Form{Mode: FormModeCreate}
}

// KeepDrafts stores the submitted values in the form without changing its mode.
func (s *State) KeepDrafts(in model.UserInput) {
	s.Form.Username = in.Username
	s.Form.Email = in.Email
}

// Notify shows a new notification and returns it with a fresh generation.
func (s *State) Notify(message string, kind NotificationKind, now time.Time) Notification {
	s.Generation++
	s.Notification = Notification{
		Message:    message,
		Kind:       kind,
		Generation: s.Generation,
		ShownAt:    now,
	}
	return s.Notification
}

// ClearNotification hides the current notification only if it is still the
// one identified by generation.
func (s *State) ClearNotification(generation uint64) bool {
	if !s.Notification.Visible() || s.Notification.Generation != generation {
		return false
	}
	s.Notification = Notification{}
	return true
}

// ExpireNotification hides the current notification once it has been shown
// for at least ttl. Used when rendering a full page long after the clear
// timer would have fired.
func (s *State) ExpireNotification(now time.Time, ttl time.Duration) bool {
	if !s.Notification.Visible() || ttl <= 0 {
		return false
	}
	if now.Sub(s.Notification.ShownAt) < ttl {
		return false
	}
	s.Notification = Notification{}
	return true
}
