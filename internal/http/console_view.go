package httpx

import (
	"time"

	"github.com/target/userdesk/internal/domain/model"
	"github.com/target/userdesk/internal/domain/userlist"
)

// ConsoleView is the render model of one console session.
type ConsoleView struct {
	Users  []model.User
	Count  int
	Empty  bool
	Loaded bool
	Form   FormView
	Toast  ToastView
}

// FormView drives the add/update form.
type FormView struct {
	Editing     bool
	EditID      int64
	Username    string
	Email       string
	SubmitLabel string
	SubmitIcon  string
}

// ToastView is the notification element. Delay is the auto-clear timer.
type ToastView struct {
	Visible    bool
	Message    string
	Kind       string
	Generation uint64
	Delay      time.Duration
}

// NewConsoleView builds the render model for st.
func NewConsoleView(st userlist.State, toastDelay time.Duration) ConsoleView {
	v := ConsoleView{
		Users:  st.Users,
		Count:  st.Count(),
		Empty:  st.Empty(),
		Loaded: st.Loaded,
		Form: FormView{
			Editing:     st.Form.Editing(),
			EditID:      st.Form.EditID,
			Username:    st.Form.Username,
			Email:       st.Form.Email,
			SubmitLabel: "Add User",
			SubmitIcon:  "+",
		},
	}
	if v.Form.Editing {
		v.Form.SubmitLabel = "Update User"
		v.Form.SubmitIcon = "✎"
	}
	if n := st.Notification; n.Visible() {
		v.Toast = ToastView{
			Visible:    true,
			Message:    n.Message,
			Kind:       string(n.Kind),
			Generation: n.Generation,
			Delay:      toastDelay,
		}
	}
	return v
}
