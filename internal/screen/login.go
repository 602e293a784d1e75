package screen

import (
	"strings"

	"drivequest/internal/domain"
)

const (
	loginFailedTitle   = "Login Failed"
	loginFailedMessage = "Invalid username or password. Please check your credentials and try again."
)

type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type LoginView struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	ShowPassword bool   `json:"showPassword"`
	Loading      bool   `json:"loading"`
	CanSubmit    bool   `json:"canSubmit"`
	Alert        *Alert `json:"alert,omitempty"`
}

// Login collects credentials and resolves them through the authenticator. A successful
// attempt is reported to onRole; a rejected one raises the failure alert.
type Login struct {
	notifier
	auth     Authenticator
	onRole   func(domain.Role)
	username string
	password string
	show     bool
	loading  bool
	alert    *Alert
	closed   bool
}

func NewLogin(auth Authenticator, onRole func(domain.Role)) *Login {
	return &Login{auth: auth, onRole: onRole}
}

func (l *Login) SetUsername(v string) {
	l.username = v
	l.changed()
}

func (l *Login) SetPassword(v string) {
	l.password = v
	l.changed()
}

func (l *Login) TogglePasswordVisibility() {
	l.show = !l.show
	l.changed()
}

func (l *Login) canSubmit() bool {
	return !l.loading && strings.TrimSpace(l.username) != "" && l.password != ""
}

// Submit starts an attempt. It is ignored while one is in flight or a field is empty.
func (l *Login) Submit() {
	if !l.canSubmit() {
		return
	}
	l.loading = true
	l.alert = nil
	l.changed()

	l.auth.Login(l.username, l.password, l.resolve)
}

// Close makes any pending attempt resolve as a no-op.
func (l *Login) Close() { l.closed = true }

func (l *Login) resolve(role domain.Role) {
	if l.closed {
		return
	}
	l.loading = false
	if role == domain.RoleRejected {
		l.alert = &Alert{Title: loginFailedTitle, Message: loginFailedMessage}
		l.changed()
		return
	}
	l.password = ""
	l.changed()
	if l.onRole != nil {
		l.onRole(role)
	}
}

func (l *Login) DismissAlert() {
	if l.alert == nil {
		return
	}
	l.alert = nil
	l.changed()
}

func (l *Login) Render() LoginView {
	v := LoginView{
		Username:     l.username,
		Password:     l.password,
		ShowPassword: l.show,
		Loading:      l.loading,
		CanSubmit:    l.canSubmit(),
	}
	if l.alert != nil {
		a := *l.alert
		v.Alert = &a
	}
	return v
}
