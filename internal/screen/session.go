package screen

import (
	"fmt"
	"strconv"
	"time"

	"drivequest/internal/domain"
)

// Intent is a user action forwarded by the UI shell.
type Intent struct {
	Screen  string `json:"screen" validate:"required"`
	Action  string `json:"action" validate:"required"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Index   int    `json:"index,omitempty"`
	Enabled bool   `json:"enabled,omitempty"`
}

const screenLogin = "login"

type RoutesView struct {
	Title   string `json:"title"`
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

var routesPlaceholder = RoutesView{
	Title:   "Routes",
	Icon:    "signpost.right.fill",
	Message: "The UI for this screen has not been implemented yet.",
}

// SessionView is everything the shell needs to draw the current screen.
type SessionView struct {
	Role   domain.Role `json:"role,omitempty"`
	Login  *LoginView  `json:"login,omitempty"`
	Tabs   *TabsView   `json:"tabs,omitempty"`
	Screen Tab         `json:"screen,omitempty"`
	View   any         `json:"view,omitempty"`
}

// SessionDeps are the collaborators shared by every controller of a session.
type SessionDeps struct {
	Store         StudentStore
	Catalog       CourseCatalog
	Tracker       LocationTracker
	Auth          Authenticator
	StudentID     domain.StudentID
	RequiredHours float64
	Now           func() time.Time
	Settings      []SettingsOption
}

// Session owns the controllers of one signed-in shell. Before sign-in only Login exists;
// signing out closes every controller and returns to Login.
type Session struct {
	notifier
	deps   SessionDeps
	closed bool
	role   domain.Role
	login  *Login
	tabs   *Tabs

	parent   *ParentDashboard
	student  *StudentDashboard
	courses  *Courses
	history  *History
	maps     *Maps
	settings *Settings
}

func NewSession(deps SessionDeps) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Session{deps: deps}
	s.resetLogin()
	return s
}

func (s *Session) Role() domain.Role { return s.role }

func (s *Session) resetLogin() {
	s.login = NewLogin(s.deps.Auth, s.signIn)
	s.login.OnChange(s.changed)
}

func (s *Session) signIn(role domain.Role) {
	if s.closed {
		return
	}
	s.closeControllers()
	s.role = role
	s.tabs = NewTabs(role)
	s.tabs.OnChange(s.changed)

	d := s.deps
	s.settings = NewSettings(d.Store, d.Tracker, role, s.signOut, d.Settings...)
	s.settings.OnChange(s.changed)
	switch role {
	case domain.RoleParent:
		s.parent = NewParentDashboard(d.Store, d.Catalog, d.Now)
		s.parent.OnChange(s.changed)
		s.maps = NewMaps(d.Tracker)
		s.maps.OnChange(s.changed)
	case domain.RoleStudent:
		s.student = NewStudentDashboard(d.Store, d.StudentID, d.RequiredHours)
		s.student.OnChange(s.changed)
		s.courses = NewCourses(d.Store, d.Catalog, d.StudentID)
		s.courses.OnChange(s.changed)
		s.history = NewHistory(d.Store, d.StudentID)
		s.history.OnChange(s.changed)
	}
	s.changed()
}

func (s *Session) signOut() {
	s.closeControllers()
	s.role = ""
	s.tabs = nil
	s.resetLogin()
	s.changed()
}

// Close drops every subscription the session holds. A login still pending at that point
// resolves into nothing.
func (s *Session) Close() {
	s.closed = true
	s.login.Close()
	s.closeControllers()
}

func (s *Session) closeControllers() {
	if s.parent != nil {
		s.parent.Close()
	}
	if s.student != nil {
		s.student.Close()
	}
	if s.courses != nil {
		s.courses.Close()
	}
	if s.history != nil {
		s.history.Close()
	}
	if s.maps != nil {
		s.maps.Close()
	}
	if s.settings != nil {
		s.settings.Close()
	}
	s.parent, s.student, s.courses, s.history, s.maps, s.settings = nil, nil, nil, nil, nil, nil
}

// Dispatch applies one intent. Intents for screens the current role does not have fail
// with ErrUnknownIntent.
func (s *Session) Dispatch(in Intent) error {
	if s.role == "" {
		if in.Screen != screenLogin {
			return unknown(in)
		}
		return s.dispatchLogin(in)
	}

	switch Tab(in.Screen) {
	case "tabs":
		if in.Action == "select" {
			s.tabs.Select(Tab(in.Value))
			return nil
		}
	case TabDashboard:
		if s.parent != nil {
			return s.dispatchParent(in)
		}
		return s.dispatchStudent(in)
	case TabCourses:
		if s.courses != nil {
			return s.dispatchCourses(in)
		}
	case "quiz":
		if s.courses != nil && s.courses.Quiz() != nil {
			return dispatchQuiz(s.courses.Quiz(), in)
		}
	case TabHistory:
		if s.history != nil {
			return s.dispatchHistory(in)
		}
	case TabLocation:
		if s.maps != nil {
			return s.dispatchMaps(in)
		}
	case TabSettings:
		return s.dispatchSettings(in)
	}
	return unknown(in)
}

func unknown(in Intent) error {
	return fmt.Errorf("%w: %s/%s", ErrUnknownIntent, in.Screen, in.Action)
}

func (s *Session) dispatchLogin(in Intent) error {
	switch in.Action {
	case "setUsername":
		s.login.SetUsername(in.Value)
	case "setPassword":
		s.login.SetPassword(in.Value)
	case "togglePassword":
		s.login.TogglePasswordVisibility()
	case "submit":
		s.login.Submit()
	case "dismissAlert":
		s.login.DismissAlert()
	default:
		return unknown(in)
	}
	return nil
}

func (s *Session) dispatchParent(in Intent) error {
	p := s.parent
	switch in.Action {
	case "selectStudent":
		p.SelectStudent(in.Index)
	case "openSheet":
		p.OpenSheet(Sheet(in.Value))
	case "closeSheet":
		p.CloseSheet()
	case "selectGoal":
		p.SelectGoal(domain.GoalID(in.ID))
	case "closeGoal":
		p.CloseGoal()
	case "incrementGoal":
		p.IncrementGoal(domain.GoalID(in.ID))
	case "toggleRecommendation":
		p.ToggleRecommendation(domain.CourseID(in.ID))
	case "selectDrive":
		p.SelectDrive(domain.DriveID(in.ID))
	case "closeDrive":
		p.CloseDrive()
	default:
		return unknown(in)
	}
	return nil
}

func (s *Session) dispatchStudent(in Intent) error {
	switch in.Action {
	case "selectDrive":
		s.student.SelectDrive(domain.DriveID(in.ID))
	case "closeDrive":
		s.student.CloseDrive()
	default:
		return unknown(in)
	}
	return nil
}

func (s *Session) dispatchCourses(in Intent) error {
	c := s.courses
	switch in.Action {
	case "setCategory":
		c.SetCategory(domain.Category(in.Value))
	case "setSearch":
		c.SetSearch(in.Value)
	case "openCourse":
		c.OpenCourse(domain.CourseID(in.ID))
	case "closeCourse":
		c.CloseCourse()
	case "startQuiz":
		c.StartQuiz()
	case "closeQuiz":
		c.CloseQuiz()
	default:
		return unknown(in)
	}
	return nil
}

func dispatchQuiz(q *Quiz, in Intent) error {
	switch in.Action {
	case "select":
		q.Select(in.Index)
	case "next":
		q.Advance()
	case "reset":
		q.Reset()
	default:
		return unknown(in)
	}
	return nil
}

func (s *Session) dispatchHistory(in Intent) error {
	switch in.Action {
	case "selectDrive":
		s.history.SelectDrive(domain.DriveID(in.ID))
	case "closeDrive":
		s.history.CloseDrive()
	default:
		return unknown(in)
	}
	return nil
}

func (s *Session) dispatchMaps(in Intent) error {
	switch in.Action {
	case "locateMe":
		s.maps.LocateMe()
	case "dismissAlert":
		s.maps.DismissAlert()
	default:
		return unknown(in)
	}
	return nil
}

func (s *Session) dispatchSettings(in Intent) error {
	st := s.settings
	switch in.Action {
	case "openAddStudent":
		st.OpenAddStudent()
	case "cancelAddStudent":
		st.CancelAddStudent()
	case "setField":
		value := in.Value
		if in.Field == FieldIncludeTestDate {
			value = strconv.FormatBool(in.Enabled)
		}
		st.SetField(in.Field, value)
	case "submitAddStudent":
		st.SubmitAddStudent()
	case "requestRemove":
		st.RequestRemove(domain.StudentID(in.ID))
	case "cancelRemove":
		st.CancelRemove()
	case "confirmRemove":
		st.ConfirmRemove()
	case "setLocation":
		st.SetLocationEnabled(in.Enabled)
	case "allowLocation":
		st.AllowLocation()
	case "denyLocation":
		st.DenyLocation()
	case "signOut":
		st.RequestSignOut()
	case "cancelSignOut":
		st.CancelSignOut()
	case "confirmSignOut":
		st.ConfirmSignOut()
	case "dismissMessage":
		st.DismissMessage()
	default:
		return unknown(in)
	}
	return nil
}

// Render draws the login screen, or the selected tab of the signed-in role.
func (s *Session) Render() SessionView {
	if s.role == "" {
		login := s.login.Render()
		return SessionView{Login: &login}
	}

	tabs := s.tabs.Render()
	v := SessionView{Role: s.role, Tabs: &tabs, Screen: tabs.Selected}
	switch tabs.Selected {
	case TabDashboard:
		if s.parent != nil {
			v.View = s.parent.Render()
		} else {
			v.View = s.student.Render()
		}
	case TabRoutes:
		v.View = routesPlaceholder
	case TabLocation:
		v.View = s.maps.Render()
	case TabCourses:
		v.View = s.courses.Render()
	case TabHistory:
		v.View = s.history.Render()
	case TabSettings:
		v.View = s.settings.Render()
	}
	return v
}
