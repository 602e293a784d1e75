package screen

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"drivequest/internal/app"
	"drivequest/internal/domain"
	"drivequest/internal/location"
)

const (
	msgStudentAdded     = "Kid added successfully!"
	msgStudentRemoved   = "Kid removed successfully!"
	msgLocationEnabled  = "Location tracking enabled"
	msgLocationDisabled = "Location tracking disabled"

	defaultFormState = "Georgia"
)

// USStates are the choices of the add-student state picker.
var USStates = []string{
	"Alabama", "Alaska", "Arizona", "Arkansas", "California", "Colorado", "Connecticut", "Delaware",
	"Florida", "Georgia", "Hawaii", "Idaho", "Illinois", "Indiana", "Iowa", "Kansas", "Kentucky",
	"Louisiana", "Maine", "Maryland", "Massachusetts", "Michigan", "Minnesota", "Mississippi",
	"Missouri", "Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey", "New Mexico",
	"New York", "North Carolina", "North Dakota", "Ohio", "Oklahoma", "Oregon", "Pennsylvania",
	"Rhode Island", "South Carolina", "South Dakota", "Tennessee", "Texas", "Utah", "Vermont",
	"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
}

// Form fields accepted by SetField.
const (
	FieldName            = "name"
	FieldAge             = "age"
	FieldState           = "state"
	FieldIncludeTestDate = "includeTestDate"
	FieldTestDate        = "testDate"
)

type AddStudentForm struct {
	Name            string `json:"name"`
	Age             string `json:"age"`
	State           string `json:"state"`
	IncludeTestDate bool   `json:"includeTestDate"`
	TestDate        string `json:"testDate,omitempty"` // YYYY-MM-DD
	Error           string `json:"error,omitempty"`
	CanSubmit       bool   `json:"canSubmit"`
}

type KidRow struct {
	ID               domain.StudentID `json:"id"`
	Name             string           `json:"name"`
	Age              string           `json:"age"`
	State            string           `json:"state"`
	ExpectedTestDate *time.Time       `json:"expectedTestDate,omitempty"`
}

type LocationSettingsView struct {
	Enabled       bool                   `json:"enabled"`
	Authorization location.Authorization `json:"authorization"`
	StatusText    string                 `json:"statusText"`
	Icon          string                 `json:"icon"`
	Prompt        bool                   `json:"prompt"`
}

type SettingsView struct {
	ShowKids       bool                 `json:"showKids"`
	Kids           []KidRow             `json:"kids,omitempty"`
	Form           *AddStudentForm      `json:"form,omitempty"`
	ConfirmRemove  *KidRow              `json:"confirmRemove,omitempty"`
	ConfirmSignOut bool                 `json:"confirmSignOut"`
	Location       LocationSettingsView `json:"location"`
	Message        string               `json:"message,omitempty"`
	States         []string             `json:"states,omitempty"`
}

// SettingsOption configures Settings.
type SettingsOption func(*Settings)

// WithMessageTimeout hides confirmation messages after d. schedule must call its argument
// on the event loop.
func WithMessageTimeout(d time.Duration, schedule func(d time.Duration, fn func())) SettingsOption {
	return func(s *Settings) {
		s.hideAfter = d
		s.schedule = schedule
	}
}

// Settings is the settings tab. The parent variant also manages the student list.
type Settings struct {
	notifier
	store     StudentStore
	tracker   LocationTracker
	role      domain.Role
	onSignOut func()
	hideAfter time.Duration
	schedule  func(time.Duration, func())

	cancelStore   func()
	cancelTracker func()

	students      []domain.Student
	reading       location.Reading
	form          *AddStudentForm
	removing      domain.StudentID
	signingOut    bool
	locationOn    bool
	locationAsk   bool
	message       string
	messageSerial int
	closed        bool
}

func NewSettings(store StudentStore, tracker LocationTracker, role domain.Role, onSignOut func(), opts ...SettingsOption) *Settings {
	s := &Settings{
		store:     store,
		tracker:   tracker,
		role:      role,
		onSignOut: onSignOut,
		students:  store.Students(),
		reading:   tracker.Reading(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.locationOn = s.reading.Enabled
	s.cancelStore = store.Subscribe(func(snap app.Snapshot) {
		s.students = snap.Students
		s.changed()
	})
	s.cancelTracker = tracker.Subscribe(func(r location.Reading) {
		s.reading = r
		s.changed()
	})
	return s
}

func (s *Settings) Close() {
	s.closed = true
	s.cancelStore()
	s.cancelTracker()
}

func (s *Settings) managesStudents() bool {
	return s.role == domain.RoleParent
}

func (s *Settings) OpenAddStudent() {
	if !s.managesStudents() {
		return
	}
	s.form = &AddStudentForm{State: defaultFormState}
	s.changed()
}

func (s *Settings) CancelAddStudent() {
	s.form = nil
	s.changed()
}

// SetField edits the open add-student form. Unknown states are ignored.
func (s *Settings) SetField(field, value string) {
	if s.form == nil {
		return
	}
	switch field {
	case FieldName:
		s.form.Name = value
	case FieldAge:
		s.form.Age = value
	case FieldState:
		if !slices.Contains(USStates, value) {
			return
		}
		s.form.State = value
	case FieldIncludeTestDate:
		s.form.IncludeTestDate = value == "true"
	case FieldTestDate:
		s.form.TestDate = value
	default:
		return
	}
	s.form.Error = ""
	s.changed()
}

// SubmitAddStudent adds the student. Validation failures stay on the form as a message.
func (s *Settings) SubmitAddStudent() {
	if s.form == nil {
		return
	}
	in := domain.NewStudent{Name: s.form.Name, Age: s.form.Age, State: s.form.State}
	if s.form.IncludeTestDate {
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(s.form.TestDate))
		if err != nil {
			s.form.Error = "Expected test date must be a date like 2026-05-01"
			s.changed()
			return
		}
		in.ExpectedTestDate = &d
	}

	if _, err := s.store.AddStudent(in); err != nil {
		s.form.Error = formError(err)
		s.changed()
		return
	}
	s.form = nil
	s.flash(msgStudentAdded)
}

func formError(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("%s %s", displayField(verr.Field), verr.Message)
	}
	return err.Error()
}

func displayField(field string) string {
	switch strings.ToLower(field) {
	case FieldName:
		return "Name"
	case FieldAge:
		return "Age"
	case FieldState:
		return "State"
	default:
		return field
	}
}

// RequestRemove asks for confirmation before removing a student.
func (s *Settings) RequestRemove(id domain.StudentID) {
	if !s.managesStudents() {
		return
	}
	s.removing = id
	s.changed()
}

func (s *Settings) CancelRemove() {
	s.removing = ""
	s.changed()
}

func (s *Settings) ConfirmRemove() {
	if s.removing == "" {
		return
	}
	id := s.removing
	s.removing = ""
	s.store.RemoveStudent(id)
	s.flash(msgStudentRemoved)
}

// SetLocationEnabled switches tracking. Turning it on first asks for confirmation.
func (s *Settings) SetLocationEnabled(on bool) {
	if on {
		s.locationOn = true
		s.locationAsk = true
		s.changed()
		return
	}
	s.locationOn = false
	s.locationAsk = false
	s.tracker.Disable()
	s.flash(msgLocationDisabled)
}

func (s *Settings) AllowLocation() {
	if !s.locationAsk {
		return
	}
	s.locationAsk = false
	s.tracker.Enable()
	s.flash(msgLocationEnabled)
}

func (s *Settings) DenyLocation() {
	if !s.locationAsk {
		return
	}
	s.locationAsk = false
	s.locationOn = false
	s.changed()
}

func (s *Settings) RequestSignOut() {
	s.signingOut = true
	s.changed()
}

func (s *Settings) CancelSignOut() {
	s.signingOut = false
	s.changed()
}

func (s *Settings) ConfirmSignOut() {
	if !s.signingOut {
		return
	}
	s.signingOut = false
	if s.onSignOut != nil {
		s.onSignOut()
	}
}

func (s *Settings) DismissMessage() {
	s.message = ""
	s.changed()
}

func (s *Settings) flash(msg string) {
	s.message = msg
	s.messageSerial++
	serial := s.messageSerial
	s.changed()

	if s.schedule == nil || s.hideAfter <= 0 {
		return
	}
	s.schedule(s.hideAfter, func() {
		if !s.closed && s.messageSerial == serial && s.message != "" {
			s.message = ""
			s.changed()
		}
	})
}

func (s *Settings) Render() SettingsView {
	v := SettingsView{
		ShowKids:       s.managesStudents(),
		ConfirmSignOut: s.signingOut,
		Message:        s.message,
		Location:       s.renderLocation(),
	}
	if !v.ShowKids {
		return v
	}

	v.Kids = make([]KidRow, len(s.students))
	for i, st := range s.students {
		v.Kids[i] = KidRow{ID: st.ID, Name: st.Name, Age: st.Age, State: st.State, ExpectedTestDate: st.ExpectedTestDate}
		if st.ID == s.removing {
			row := v.Kids[i]
			v.ConfirmRemove = &row
		}
	}
	if s.form != nil {
		f := *s.form
		f.CanSubmit = f.Name != "" && f.Age != ""
		v.Form = &f
		v.States = USStates
	}
	return v
}

func (s *Settings) renderLocation() LocationSettingsView {
	v := LocationSettingsView{
		Enabled:       s.locationOn,
		Authorization: s.reading.Authorization,
		Prompt:        s.locationAsk,
	}
	switch s.reading.Authorization {
	case location.AuthGranted:
		v.Icon = "location.fill"
		v.StatusText = "Location permission granted"
	case location.AuthDenied, location.AuthRestricted:
		v.Icon = "location.slash"
		v.StatusText = "Location permission denied - Go to Settings"
	case location.AuthUndetermined:
		v.Icon = "location"
		v.StatusText = "Location permission not requested"
	default:
		v.Icon = "location"
		v.StatusText = "Unknown location status"
	}
	if !s.locationOn {
		v.StatusText = "Location tracking disabled in app"
	}
	return v
}
