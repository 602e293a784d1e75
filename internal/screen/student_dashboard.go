package screen

import (
	"drivequest/internal/app"
	"drivequest/internal/domain"
	"drivequest/internal/selector"
)

// DefaultRequiredHours is the supervised driving requirement used when none is configured.
const DefaultRequiredHours = 40.0

type LicenseView struct {
	HoursDriven    float64 `json:"hoursDriven"`
	RequiredHours  float64 `json:"requiredHours"`
	HoursRemaining float64 `json:"hoursRemaining"`
	Progress       float64 `json:"progress"`
}

type StudentDashboardView struct {
	Student      *StudentOverview `json:"student,omitempty"`
	License      LicenseView      `json:"license"`
	Goals        []GoalView       `json:"goals,omitempty"`
	RecentDrives []DriveSummary   `json:"recentDrives,omitempty"`
	Drive        *DriveDetailView `json:"drive,omitempty"`
}

// studentFocus follows the student a student-role session is signed in as. When the
// configured id is empty or no longer present it falls back to the first student.
type studentFocus struct {
	id       domain.StudentID
	students []domain.Student
}

func (f *studentFocus) current() (domain.Student, bool) {
	for _, s := range f.students {
		if s.ID == f.id {
			return s, true
		}
	}
	if len(f.students) == 0 {
		return domain.Student{}, false
	}
	return f.students[0], true
}

// StudentDashboard is the home tab of the student role.
type StudentDashboard struct {
	notifier
	focus    studentFocus
	required float64
	cancel   func()
	drive    domain.DriveID
}

func NewStudentDashboard(store StudentStore, id domain.StudentID, requiredHours float64) *StudentDashboard {
	if requiredHours <= 0 {
		requiredHours = DefaultRequiredHours
	}
	d := &StudentDashboard{
		focus:    studentFocus{id: id, students: store.Students()},
		required: requiredHours,
	}
	d.cancel = store.Subscribe(func(snap app.Snapshot) {
		d.focus.students = snap.Students
		d.changed()
	})
	return d
}

func (d *StudentDashboard) Close() {
	d.cancel()
}

func (d *StudentDashboard) SelectDrive(id domain.DriveID) {
	d.drive = id
	d.changed()
}

func (d *StudentDashboard) CloseDrive() {
	d.drive = ""
	d.changed()
}

func (d *StudentDashboard) Render() StudentDashboardView {
	v := StudentDashboardView{License: LicenseView{RequiredHours: d.required, HoursRemaining: d.required}}
	s, ok := d.focus.current()
	if !ok {
		return v
	}
	overview := renderOverview(s)
	hours := s.Metrics.TotalHoursDriven
	v.Student = &overview
	v.License = LicenseView{
		HoursDriven:    hours,
		RequiredHours:  d.required,
		HoursRemaining: selector.HoursRemaining(hours, d.required),
		Progress:       selector.LicenseProgress(hours, d.required),
	}
	v.Goals = renderGoals(s.Goals)
	v.RecentDrives = summarizeDrives(s.DriveHistory, recentDriveCount)
	if drive, ok := findDrive(s, d.drive); ok {
		detail := RenderDriveDetail(drive)
		v.Drive = &detail
	}
	return v
}

type HistoryView struct {
	Drives []DriveSummary   `json:"drives"`
	Drive  *DriveDetailView `json:"drive,omitempty"`
}

// History lists every drive of the signed-in student, newest first.
type History struct {
	notifier
	focus  studentFocus
	cancel func()
	drive  domain.DriveID
}

func NewHistory(store StudentStore, id domain.StudentID) *History {
	h := &History{focus: studentFocus{id: id, students: store.Students()}}
	h.cancel = store.Subscribe(func(snap app.Snapshot) {
		h.focus.students = snap.Students
		h.changed()
	})
	return h
}

func (h *History) Close() {
	h.cancel()
}

func (h *History) SelectDrive(id domain.DriveID) {
	h.drive = id
	h.changed()
}

func (h *History) CloseDrive() {
	h.drive = ""
	h.changed()
}

func (h *History) Render() HistoryView {
	s, ok := h.focus.current()
	if !ok {
		return HistoryView{Drives: []DriveSummary{}}
	}
	v := HistoryView{Drives: summarizeDrives(s.DriveHistory, -1)}
	if d, ok := findDrive(s, h.drive); ok {
		detail := RenderDriveDetail(d)
		v.Drive = &detail
	}
	return v
}
