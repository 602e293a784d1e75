package screen

import (
	"time"

	"drivequest/internal/app"
	"drivequest/internal/domain"
	"drivequest/internal/selector"
)

// Sheet is a modal presented over a dashboard.
type Sheet string

const (
	SheetNone            Sheet = ""
	SheetDetailedMetrics Sheet = "detailedMetrics"
	SheetAIInsights      Sheet = "aiInsights"
	SheetCourses         Sheet = "courses"
	SheetDriveHistory    Sheet = "driveHistory"
)

const recentDriveCount = 3

type StudentTab struct {
	ID   domain.StudentID `json:"id"`
	Name string           `json:"name"`
}

type ParentDashboardView struct {
	Students     []StudentTab     `json:"students"`
	Selected     int              `json:"selected"`
	Student      *StudentOverview `json:"student,omitempty"`
	Goals        []GoalView       `json:"goals,omitempty"`
	RecentDrives []DriveSummary   `json:"recentDrives,omitempty"`
	Sheet        Sheet            `json:"sheet,omitempty"`
	Goal         *GoalDetailView  `json:"goal,omitempty"`

	// Sheet content; only the open sheet is filled in.
	FocusAreas        []selector.FocusArea `json:"focusAreas,omitempty"`
	AIRecommendations []CourseCard         `json:"aiRecommendations,omitempty"`
	Courses           []CourseCard         `json:"courses,omitempty"`
	Drives            []DriveSummary       `json:"drives,omitempty"`
	Drive             *DriveDetailView     `json:"drive,omitempty"`
}

// ParentDashboard shows one student at a time, picked by index. The index is clamped
// against the latest snapshot so removing a student never leaves it dangling.
type ParentDashboard struct {
	notifier
	store    StudentStore
	catalog  CourseCatalog
	now      func() time.Time
	cancel   func()
	students []domain.Student
	selected int
	sheet    Sheet
	goal     domain.GoalID
	drive    domain.DriveID
}

func NewParentDashboard(store StudentStore, catalog CourseCatalog, now func() time.Time) *ParentDashboard {
	if now == nil {
		now = time.Now
	}
	p := &ParentDashboard{
		store:    store,
		catalog:  catalog,
		now:      now,
		students: store.Students(),
	}
	p.cancel = store.Subscribe(p.onSnapshot)
	return p
}

func (p *ParentDashboard) onSnapshot(snap app.Snapshot) {
	p.students = snap.Students
	_, p.selected, _ = studentAt(p.students, p.selected)
	p.changed()
}

// Close drops the store subscription.
func (p *ParentDashboard) Close() {
	p.cancel()
}

func (p *ParentDashboard) current() (domain.Student, bool) {
	s, _, ok := studentAt(p.students, p.selected)
	return s, ok
}

func (p *ParentDashboard) SelectStudent(i int) {
	if i < 0 || i >= len(p.students) || i == p.selected {
		return
	}
	p.selected = i
	p.goal = ""
	p.drive = ""
	p.changed()
}

func (p *ParentDashboard) OpenSheet(s Sheet) {
	switch s {
	case SheetDetailedMetrics, SheetAIInsights, SheetCourses, SheetDriveHistory:
	default:
		return
	}
	p.sheet = s
	p.drive = ""
	p.changed()
}

func (p *ParentDashboard) CloseSheet() {
	p.sheet = SheetNone
	p.drive = ""
	p.changed()
}

func (p *ParentDashboard) SelectGoal(id domain.GoalID) {
	p.goal = id
	p.changed()
}

func (p *ParentDashboard) CloseGoal() {
	p.goal = ""
	p.changed()
}

// IncrementGoal logs one practice repetition on a goal of the selected student.
func (p *ParentDashboard) IncrementGoal(id domain.GoalID) {
	if s, ok := p.current(); ok {
		p.store.AdjustGoalProgress(s.ID, id, 1)
	}
}

// ToggleRecommendation flips the parent recommendation of a course for the selected student.
func (p *ParentDashboard) ToggleRecommendation(id domain.CourseID) {
	if s, ok := p.current(); ok {
		p.store.ToggleRecommendation(s.ID, id, domain.RecommendedByParent)
	}
}

// SelectDrive opens a trip report inside the drive history sheet.
func (p *ParentDashboard) SelectDrive(id domain.DriveID) {
	p.sheet = SheetDriveHistory
	p.drive = id
	p.changed()
}

func (p *ParentDashboard) CloseDrive() {
	p.drive = ""
	p.changed()
}

func (p *ParentDashboard) Render() ParentDashboardView {
	v := ParentDashboardView{Students: make([]StudentTab, len(p.students))}
	for i, s := range p.students {
		v.Students[i] = StudentTab{ID: s.ID, Name: s.Name}
	}
	s, idx, ok := studentAt(p.students, p.selected)
	if !ok {
		return v
	}
	v.Selected = idx

	overview := renderOverview(s)
	v.Student = &overview
	v.Goals = renderGoals(s.Goals)
	v.RecentDrives = summarizeDrives(s.DriveHistory, recentDriveCount)
	if g := s.Goal(p.goal); g != nil {
		detail := renderGoalDetail(*g, p.now())
		v.Goal = &detail
	}

	v.Sheet = p.sheet
	switch p.sheet {
	case SheetAIInsights:
		v.FocusAreas = selector.FocusAreas(s.Metrics)
		v.AIRecommendations = courseCards(selector.RecommendedCoursesFor(s, p.catalog.Courses(), domain.RecommendedByAI), s)
	case SheetCourses:
		v.Courses = courseCards(p.catalog.Courses(), s)
	case SheetDriveHistory:
		v.Drives = summarizeDrives(s.DriveHistory, -1)
		if d, ok := findDrive(s, p.drive); ok {
			detail := RenderDriveDetail(d)
			v.Drive = &detail
		}
	}
	return v
}
