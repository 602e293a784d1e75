// Package screen holds the screen controllers. A controller keeps its own transient
// selection state, subscribes to the store or tracker it renders, and maps both to a
// plain view value. Controllers are not safe for concurrent use; drive them from the
// event loop.
package screen

import (
	"errors"

	"drivequest/internal/app"
	"drivequest/internal/domain"
	"drivequest/internal/location"
)

// ErrUnknownIntent is returned for intents no controller handles.
var ErrUnknownIntent = errors.New("unknown intent")

// StudentStore is the part of the application store the screens use.
type StudentStore interface {
	Students() []domain.Student
	Student(id domain.StudentID) (domain.Student, bool)
	Subscribe(l app.Listener) (cancel func())
	AddStudent(in domain.NewStudent) (domain.StudentID, error)
	RemoveStudent(id domain.StudentID)
	AdjustGoalProgress(studentID domain.StudentID, goalID domain.GoalID, delta int)
	ToggleRecommendation(studentID domain.StudentID, courseID domain.CourseID, kind domain.RecommendationKind)
}

// CourseCatalog is the read-only course content.
type CourseCatalog interface {
	Courses() []domain.Course
	QuizForCourse(id domain.CourseID) (domain.Quiz, error)
}

// LocationTracker is the injected movement source.
type LocationTracker interface {
	Reading() location.Reading
	Subscribe(fn func(location.Reading)) (cancel func())
	Enable()
	Disable()
}

// Authenticator resolves login attempts asynchronously.
type Authenticator interface {
	Login(username, password string, done func(domain.Role))
}

// notifier fans a "needs re-render" signal out to the owner of a controller.
type notifier struct {
	onChange func()
}

// OnChange registers fn to run after every state change. Only one callback is kept.
func (n *notifier) OnChange(fn func()) {
	n.onChange = fn
}

func (n *notifier) changed() {
	if n.onChange != nil {
		n.onChange()
	}
}

// studentAt resolves a list index against the current snapshot, clamping stale indexes.
func studentAt(students []domain.Student, i int) (domain.Student, int, bool) {
	if len(students) == 0 {
		return domain.Student{}, 0, false
	}
	i = min(max(i, 0), len(students)-1)
	return students[i], i, true
}
