package screen_test

import (
	"fmt"
	"testing"
	"time"

	"drivequest/internal/app"
	"drivequest/internal/catalog"
	"drivequest/internal/domain"
	"drivequest/internal/location"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)

func newStore() *app.Store {
	n := 0
	return app.NewStore(seedStudents(),
		app.WithClock(func() time.Time { return today }),
		app.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
}

func seedStudents() []domain.Student {
	return []domain.Student{
		{
			ID:               "kid-1",
			Name:             "Aarin",
			Age:              "17",
			State:            "Georgia",
			Metrics:          domain.Metrics{HardBraking: 3, SafetyRating: domain.SafetyModerate, TotalHoursDriven: 22.5},
			RecentDriveScore: 85,
			WeekScore:        78,
			MonthScore:       92,
			Goals: []domain.Goal{
				{ID: "goal-stops", Title: "Complete Stops", Tip: "Count to three.", Progress: 39, Target: 40},
			},
			DriveHistory: []domain.DriveHistory{
				{ID: "d-4", Date: "Today", Score: 75, Breakdown: &domain.PerformanceBreakdown{Control: 80}, Maneuvers: []domain.ManeuverAnalysis{
					{Name: "Left Turns", Grade: "B+"},
					{Name: "Merging", Grade: "a"},
				}},
				{ID: "d-3", Date: "Yesterday", Score: 88},
				{ID: "d-2", Date: "Monday", Score: 91},
				{ID: "d-1", Date: "Last week", Score: 60},
			},
			AIRecommended: map[domain.CourseID]bool{"defensive-driving": true},
		},
		{
			ID:    "kid-2",
			Name:  "Rishan",
			Age:   "16",
			State: "Texas",
		},
	}
}

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(catalog.Document{
		Courses: []domain.Course{
			{ID: "defensive-driving", Title: "Defensive Driving", Description: "Anticipate hazards", Category: domain.CategoryCore,
				Modules: []domain.Module{{Title: "Basics", QuizID: "dd-quiz"}}},
			{ID: "parking-pro", Title: "Parking Pro", Description: "Parallel, angled, and lot parking", Category: domain.CategoryAdvanced},
		},
		Quizzes: []domain.Quiz{
			{ID: "dd-quiz", Title: "Defensive Driving Quiz", Questions: []domain.QuizQuestion{
				{Prompt: "Safe following distance?", Answers: []string{"1s", "3s"}, CorrectAnswer: 1},
				{Prompt: "Check mirrors every?", Answers: []string{"5-8s", "1 min"}, CorrectAnswer: 0},
			}},
		},
	})
	require.NoError(t, err)
	return c
}

type fakeTracker struct {
	reading   location.Reading
	listeners map[int]func(location.Reading)
	next      int
	enables   int
	disables  int
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{
		reading:   location.Reading{Authorization: location.AuthUndetermined, Enabled: true, Status: location.StatusParked},
		listeners: map[int]func(location.Reading){},
	}
}

func (f *fakeTracker) Reading() location.Reading { return f.reading }

func (f *fakeTracker) Subscribe(fn func(location.Reading)) func() {
	id := f.next
	f.next++
	f.listeners[id] = fn
	return func() { delete(f.listeners, id) }
}

func (f *fakeTracker) Enable() {
	f.enables++
	f.reading.Enabled = true
	f.reading.Authorization = location.AuthGranted
	f.publish()
}

func (f *fakeTracker) Disable() {
	f.disables++
	f.reading.Enabled = false
	f.reading.Current = nil
	f.publish()
}

func (f *fakeTracker) publish() {
	for _, fn := range f.listeners {
		fn(f.reading)
	}
}

// fakeAuth holds login attempts until resolve is called.
type fakeAuth struct {
	pending []func()
	roles   map[string]domain.Role
}

func (a *fakeAuth) Login(username, password string, done func(domain.Role)) {
	role, ok := a.roles[username+":"+password]
	if !ok {
		role = domain.RoleRejected
	}
	a.pending = append(a.pending, func() { done(role) })
}

func (a *fakeAuth) resolve() {
	pending := a.pending
	a.pending = nil
	for _, fn := range pending {
		fn()
	}
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{roles: map[string]domain.Role{
		"TeenLogin:aa123":    domain.RoleStudent,
		"ParentLogin:aa1234": domain.RoleParent,
	}}
}

// changes counts OnChange callbacks.
type changes struct{ n int }

func (c *changes) inc() { c.n++ }
