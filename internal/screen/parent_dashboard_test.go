package screen_test

import (
	"testing"
	"time"

	"drivequest/internal/domain"
	"drivequest/internal/screen"
	"drivequest/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParentDashboard(t *testing.T) (*screen.ParentDashboard, *changes) {
	t.Helper()
	d := screen.NewParentDashboard(newStore(), newCatalog(t), func() time.Time { return today })
	t.Cleanup(d.Close)
	c := &changes{}
	d.OnChange(c.inc)
	return d, c
}

func TestParentDashboardShowsSelectedStudent(t *testing.T) {
	d, _ := newParentDashboard(t)

	v := d.Render()
	require.Len(t, v.Students, 2)
	require.NotNil(t, v.Student)
	assert.Equal(t, "Aarin", v.Student.Name)
	assert.Equal(t, selector.TierMid, v.Student.Week.Tone)
	assert.Equal(t, selector.TierBest, v.Student.Month.Tone)
	assert.Equal(t, "Moderate", v.Student.Rating.Label)
	assert.Len(t, v.RecentDrives, 3)
	assert.Equal(t, domain.DriveID("d-4"), v.RecentDrives[0].ID)

	d.SelectStudent(1)
	assert.Equal(t, "Rishan", d.Render().Student.Name)
	d.SelectStudent(5)
	assert.Equal(t, 1, d.Render().Selected)
}

func TestParentDashboardClampsAfterRemoval(t *testing.T) {
	store := newStore()
	d := screen.NewParentDashboard(store, newCatalog(t), nil)
	defer d.Close()

	d.SelectStudent(1)
	store.RemoveStudent("kid-2")

	v := d.Render()
	assert.Equal(t, 0, v.Selected)
	assert.Equal(t, "Aarin", v.Student.Name)

	store.RemoveStudent("kid-1")
	v = d.Render()
	assert.Empty(t, v.Students)
	assert.Nil(t, v.Student)
}

func TestParentDashboardIncrementGoal(t *testing.T) {
	store := newStore()
	d := screen.NewParentDashboard(store, newCatalog(t), func() time.Time { return today })
	defer d.Close()
	c := &changes{}
	d.OnChange(c.inc)

	d.SelectGoal("goal-stops")
	d.IncrementGoal("goal-stops")
	d.IncrementGoal("goal-stops")

	v := d.Render()
	require.NotNil(t, v.Goal)
	assert.Equal(t, 40, v.Goal.Progress, "clamped at target")
	assert.Equal(t, 1.0, v.Goal.Fraction)
	assert.Equal(t, "Count to three.", v.Goal.Tip)
	require.Len(t, v.Goal.Practice, 7)
	assert.Equal(t, 1, v.Goal.Practice[6].Count)
	assert.Equal(t, 2, c.n, "select plus one applied increment")
}

func TestParentDashboardSheets(t *testing.T) {
	d, _ := newParentDashboard(t)

	d.OpenSheet(screen.SheetAIInsights)
	v := d.Render()
	assert.Len(t, v.FocusAreas, 3)
	require.Len(t, v.AIRecommendations, 1)
	assert.Equal(t, "Defensive Driving", v.AIRecommendations[0].Title)
	assert.Nil(t, v.Courses)

	d.OpenSheet(screen.SheetCourses)
	d.ToggleRecommendation("parking-pro")
	v = d.Render()
	require.Len(t, v.Courses, 2)
	assert.True(t, v.Courses[1].ParentRecommended)
	assert.True(t, v.Courses[0].AIRecommended)

	d.ToggleRecommendation("parking-pro")
	assert.False(t, d.Render().Courses[1].ParentRecommended)

	d.OpenSheet("bogus")
	assert.Equal(t, screen.SheetCourses, d.Render().Sheet)
	d.CloseSheet()
	assert.Equal(t, screen.SheetNone, d.Render().Sheet)
}

func TestParentDashboardDriveDetail(t *testing.T) {
	d, _ := newParentDashboard(t)

	d.SelectDrive("d-4")
	v := d.Render()
	assert.Equal(t, screen.SheetDriveHistory, v.Sheet)
	assert.Len(t, v.Drives, 4)
	require.NotNil(t, v.Drive)
	assert.Equal(t, selector.TierLow, v.Drive.Tone, "75 is low on the trip scale")
	assert.Equal(t, selector.TierMid, v.Drives[0].Tone, "but mid in lists")
	assert.Equal(t, 80, v.Drive.Breakdown.Control)
	assert.Equal(t, selector.GradeB, v.Drive.Maneuvers[0].GradeClass)
	assert.Equal(t, selector.GradeOther, v.Drive.Maneuvers[1].GradeClass)

	d.SelectDrive("d-3")
	assert.Equal(t, domain.PerformanceBreakdown{}, d.Render().Drive.Breakdown)

	d.CloseDrive()
	assert.Nil(t, d.Render().Drive)
}
