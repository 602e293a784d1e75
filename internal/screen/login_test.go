package screen_test

import (
	"testing"

	"drivequest/internal/domain"
	"drivequest/internal/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSubmitDisabledUntilBothFieldsSet(t *testing.T) {
	auth := newFakeAuth()
	login := screen.NewLogin(auth, nil)

	login.Submit()
	assert.Empty(t, auth.pending)

	login.SetUsername("TeenLogin")
	assert.False(t, login.Render().CanSubmit)
	login.SetPassword("aa123")
	assert.True(t, login.Render().CanSubmit)
}

func TestLoginResolvesRole(t *testing.T) {
	auth := newFakeAuth()
	var got domain.Role
	login := screen.NewLogin(auth, func(r domain.Role) { got = r })

	login.SetUsername("ParentLogin")
	login.SetPassword("aa1234")
	login.Submit()

	v := login.Render()
	assert.True(t, v.Loading)
	assert.False(t, v.CanSubmit, "no second attempt while loading")
	login.Submit()
	require.Len(t, auth.pending, 1)

	auth.resolve()
	assert.Equal(t, domain.RoleParent, got)
	assert.False(t, login.Render().Loading)
	assert.Empty(t, login.Render().Password)
}

func TestLoginClosedIgnoresPendingAttempt(t *testing.T) {
	auth := newFakeAuth()
	called := false
	login := screen.NewLogin(auth, func(domain.Role) { called = true })

	login.SetUsername("TeenLogin")
	login.SetPassword("aa123")
	login.Submit()
	login.Close()
	auth.resolve()

	assert.False(t, called)
}

func TestLoginRejectedShowsAlert(t *testing.T) {
	auth := newFakeAuth()
	called := false
	login := screen.NewLogin(auth, func(domain.Role) { called = true })
	c := &changes{}
	login.OnChange(c.inc)

	login.SetUsername("TeenLogin")
	login.SetPassword("wrong")
	login.Submit()
	auth.resolve()

	v := login.Render()
	assert.False(t, called)
	require.NotNil(t, v.Alert)
	assert.Equal(t, "Login Failed", v.Alert.Title)
	assert.Equal(t, "Invalid username or password. Please check your credentials and try again.", v.Alert.Message)
	assert.Equal(t, "wrong", v.Password)
	assert.Equal(t, 4, c.n)

	login.DismissAlert()
	assert.Nil(t, login.Render().Alert)
}

func TestTabsPerRole(t *testing.T) {
	assert.Equal(t, []screen.Tab{screen.TabDashboard, screen.TabRoutes, screen.TabLocation, screen.TabSettings}, screen.TabsFor(domain.RoleParent))
	assert.Equal(t, []screen.Tab{screen.TabDashboard, screen.TabCourses, screen.TabHistory, screen.TabSettings}, screen.TabsFor(domain.RoleStudent))
	assert.Empty(t, screen.TabsFor(domain.RoleRejected))

	tabs := screen.NewTabs(domain.RoleStudent)
	assert.Equal(t, screen.TabDashboard, tabs.Selected())
	tabs.Select(screen.TabLocation)
	assert.Equal(t, screen.TabDashboard, tabs.Selected(), "students have no location tab")
	tabs.Select(screen.TabCourses)
	assert.Equal(t, screen.TabCourses, tabs.Render().Selected)
}
