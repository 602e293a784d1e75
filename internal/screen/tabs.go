package screen

import (
	"slices"

	"drivequest/internal/domain"
)

type Tab string

const (
	TabDashboard Tab = "dashboard"
	TabRoutes    Tab = "routes"
	TabLocation  Tab = "location"
	TabCourses   Tab = "courses"
	TabHistory   Tab = "history"
	TabSettings  Tab = "settings"
)

// TabsFor returns the tab bar of a role. Rejected or unknown roles get no tabs.
func TabsFor(role domain.Role) []Tab {
	switch role {
	case domain.RoleParent:
		return []Tab{TabDashboard, TabRoutes, TabLocation, TabSettings}
	case domain.RoleStudent:
		return []Tab{TabDashboard, TabCourses, TabHistory, TabSettings}
	default:
		return nil
	}
}

type TabsView struct {
	Tabs     []Tab `json:"tabs"`
	Selected Tab   `json:"selected"`
}

// Tabs tracks the selected tab of a signed-in role.
type Tabs struct {
	notifier
	tabs     []Tab
	selected Tab
}

func NewTabs(role domain.Role) *Tabs {
	t := &Tabs{tabs: TabsFor(role)}
	if len(t.tabs) > 0 {
		t.selected = t.tabs[0]
	}
	return t
}

// Select switches tabs; tabs the role does not have are ignored.
func (t *Tabs) Select(tab Tab) {
	if tab == t.selected || !slices.Contains(t.tabs, tab) {
		return
	}
	t.selected = tab
	t.changed()
}

func (t *Tabs) Selected() Tab { return t.selected }

func (t *Tabs) Render() TabsView {
	return TabsView{Tabs: append([]Tab(nil), t.tabs...), Selected: t.selected}
}
