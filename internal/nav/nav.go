// Package nav is the navigation state machine: it maps (roles, requested
// destination) to the screen a client should render and the canonical URL
// for it. URLs are only hints: every transition re-validates the target
// against the rbac predicates, so editing the address bar can never reach a
// forbidden screen.
package nav

import "github.com/mazzdev/pilotage/internal/rbac"

// Screen identifies one of the renderable application screens.
type Screen string

const (
	ScreenLogin                 Screen = "login"
	ScreenAppSelector           Screen = "app_selector"
	ScreenAdminDashboard        Screen = "admin_dashboard"
	ScreenAdminTimeTracking     Screen = "admin_time_tracking"
	ScreenAdminUsers            Screen = "admin_users"
	ScreenTimeTracking          Screen = "time_tracking"
	ScreenShareholderDashboard  Screen = "shareholder_dashboard"
	ScreenShareholderManagement Screen = "shareholder_management"
)

// State is a screen plus, for product-scoped screens, the product it shows.
type State struct {
	Screen Screen   `json:"screen"`
	App    rbac.App `json:"app,omitempty"`
}

// Home is the fallback state for every denied or unknown destination.
var Home = State{Screen: ScreenAppSelector}

// Result is the outcome of a transition. Denied transitions are normal
// results: the machine lands on the fallback state with a reason, it never
// errors past the caller.
type Result struct {
	State  State  `json:"state"`
	URL    string `json:"url"`
	Denied bool   `json:"denied"`
	Reason string `json:"reason,omitempty"`
}

func isAdminScreen(s Screen) bool {
	return s == ScreenAdminDashboard || s == ScreenAdminTimeTracking || s == ScreenAdminUsers
}

// Authorize evaluates the predicate gating a state against the given roles.
func Authorize(s State, roles rbac.RoleSet) rbac.Decision {
	switch s.Screen {
	case ScreenAdminDashboard, ScreenAdminTimeTracking, ScreenAdminUsers:
		return rbac.CanAccessAdmin(roles)
	case ScreenTimeTracking:
		return rbac.CanAccessProduct(roles, s.App)
	case ScreenShareholderDashboard, ScreenShareholderManagement:
		return rbac.CanAccessShareholderArea(roles)
	default:
		return rbac.Decision{Allowed: true}
	}
}

// Navigate moves from current to target for a user action. Switching
// between the two admin products keeps the current subpage; every other
// entry into the admin area lands on its dashboard default. A denied target
// falls back to the app selector with the URL reset to "/".
func Navigate(current, target State, roles rbac.RoleSet) Result {
	if isAdminScreen(current.Screen) && target.Screen == ScreenAdminDashboard && target.App != current.App {
		target.Screen = current.Screen
	}

	if d := Authorize(target, roles); !d.Allowed {
		return Result{State: Home, URL: RenderURL(Home), Denied: true, Reason: d.Reason}
	}

	return Result{State: target, URL: RenderURL(target)}
}

// ResolvePath handles initial loads and history pops: the path is parsed
// into a candidate state and re-validated against current roles.
func ResolvePath(path string, roles rbac.RoleSet) Result {
	target := ParseURL(path)
	if d := Authorize(target, roles); !d.Allowed {
		return Result{State: Home, URL: RenderURL(Home), Denied: true, Reason: d.Reason}
	}
	return Result{State: target, URL: RenderURL(target)}
}

// Logout transitions any state back to the login screen and resets the URL.
func Logout() Result {
	return Result{State: State{Screen: ScreenLogin}, URL: "/"}
}
