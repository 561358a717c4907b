package nav

import (
	"strings"

	"github.com/mazzdev/pilotage/internal/rbac"
)

// URL slugs carry the historical product names.
const (
	slugLMNP = "lmnp_ai"
	slugSCI  = "sci_ai"
)

func appFromSlug(slug string) (rbac.App, bool) {
	switch slug {
	case slugLMNP:
		return rbac.AppLMNP, true
	case slugSCI:
		return rbac.AppSCI, true
	}
	return "", false
}

func slugFromApp(app rbac.App) string {
	if app == rbac.AppSCI {
		return slugSCI
	}
	return slugLMNP
}

// ParseURL maps a path to the state it hints at. It is total: anything
// unrecognized resolves to the app selector.
func ParseURL(path string) State {
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return Home
	}

	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	switch parts[0] {
	case "suivi":
		if len(parts) == 2 {
			if app, ok := appFromSlug(parts[1]); ok {
				return State{Screen: ScreenTimeTracking, App: app}
			}
		}
	case "admin":
		if len(parts) < 2 {
			break
		}
		app, ok := appFromSlug(parts[1])
		if !ok {
			break
		}
		if len(parts) == 2 {
			return State{Screen: ScreenAdminDashboard, App: app}
		}
		if len(parts) == 3 {
			switch parts[2] {
			case "time-tracking":
				return State{Screen: ScreenAdminTimeTracking, App: app}
			case "users":
				return State{Screen: ScreenAdminUsers, App: app}
			}
		}
	case "actionnaires":
		if len(parts) == 1 {
			return State{Screen: ScreenShareholderDashboard}
		}
		if len(parts) == 2 && parts[1] == "ajouter" {
			return State{Screen: ScreenShareholderManagement}
		}
	}

	return Home
}

// RenderURL produces the canonical URL for a state. It is total: states
// without a URL of their own render as "/".
func RenderURL(s State) string {
	switch s.Screen {
	case ScreenTimeTracking:
		return "/suivi/" + slugFromApp(s.App)
	case ScreenAdminDashboard:
		return "/admin/" + slugFromApp(s.App)
	case ScreenAdminTimeTracking:
		return "/admin/" + slugFromApp(s.App) + "/time-tracking"
	case ScreenAdminUsers:
		return "/admin/" + slugFromApp(s.App) + "/users"
	case ScreenShareholderDashboard:
		return "/actionnaires"
	case ScreenShareholderManagement:
		return "/actionnaires/ajouter"
	default:
		return "/"
	}
}
