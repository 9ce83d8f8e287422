// Package nav builds the site navigation for the current session.
package nav

import "github.com/small-engineer/go-web-serv/recipe/internal/domain"

const (
	PathHome      = "/"
	PathLogin     = "/login"
	PathRegister  = "/register"
	PathDashboard = "/dashboard"
	PathLogout    = "/logout"
)

type Link struct {
	Label string
	Href  string
	Class string
	// Post renders the link as a button submitting a POST form.
	Post bool
	// Auth marks entries that depend on the session. Render replaces them.
	Auth bool
}

// Bar is the navigation region: site links plus the login/logout action area.
type Bar struct {
	Links   []Link
	Actions []Link
}

func DefaultBar() Bar {
	return Bar{
		Links: []Link{
			{Label: "Home", Href: PathHome, Class: "nav-link"},
		},
	}
}

// Render returns b with the session-dependent entries for u. Auth entries from an
// earlier render are dropped from Links, and Actions is replaced wholesale, so
// rendering twice gives the same result as rendering once.
func Render(b Bar, u *domain.User) Bar {
	out := Bar{
		Links: make([]Link, 0, len(b.Links)),
	}
	for _, l := range b.Links {
		if l.Auth {
			continue
		}
		out.Links = append(out.Links, l)
	}

	if u != nil {
		out.Actions = []Link{
			{Label: "Dashboard", Href: PathDashboard, Class: "btn btn-outline-success btn-sm", Auth: true},
			{Label: "Logout", Href: PathLogout, Class: "btn btn-outline-danger btn-sm", Post: true, Auth: true},
		}
		return out
	}
	out.Actions = []Link{
		{Label: "Login", Href: PathLogin, Class: "btn btn-outline-success btn-sm", Auth: true},
		{Label: "Register", Href: PathRegister, Class: "btn btn-success btn-sm", Auth: true},
	}
	return out
}

// Authenticated reports whether b was rendered for a logged-in user.
func (b Bar) Authenticated() bool {
	for _, l := range b.Actions {
		if l.Href == PathLogout {
			return true
		}
	}
	return false
}
