// Package nav decides, for every navigation, whether the current session may
// see a destination and where to send it otherwise. The gate is stateless and
// does no I/O; it controls UI visibility only, and authorization is enforced by
// the portal service.
package nav

import "github.com/zooportal/tui/internal/session"

// Page is a navigable destination in the client.
type Page int

const (
	PageHome Page = iota
	PageLogin
	PageAbout
	PageContact
	PageUpload
	PageSymptoms
	PageResults
	PageDashboard

	pageCount
)

// String returns the display name of the page.
func (p Page) String() string {
	switch p {
	case PageHome:
		return "Home"
	case PageLogin:
		return "Login"
	case PageAbout:
		return "About"
	case PageContact:
		return "Contact"
	case PageUpload:
		return "Upload"
	case PageSymptoms:
		return "Symptoms"
	case PageResults:
		return "Results"
	case PageDashboard:
		return "Dashboard"
	default:
		return "Unknown"
	}
}

// Requirement declares who may view a page.
type Requirement struct {
	Role   session.Role
	Public bool
}

// Requires returns the declared requirement for a page. Unknown pages are
// treated as requiring nothing; Resolve redirects them home instead.
func Requires(p Page) Requirement {
	switch p {
	case PageUpload, PageSymptoms, PageResults:
		return Requirement{Role: session.RolePatient}
	case PageDashboard:
		return Requirement{Role: session.RoleDoctor}
	default:
		return Requirement{Public: true}
	}
}

// Landing is the default destination for an authenticated role.
func Landing(role session.Role) Page {
	if role == session.RoleDoctor {
		return PageDashboard
	}
	return PageUpload
}

// Decision is the outcome of resolving a navigation: render the requested
// page, or redirect to Target.
type Decision struct {
	Render bool
	Target Page
}

func render() Decision         { return Decision{Render: true} }
func redirect(p Page) Decision { return Decision{Target: p} }

// entryPage reports whether p is an entry page that an already-authenticated
// user should be bounced past.
func entryPage(p Page) bool {
	return p == PageHome || p == PageLogin
}

// Resolve applies the authorization table. It is exhaustive over
// {LoggedOut, LoggedIn(role)} x {Public, RequiresRole(role)}.
func Resolve(sess session.Session, dest Page) Decision {
	if dest < 0 || dest >= pageCount {
		return redirect(PageHome)
	}

	req := Requires(dest)

	if !sess.LoggedIn() {
		if req.Public {
			return render()
		}
		return redirect(PageLogin)
	}

	if req.Public {
		// Entry pages redirect to the role's landing page instead of showing
		// an entry screen to an already-entered user.
		if entryPage(dest) {
			return redirect(Landing(sess.Role))
		}
		return render()
	}

	if req.Role == sess.Role {
		return render()
	}
	return redirect(Landing(sess.Role))
}
