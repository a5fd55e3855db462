// Package session owns the authenticated identity and its durability across
// process restarts. It performs no network I/O; the portal service is the
// trust boundary and this state only controls what the UI shows.
package session

// Role is a portal role. The wire values match what the service expects.
type Role string

const (
	RolePatient Role = "user"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether the role is one the portal knows.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// Session is the authenticated identity. UserID and Role are both present or
// both absent; there is no partially authenticated state.
type Session struct {
	UserID string
	Role   Role
}

// LoggedIn reports whether the session holds an authenticated identity.
func (s Session) LoggedIn() bool {
	return s.UserID != "" && s.Role.Valid()
}
