package domain

// Role is the single authorization axis of the Barruu platform.
type Role string

const (
	RoleUser      Role = "user"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

// roleRank orders roles for access checks. Admin implies developer-level
// access; this table is the one authoritative place that hierarchy lives.
var roleRank = map[Role]int{
	RoleUser:      0,
	RoleDeveloper: 1,
	RoleAdmin:     2,
}

// Valid reports whether r is one of the roles the server can return.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether a holder of role r is granted access that
// requires the given role. Unknown roles never satisfy anything.
func (r Role) Satisfies(required Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	want, ok := roleRank[required]
	if !ok {
		return false
	}
	return have >= want
}

// DeveloperProfile is the optional sub-record attached to developer accounts.
type DeveloperProfile struct {
	Website  string `json:"website,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Verified bool   `json:"verified"`
}

// User is the account record as returned by the Barruu API. The server is
// authoritative; this layer never validates or mutates it beyond caching.
type User struct {
	ID               string            `json:"_id"`
	Username         string            `json:"username"`
	Email            string            `json:"email"`
	Role             Role              `json:"role"`
	Verified         bool              `json:"verified,omitempty"`
	DeveloperProfile *DeveloperProfile `json:"developerProfile,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.Satisfies(RoleAdmin)
}

// IsDeveloper reports whether the user holds developer-level access
// (developer or admin).
func (u *User) IsDeveloper() bool {
	return u != nil && u.Role.Satisfies(RoleDeveloper)
}

// ProfileUpdate carries the fields of a partial profile update.
// Empty fields are omitted from the request so the server keeps them.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// DeveloperUpgrade carries the optional fields of a role elevation request.
type DeveloperUpgrade struct {
	Website string `json:"website,omitempty"`
	Bio     string `json:"bio,omitempty"`
}
