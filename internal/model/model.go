// Package model defines domain entities shared by the session, list and API layers.
package model

// Role classifies the signed-in user and gates the administrative area.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Backend role identifiers. Every identifier other than RoleIDTeacher maps
// to student; revisit if a third role appears.
const (
	RoleIDStudent = 1
	RoleIDTeacher = 2
)

// RoleFromID derives the client-side role from the backend role identifier.
func RoleFromID(roleID int) Role {
	if roleID == RoleIDTeacher {
		return RoleTeacher
	}
	return RoleStudent
}

// UserProfile is the immutable account snapshot returned at login/restore time.
// It is not re-fetched opportunistically.
type UserProfile struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	RoleID   int    `json:"roleId"`
}

// Role derives the profile's classification from its role identifier.
func (u UserProfile) Role() Role { return RoleFromID(u.RoleID) }

// Session binds the authenticated identity and credential to the current process.
// Token is present iff User is present; partial sessions are not representable.
type Session struct {
	User  *UserProfile
	Token string
}

// Signed reports whether the session holds an authenticated user.
func (s Session) Signed() bool { return s.User != nil }

// Role returns the signed-in user's role, or RoleStudent for an empty session.
func (s Session) Role() Role {
	if s.User == nil {
		return RoleStudent
	}
	return s.User.Role()
}

// Post is a feed entry. The list engine treats it as opaque beyond its ID.
type Post struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Visible     bool    `json:"visible"`
	ImagePath   *string `json:"imagePath"`
	AuthorID    int64   `json:"authorId"`
}

// AdminUser is an account row in the administrative user lists.
// Passwords are never returned by the server.
type AdminUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	RoleID   int    `json:"roleId"`
}

// PageMeta is the server-reported pagination envelope for paginated endpoints.
type PageMeta struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// Page is one fetched page of a collection together with its metadata.
type Page[T any] struct {
	Items []T
	Meta  PageMeta
}
