package core

import "time"

// User represents a portal account.
//
// This is the "identity" - who someone is. The password hash and the TOTP
// secret live on the user record but are never serialized.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // Never expose in JSON
	FirstName        *string   `json:"firstName"`
	LastName         *string   `json:"lastName"`
	Phone            *string   `json:"phone"`
	IsActive         bool      `json:"isActive"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
	TwoFactorSecret  *string   `json:"-"` // Never expose in JSON (security!)
	AvatarURL        *string   `json:"avatarUrl"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"-"`
}

// Session represents an active login.
//
// The token is opaque: 32 bytes from crypto/rand, hex encoded, unique in
// storage. Expiry is fixed at creation, not sliding.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"-"` // Returned to the client once, at login
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionData combines user and session info, the unit returned by
// session validation so callers can also check the user's active flag.
type SessionData struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

// ProjectStatus enumerates the lifecycle states of a project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectPaused    ProjectStatus = "PAUSED"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

// ValidProjectStatus reports whether s is one of the known states.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectPaused, ProjectCancelled:
		return true
	}
	return false
}

// Project is a user-owned record. Every read or write of a single project
// is gated on project.UserID matching the requester.
type Project struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Status      ProjectStatus   `json:"status"`
	Details     *ProjectDetails `json:"details,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProjectDetails is the 1:1 sub-record attached to a project.
type ProjectDetails struct {
	ProjectID   string     `json:"projectId"`
	FirstName   *string    `json:"firstName"`
	LastName    *string    `json:"lastName"`
	Birthday    *time.Time `json:"birthday"`
	Street      *string    `json:"street"`
	HouseNumber *string    `json:"houseNumber"`
	ZipCode     *string    `json:"zipCode"`
	City        *string    `json:"city"`
	Country     *string    `json:"country"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
