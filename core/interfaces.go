package core

import (
	"context"
	"io"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// UserStorage defines user-related database operations
type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// SetTwoFactor persists both 2FA fields in a single update.
	// secret must be nil exactly when enabled is false.
	SetTwoFactor(ctx context.Context, userID string, enabled bool, secret *string) error

	// SetAvatarURL records the public URL of the user's processed avatar.
	SetAvatarURL(ctx context.Context, userID string, avatarURL string) error
}

// SessionStorage defines session-related database operations
type SessionStorage interface {
	CreateSession(ctx context.Context, s *Session) error

	// GetSessionByToken returns the session and its owning user in one
	// lookup. Returns ErrSessionNotFound when the token is unknown.
	GetSessionByToken(ctx context.Context, token string) (*SessionData, error)

	DeleteSessionByToken(ctx context.Context, token string) error
}

// ProjectStorage defines project-related database operations.
// Single-project reads and writes are owner-scoped at the query level.
type ProjectStorage interface {
	CreateProject(ctx context.Context, p *Project) error
	GetUserProjects(ctx context.Context, userID string) ([]*Project, error)
	GetProjectByID(ctx context.Context, userID, projectID string) (*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	UpsertProjectDetails(ctx context.Context, d *ProjectDetails) error
	DeleteProject(ctx context.Context, userID, projectID string) error
}

// StorageAdapter bundles every storage port a backend must provide.
type StorageAdapter interface {
	UserStorage
	SessionStorage
	ProjectStorage
}

// ============================================
// OBJECT STORAGE PORT
// ============================================

// ObjectInfo describes a stored blob.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// ObjectStorage stores and retrieves avatar and document blobs.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context, bucket string) error
	Put(ctx context.Context, bucket, name string, body []byte, contentType string) error
	Get(ctx context.Context, bucket, name string) (io.ReadCloser, *ObjectInfo, error)
	Stat(ctx context.Context, bucket, name string) (*ObjectInfo, error)
	Delete(ctx context.Context, bucket, name string) error
}
