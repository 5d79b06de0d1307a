package core

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"
)

// FakeStorage is a test-only in-memory StorageAdapter. Error fields allow
// behavior injection per operation.
type FakeStorage struct {
	mu       sync.RWMutex
	users    map[string]*User    // key: user ID
	sessions map[string]*Session // key: token
	projects map[string]*Project // key: project ID

	CreateUserErr    error
	GetUserErr       error
	SetTwoFactorErr  error
	CreateSessionErr error
	GetSessionErr    error
	DeleteSessionErr error
	ProjectErr       error
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		users:    make(map[string]*User),
		sessions: make(map[string]*Session),
		projects: make(map[string]*Project),
	}
}

func (f *FakeStorage) CreateUser(ctx context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateUserErr != nil {
		return f.CreateUserErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return ErrUserExists
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *FakeStorage) GetUserByID(ctx context.Context, id string) (*User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetUserErr != nil {
		return nil, f.GetUserErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *FakeStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetUserErr != nil {
		return nil, f.GetUserErr
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *FakeStorage) SetTwoFactor(ctx context.Context, userID string, enabled bool, secret *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetTwoFactorErr != nil {
		return f.SetTwoFactorErr
	}
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.TwoFactorEnabled = enabled
	u.TwoFactorSecret = secret
	return nil
}

func (f *FakeStorage) SetAvatarURL(ctx context.Context, userID string, avatarURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.AvatarURL = &avatarURL
	return nil
}

func (f *FakeStorage) CreateSession(ctx context.Context, s *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateSessionErr != nil {
		return f.CreateSessionErr
	}
	cp := *s
	f.sessions[s.Token] = &cp
	return nil
}

func (f *FakeStorage) GetSessionByToken(ctx context.Context, token string) (*SessionData, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetSessionErr != nil {
		return nil, f.GetSessionErr
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	u, ok := f.users[s.UserID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sc, uc := *s, *u
	return &SessionData{User: &uc, Session: &sc}, nil
}

func (f *FakeStorage) DeleteSessionByToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteSessionErr != nil {
		return f.DeleteSessionErr
	}
	if _, ok := f.sessions[token]; !ok {
		return ErrSessionNotFound
	}
	delete(f.sessions, token)
	return nil
}

func (f *FakeStorage) CreateProject(ctx context.Context, p *Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProjectErr != nil {
		return f.ProjectErr
	}
	now := time.Now()
	cp := *p
	cp.CreatedAt = now
	cp.UpdatedAt = now
	if cp.Details != nil {
		d := *cp.Details
		d.ProjectID = cp.ID
		cp.Details = &d
	}
	f.projects[p.ID] = &cp
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (f *FakeStorage) GetUserProjects(ctx context.Context, userID string) ([]*Project, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.ProjectErr != nil {
		return nil, f.ProjectErr
	}
	var out []*Project
	for _, p := range f.projects {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *FakeStorage) GetProjectByID(ctx context.Context, userID, projectID string) (*Project, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.ProjectErr != nil {
		return nil, f.ProjectErr
	}
	p, ok := f.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *FakeStorage) UpdateProject(ctx context.Context, p *Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.projects[p.ID]
	if !ok {
		return ErrProjectNotFound
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Status = p.Status
	existing.UpdatedAt = time.Now()
	return nil
}

func (f *FakeStorage) UpsertProjectDetails(ctx context.Context, d *ProjectDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[d.ProjectID]
	if !ok {
		return ErrProjectNotFound
	}
	cp := *d
	cp.UpdatedAt = time.Now()
	p.Details = &cp
	return nil
}

func (f *FakeStorage) DeleteProject(ctx context.Context, userID, projectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[projectID]
	if !ok || p.UserID != userID {
		return ErrProjectNotFound
	}
	delete(f.projects, projectID)
	return nil
}

// FakeObjectStorage is a test-only in-memory ObjectStorage.
type FakeObjectStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte // key: bucket/name
	types   map[string]string
	buckets map[string]bool
	PutErr  error
}

func NewFakeObjectStorage() *FakeObjectStorage {
	return &FakeObjectStorage{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		buckets: make(map[string]bool),
	}
}

func (f *FakeObjectStorage) EnsureBucket(ctx context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket] = true
	return nil
}

func (f *FakeObjectStorage) Put(ctx context.Context, bucket, name string, body []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PutErr != nil {
		return f.PutErr
	}
	key := bucket + "/" + name
	f.objects[key] = append([]byte(nil), body...)
	f.types[key] = contentType
	return nil
}

func (f *FakeObjectStorage) Get(ctx context.Context, bucket, name string) (io.ReadCloser, *ObjectInfo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	key := bucket + "/" + name
	body, ok := f.objects[key]
	if !ok {
		return nil, nil, ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(body)), &ObjectInfo{ContentType: f.types[key], Size: int64(len(body))}, nil
}

func (f *FakeObjectStorage) Stat(ctx context.Context, bucket, name string) (*ObjectInfo, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	key := bucket + "/" + name
	body, ok := f.objects[key]
	if !ok {
		return nil, ErrFileNotFound
	}
	return &ObjectInfo{ContentType: f.types[key], Size: int64(len(body))}, nil
}

func (f *FakeObjectStorage) Delete(ctx context.Context, bucket, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := bucket + "/" + name
	if _, ok := f.objects[key]; !ok {
		return ErrFileNotFound
	}
	delete(f.objects, key)
	delete(f.types, key)
	return nil
}
