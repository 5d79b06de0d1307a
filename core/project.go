package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateProjectInput contains the data for a new project
type CreateProjectInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// UpdateProjectInput carries the mutable project fields; nil means "leave as is"
type UpdateProjectInput struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Status      *ProjectStatus `json:"status"`
}

// UpdateProjectDetailsInput carries the mutable details fields
type UpdateProjectDetailsInput struct {
	FirstName   *string    `json:"firstName"`
	LastName    *string    `json:"lastName"`
	Birthday    *time.Time `json:"birthday"`
	Street      *string    `json:"street"`
	HouseNumber *string    `json:"houseNumber"`
	ZipCode     *string    `json:"zipCode"`
	City        *string    `json:"city"`
	Country     *string    `json:"country"`
}

// ProjectService owns project CRUD. The owner check is a non-optional gate
// on every single-project read and write: a mismatch reports not-found, not
// forbidden, so project IDs cannot be probed.
type ProjectService struct {
	db ProjectStorage
}

func NewProjectService(db ProjectStorage) *ProjectService {
	return &ProjectService{db: db}
}

// Create persists a project with an empty details sub-record attached.
func (s *ProjectService) Create(ctx context.Context, userID string, input CreateProjectInput) (*Project, error) {
	project := &Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Status:      ProjectActive,
		Details:     &ProjectDetails{},
	}

	if err := s.db.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// List returns the user's projects, most recently updated first.
func (s *ProjectService) List(ctx context.Context, userID string) ([]*Project, error) {
	projects, err := s.db.GetUserProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// Get returns a single project scoped to its owner.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*Project, error) {
	return s.db.GetProjectByID(ctx, userID, projectID)
}

// Update applies the provided fields to an owner-scoped project.
func (s *ProjectService) Update(ctx context.Context, userID, projectID string, input UpdateProjectInput) (*Project, error) {
	project, err := s.db.GetProjectByID(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}

	if err := s.db.UpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.db.GetProjectByID(ctx, userID, projectID)
}

// UpdateDetails upserts the 1:1 details record of an owner-scoped project.
func (s *ProjectService) UpdateDetails(ctx context.Context, userID, projectID string, input UpdateProjectDetailsInput) (*Project, error) {
	if _, err := s.db.GetProjectByID(ctx, userID, projectID); err != nil {
		return nil, err
	}

	details := &ProjectDetails{
		ProjectID:   projectID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Birthday:    input.Birthday,
		Street:      input.Street,
		HouseNumber: input.HouseNumber,
		ZipCode:     input.ZipCode,
		City:        input.City,
		Country:     input.Country,
	}

	if err := s.db.UpsertProjectDetails(ctx, details); err != nil {
		return nil, fmt.Errorf("failed to update project details: %w", err)
	}

	return s.db.GetProjectByID(ctx, userID, projectID)
}

// Delete removes an owner-scoped project and its details.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	if _, err := s.db.GetProjectByID(ctx, userID, projectID); err != nil {
		return err
	}
	if err := s.db.DeleteProject(ctx, userID, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
