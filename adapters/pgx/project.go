package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/portal/core"
)

const projectColumns = `p.id, p.user_id, p.name, p.description, p.status, p.created_at, p.updated_at,
	d.project_id, d.first_name, d.last_name, d.birthday, d.street, d.house_number,
	d.zip_code, d.city, d.country, d.created_at, d.updated_at`

func scanProject(row pgx.Row) (*core.Project, error) {
	p := &core.Project{}
	var (
		detailsID          *string
		dFirst, dLast      *string
		dBirthday          *time.Time
		dStreet, dHouse    *string
		dZip, dCity        *string
		dCountry           *string
		dCreated, dUpdated *time.Time
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
		&detailsID, &dFirst, &dLast, &dBirthday, &dStreet, &dHouse,
		&dZip, &dCity, &dCountry, &dCreated, &dUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrProjectNotFound
		}
		return nil, err
	}
	if detailsID != nil {
		p.Details = &core.ProjectDetails{
			ProjectID:   *detailsID,
			FirstName:   dFirst,
			LastName:    dLast,
			Birthday:    dBirthday,
			Street:      dStreet,
			HouseNumber: dHouse,
			ZipCode:     dZip,
			City:        dCity,
			Country:     dCountry,
			CreatedAt:   *dCreated,
			UpdatedAt:   *dUpdated,
		}
	}
	return p, nil
}

// CreateProject inserts the project and its empty details sub-record in one
// transaction so a project never exists without its details row.
func (a *Adapter) CreateProject(ctx context.Context, project *core.Project) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var createdAt, updatedAt time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO projects (id, user_id, name, description, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		project.ID, project.UserID, project.Name, project.Description, project.Status,
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		return err
	}

	var dCreated, dUpdated time.Time
	err = tx.QueryRow(ctx,
		`INSERT INTO project_details (project_id) VALUES ($1)
		 RETURNING created_at, updated_at`,
		project.ID,
	).Scan(&dCreated, &dUpdated)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	project.CreatedAt = createdAt
	project.UpdatedAt = updatedAt
	project.Details = &core.ProjectDetails{
		ProjectID: project.ID,
		CreatedAt: dCreated,
		UpdatedAt: dUpdated,
	}
	return nil
}

func (a *Adapter) GetUserProjects(ctx context.Context, userID string) ([]*core.Project, error) {
	q := `SELECT ` + projectColumns + `
		FROM projects p
		LEFT JOIN project_details d ON d.project_id = p.id
		WHERE p.user_id = $1
		ORDER BY p.updated_at DESC`

	rows, err := a.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (a *Adapter) GetProjectByID(ctx context.Context, userID, projectID string) (*core.Project, error) {
	q := `SELECT ` + projectColumns + `
		FROM projects p
		LEFT JOIN project_details d ON d.project_id = p.id
		WHERE p.id = $1 AND p.user_id = $2`

	return scanProject(a.pool.QueryRow(ctx, q, projectID, userID))
}

func (a *Adapter) UpdateProject(ctx context.Context, project *core.Project) error {
	q := `UPDATE projects SET name = $1, description = $2, status = $3, updated_at = now()
		WHERE id = $4 AND user_id = $5`
	tag, err := a.pool.Exec(ctx, q, project.Name, project.Description, project.Status,
		project.ID, project.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrProjectNotFound
	}
	return nil
}

func (a *Adapter) UpsertProjectDetails(ctx context.Context, d *core.ProjectDetails) error {
	q := `INSERT INTO project_details (project_id, first_name, last_name, birthday,
			street, house_number, zip_code, city, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (project_id) DO UPDATE SET
			first_name = COALESCE(EXCLUDED.first_name, project_details.first_name),
			last_name = COALESCE(EXCLUDED.last_name, project_details.last_name),
			birthday = COALESCE(EXCLUDED.birthday, project_details.birthday),
			street = COALESCE(EXCLUDED.street, project_details.street),
			house_number = COALESCE(EXCLUDED.house_number, project_details.house_number),
			zip_code = COALESCE(EXCLUDED.zip_code, project_details.zip_code),
			city = COALESCE(EXCLUDED.city, project_details.city),
			country = COALESCE(EXCLUDED.country, project_details.country),
			updated_at = now()`

	_, err := a.pool.Exec(ctx, q, d.ProjectID, d.FirstName, d.LastName, d.Birthday,
		d.Street, d.HouseNumber, d.ZipCode, d.City, d.Country)
	return err
}

func (a *Adapter) DeleteProject(ctx context.Context, userID, projectID string) error {
	tag, err := a.pool.Exec(ctx,
		`DELETE FROM projects WHERE id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrProjectNotFound
	}
	return nil
}
