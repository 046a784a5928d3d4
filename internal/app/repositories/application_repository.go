package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/pkg/apperrors"
	"github.com/selin/labmatch/internal/pkg/dberrors"
	"github.com/selin/labmatch/internal/pkg/logger"
)

var applicationColumns = []string{
	"id", "project_id", "student_id", "student_email", "student_name",
	"student_phone", "graduation_year", "gpa", "project_title",
	"teacher_email", "teacher_name", "cover_letter", "skills", "resume_url",
	"status", "applied_at", "updated_at",
}

// ApplicationFilter carries the repository-level listing criteria
type ApplicationFilter struct {
	ProjectID    int64
	StudentID    int64
	TeacherEmail string
	Status       string
	Offset       uint64
	Limit        int
}

// ApplicationRepository handles application database operations
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(
		&a.ID, &a.ProjectID, &a.StudentID, &a.StudentEmail, &a.StudentName,
		&a.StudentPhone, &a.GraduationYear, &a.GPA, &a.ProjectTitle,
		&a.TeacherEmail, &a.TeacherName, &a.CoverLetter, &a.Skills, &a.ResumeURL,
		&a.Status, &a.AppliedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication inserts a new application and returns it with the generated ID.
// The (student_id, project_id) unique constraint is the source of truth for
// duplicate detection; pre-checks in the service are advisory only.
func (r *ApplicationRepository) CreateApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	now := time.Now()
	sql, args, err := r.sb.Insert("applications").
		Columns("project_id", "student_id", "student_email", "student_name",
			"student_phone", "graduation_year", "gpa", "project_title",
			"teacher_email", "teacher_name", "cover_letter", "skills", "resume_url",
			"status", "applied_at", "updated_at").
		Values(app.ProjectID, app.StudentID, app.StudentEmail, app.StudentName,
			app.StudentPhone, app.GraduationYear, app.GPA, app.ProjectTitle,
			app.TeacherEmail, app.TeacherName, app.CoverLetter, app.Skills, app.ResumeURL,
			models.ApplicationPending, now, now).
		Suffix("RETURNING id, status, applied_at, updated_at").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create application SQL")
		return nil, fmt.Errorf("failed to build create application query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&app.ID, &app.Status, &app.AppliedAt, &app.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "applications_student_project_unique") {
			return nil, apperrors.ErrDuplicateApplication
		}
		logger.Error().Err(err).Int64("projectID", app.ProjectID).Int64("studentID", app.StudentID).
			Msg("Error executing create application query")
		return nil, fmt.Errorf("error creating application: %w", err)
	}

	return app, nil
}

// GetApplicationByID retrieves an application by ID
func (r *ApplicationRepository) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	sql, args, err := r.sb.Select(applicationColumns...).
		From("applications").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("id", id).Msg("Error scanning application row")
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}

	return app, nil
}

// FindByProjectAndStudent looks up an existing application for the pair
func (r *ApplicationRepository) FindByProjectAndStudent(ctx context.Context, projectID, studentID int64) (*models.Application, error) {
	sql, args, err := r.sb.Select(applicationColumns...).
		From("applications").
		Where(squirrel.Eq{"project_id": projectID, "student_id": studentID}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build find application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Msg("Error scanning application row")
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}

	return app, nil
}

func (r *ApplicationRepository) applyFilter(builder squirrel.SelectBuilder, filter ApplicationFilter) squirrel.SelectBuilder {
	if filter.ProjectID > 0 {
		builder = builder.Where(squirrel.Eq{"project_id": filter.ProjectID})
	}
	if filter.StudentID > 0 {
		builder = builder.Where(squirrel.Eq{"student_id": filter.StudentID})
	}
	if filter.TeacherEmail != "" {
		builder = builder.Where(squirrel.Eq{"teacher_email": filter.TeacherEmail})
	}
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"status": filter.Status})
	}
	return builder
}

// ListApplications returns a page of applications matching the filter plus the total count
func (r *ApplicationRepository) ListApplications(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error) {
	countSQL, countArgs, err := r.applyFilter(r.sb.Select("COUNT(*)").From("applications"), filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting applications")
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	pageSQL, pageArgs, err := r.applyFilter(r.sb.Select(applicationColumns...).From("applications"), filter).
		OrderBy("applied_at DESC").
		Offset(filter.Offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing applications")
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating application rows: %w", err)
	}

	return apps, total, nil
}

// UpdateStatus applies a decision to a pending application. The WHERE clause
// enforces that decided applications stay decided; when zero rows match, the
// caller learns whether the application is missing or already decided.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	sql, args, err := r.sb.Update("applications").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id, "status": models.ApplicationPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build update status query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error executing update status query")
		return fmt.Errorf("error updating application status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		if _, getErr := r.GetApplicationByID(ctx, id); getErr != nil {
			return getErr
		}
		return apperrors.ErrApplicationDecided
	}

	return nil
}

// DeleteApplication removes an application
func (r *ApplicationRepository) DeleteApplication(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("applications").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build delete application query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error executing delete application query")
		return fmt.Errorf("error deleting application: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrApplicationNotFound
	}

	return nil
}

// ListResumeURLsByProject collects the stored resume paths for a project,
// used to clean up files before a cascading project delete.
func (r *ApplicationRepository) ListResumeURLsByProject(ctx context.Context, projectID int64) ([]string, error) {
	sql, args, err := r.sb.Select("resume_url").
		From("applications").
		Where(squirrel.Eq{"project_id": projectID}).
		Where(squirrel.NotEq{"resume_url": nil}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build list resume urls query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("projectID", projectID).Msg("Error listing resume urls")
		return nil, fmt.Errorf("error listing resume urls: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("error scanning resume url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resume url rows: %w", err)
	}

	return urls, nil
}
