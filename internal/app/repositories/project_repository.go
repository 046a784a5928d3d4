package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/pkg/apperrors"
	"github.com/selin/labmatch/internal/pkg/logger"
)

var projectColumns = []string{
	"id", "title", "description", "requirements", "duration", "location",
	"max_students", "status", "author_id", "author_email", "author_name",
	"department", "deadline", "stipend", "outcome", "view_count", "tags",
	"created_at", "updated_at",
}

// Whitelist of sortable columns; anything else falls back to created_at
var projectSortFields = map[string]string{
	"createdAt": "created_at",
	"deadline":  "deadline",
	"title":     "title",
	"viewCount": "view_count",
}

// ProjectFilter carries the repository-level listing criteria
type ProjectFilter struct {
	Status      string
	AuthorID    int64
	AuthorEmail string
	Department  string
	Search      string
	Tag         string
	SortBy      string
	SortOrder   string
	Offset      uint64
	Limit       int
}

// ProjectRepository handles project database operations
type ProjectRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Requirements, &p.Duration, &p.Location,
		&p.MaxStudents, &p.Status, &p.AuthorID, &p.AuthorEmail, &p.AuthorName,
		&p.Department, &p.Deadline, &p.Stipend, &p.Outcome, &p.ViewCount, &p.Tags,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a new project and returns it with the generated ID
func (r *ProjectRepository) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	now := time.Now()
	sql, args, err := r.sb.Insert("projects").
		Columns("title", "description", "requirements", "duration", "location",
			"max_students", "status", "author_id", "author_email", "author_name",
			"department", "deadline", "stipend", "outcome", "view_count", "tags",
			"created_at", "updated_at").
		Values(project.Title, project.Description, project.Requirements, project.Duration, project.Location,
			project.MaxStudents, project.Status, project.AuthorID, project.AuthorEmail, project.AuthorName,
			project.Department, project.Deadline, project.Stipend, project.Outcome, 0, project.Tags,
			now, now).
		Suffix("RETURNING id, view_count, created_at, updated_at").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create project SQL")
		return nil, fmt.Errorf("failed to build create project query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&project.ID, &project.ViewCount, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Str("title", project.Title).Msg("Error executing create project query")
		return nil, fmt.Errorf("error creating project: %w", err)
	}

	return project, nil
}

// GetProjectByID retrieves a project by ID
func (r *ProjectRepository) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	sql, args, err := r.sb.Select(projectColumns...).
		From("projects").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build get project query: %w", err)
	}

	project, err := scanProject(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProjectNotFound
		}
		logger.Error().Err(err).Int64("id", id).Msg("Error scanning project row")
		return nil, fmt.Errorf("error retrieving project: %w", err)
	}

	return project, nil
}

func (r *ProjectRepository) applyFilter(builder squirrel.SelectBuilder, filter ProjectFilter) squirrel.SelectBuilder {
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.AuthorID > 0 {
		builder = builder.Where(squirrel.Eq{"author_id": filter.AuthorID})
	}
	if filter.AuthorEmail != "" {
		builder = builder.Where(squirrel.Eq{"author_email": filter.AuthorEmail})
	}
	if filter.Department != "" {
		builder = builder.Where(squirrel.Eq{"department": filter.Department})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	if filter.Tag != "" {
		builder = builder.Where("? = ANY(tags)", filter.Tag)
	}
	return builder
}

// ListProjects returns a page of projects matching the filter plus the total count
func (r *ProjectRepository) ListProjects(ctx context.Context, filter ProjectFilter) ([]*models.Project, int64, error) {
	countBuilder := r.applyFilter(r.sb.Select("COUNT(*)").From("projects"), filter)

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count projects query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting projects")
		return nil, 0, fmt.Errorf("error counting projects: %w", err)
	}

	sortColumn, ok := projectSortFields[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	sortOrder := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	pageBuilder := r.applyFilter(r.sb.Select(projectColumns...).From("projects"), filter).
		OrderBy(sortColumn + " " + sortOrder).
		Offset(filter.Offset).
		Limit(uint64(limit))

	pageSQL, pageArgs, err := pageBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list projects query: %w", err)
	}

	rows, err := r.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing projects")
		return nil, 0, fmt.Errorf("error listing projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*models.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning project row: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, total, nil
}

// UpdateProject updates the mutable fields of a project.
// Author identity columns are deliberately absent from the SET list.
func (r *ProjectRepository) UpdateProject(ctx context.Context, project *models.Project) error {
	sql, args, err := r.sb.Update("projects").
		Set("title", project.Title).
		Set("description", project.Description).
		Set("requirements", project.Requirements).
		Set("duration", project.Duration).
		Set("location", project.Location).
		Set("max_students", project.MaxStudents).
		Set("status", project.Status).
		Set("department", project.Department).
		Set("deadline", project.Deadline).
		Set("stipend", project.Stipend).
		Set("outcome", project.Outcome).
		Set("tags", project.Tags).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": project.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build update project query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", project.ID).Msg("Error executing update project query")
		return fmt.Errorf("error updating project: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}

	return nil
}

// DeleteProject removes a project. Applications and file records cascade
// at the database level; stored files are the caller's responsibility.
func (r *ProjectRepository) DeleteProject(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("projects").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build delete project query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error executing delete project query")
		return fmt.Errorf("error deleting project: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrProjectNotFound
	}

	return nil
}

// IncrementViewCount bumps the view counter atomically
func (r *ProjectRepository) IncrementViewCount(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Update("projects").
		Set("view_count", squirrel.Expr("view_count + 1")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build increment view count query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error incrementing view count")
		return fmt.Errorf("error incrementing view count: %w", err)
	}

	return nil
}
