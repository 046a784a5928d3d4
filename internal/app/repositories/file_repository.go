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
	"github.com/selin/labmatch/internal/pkg/logger"
)

var fileColumns = []string{
	"id", "file_url", "file_name", "file_size", "file_type",
	"resource_type", "resource_id", "uploaded_by", "created_at",
}

// FileRepository handles file record database operations
type FileRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFileRepository creates a new FileRepository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanFile(row pgx.Row) (*models.File, error) {
	var f models.File
	err := row.Scan(
		&f.ID, &f.FileURL, &f.FileName, &f.FileSize, &f.FileType,
		&f.ResourceType, &f.ResourceID, &f.UploadedBy, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFile inserts a new file record and returns it with the generated ID
func (r *FileRepository) CreateFile(ctx context.Context, file *models.File) (*models.File, error) {
	sql, args, err := r.sb.Insert("files").
		Columns("file_url", "file_name", "file_size", "file_type",
			"resource_type", "resource_id", "uploaded_by", "created_at").
		Values(file.FileURL, file.FileName, file.FileSize, file.FileType,
			file.ResourceType, file.ResourceID, file.UploadedBy, time.Now()).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create file SQL")
		return nil, fmt.Errorf("failed to build create file query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		logger.Error().Err(err).Str("fileName", file.FileName).Msg("Error executing create file query")
		return nil, fmt.Errorf("error creating file record: %w", err)
	}

	return file, nil
}

// GetFileByID retrieves a file record by ID
func (r *FileRepository) GetFileByID(ctx context.Context, id int64) (*models.File, error) {
	sql, args, err := r.sb.Select(fileColumns...).
		From("files").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build get file query: %w", err)
	}

	file, err := scanFile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFileNotFound
		}
		logger.Error().Err(err).Int64("id", id).Msg("Error scanning file row")
		return nil, fmt.Errorf("error retrieving file: %w", err)
	}

	return file, nil
}

// ListFilesByResource returns all files attached to a resource
func (r *FileRepository) ListFilesByResource(ctx context.Context, resourceType models.ResourceType, resourceID int64) ([]*models.File, error) {
	sql, args, err := r.sb.Select(fileColumns...).
		From("files").
		Where(squirrel.Eq{"resource_type": resourceType, "resource_id": resourceID}).
		OrderBy("created_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build list files query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing files")
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	defer rows.Close()

	files := make([]*models.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning file row: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file rows: %w", err)
	}

	return files, nil
}

// DeleteFile removes a file record
func (r *FileRepository) DeleteFile(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("files").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("failed to build delete file query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("id", id).Msg("Error executing delete file query")
		return fmt.Errorf("error deleting file record: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFileNotFound
	}

	return nil
}

// DeleteFilesByResource removes all file records attached to a resource and
// returns the stored URLs so the caller can remove the blobs from disk.
func (r *FileRepository) DeleteFilesByResource(ctx context.Context, resourceType models.ResourceType, resourceID int64) ([]string, error) {
	sql, args, err := r.sb.Delete("files").
		Where(squirrel.Eq{"resource_type": resourceType, "resource_id": resourceID}).
		Suffix("RETURNING file_url").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("failed to build delete files query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error deleting files by resource")
		return nil, fmt.Errorf("error deleting file records: %w", err)
	}
	defer rows.Close()

	urls := make([]string, 0)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("error scanning deleted file url: %w", err)
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deleted file rows: %w", err)
	}

	return urls, nil
}
