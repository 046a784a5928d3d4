package services

import (
	"context"
	"mime/multipart"

	"github.com/selin/labmatch/internal/app/auth"
	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/app/repositories"
	"github.com/selin/labmatch/internal/pkg/apperrors"
	"github.com/selin/labmatch/internal/pkg/filestorage"
	"github.com/selin/labmatch/internal/pkg/helpers"
	"github.com/selin/labmatch/internal/pkg/logger"
)

type projectStore interface {
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	GetProjectByID(ctx context.Context, id int64) (*models.Project, error)
	ListProjects(ctx context.Context, filter repositories.ProjectFilter) ([]*models.Project, int64, error)
	UpdateProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, id int64) error
	IncrementViewCount(ctx context.Context, id int64) error
}

type fileStore interface {
	CreateFile(ctx context.Context, file *models.File) (*models.File, error)
	GetFileByID(ctx context.Context, id int64) (*models.File, error)
	ListFilesByResource(ctx context.Context, resourceType models.ResourceType, resourceID int64) ([]*models.File, error)
	DeleteFile(ctx context.Context, id int64) error
	DeleteFilesByResource(ctx context.Context, resourceType models.ResourceType, resourceID int64) ([]string, error)
}

type resumeLister interface {
	ListResumeURLsByProject(ctx context.Context, projectID int64) ([]string, error)
}

// ProjectService defines project posting operations
type ProjectService interface {
	ListProjects(ctx context.Context, p *auth.Principal, req dto.ProjectFilterRequest) (*dto.ProjectListResponse, error)
	GetProject(ctx context.Context, p *auth.Principal, id int64) (*dto.ProjectResponse, error)
	CreateProject(ctx context.Context, p auth.Principal, req dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	UpdateProject(ctx context.Context, p auth.Principal, id int64, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	DeleteProject(ctx context.Context, p auth.Principal, id int64) error
	UploadDocument(ctx context.Context, p auth.Principal, projectID int64, fileHeader *multipart.FileHeader) (*dto.FileResponse, error)
	ListDocuments(ctx context.Context, projectID int64) ([]dto.FileResponse, error)
	DeleteDocument(ctx context.Context, p auth.Principal, projectID, fileID int64) error
}

type projectServiceImpl struct {
	projects projectStore
	files    fileStore
	resumes  resumeLister
	users    userStore
	storage  filestorage.FileStorage
}

// NewProjectService creates a new ProjectService
func NewProjectService(projects projectStore, files fileStore, resumes resumeLister, users userStore, storage filestorage.FileStorage) ProjectService {
	return &projectServiceImpl{
		projects: projects,
		files:    files,
		resumes:  resumes,
		users:    users,
		storage:  storage,
	}
}

// ListProjects returns a filtered page of postings. The status filter
// defaults to ACTIVE; non-active listings are scoped to the caller's own
// postings unless the caller is an admin.
func (s *projectServiceImpl) ListProjects(ctx context.Context, p *auth.Principal, req dto.ProjectFilterRequest) (*dto.ProjectListResponse, error) {
	status := req.Status
	if status == "" {
		status = string(models.ProjectActive)
	}
	if !models.ValidProjectStatus(models.ProjectStatus(status)) {
		return nil, apperrors.NewBadRequestError("Unknown project status filter")
	}

	filter := repositories.ProjectFilter{
		Status:      status,
		AuthorEmail: req.AuthorEmail,
		Department:  req.Department,
		Search:      req.Search,
		Tag:         req.Tag,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
	}

	if status != string(models.ProjectActive) {
		if p == nil {
			return nil, apperrors.NewForbiddenError("Sign in to list unpublished postings")
		}
		switch p.Role {
		case models.RoleAdmin:
			// Unscoped
		case models.RoleTeacher:
			filter.AuthorID = p.ID
		default:
			return nil, apperrors.NewForbiddenError("Students can only list active postings")
		}
	}

	filter.Offset, filter.Limit = helpers.CalculateOffsetLimit(req.Page, req.PageSize)

	projects, total, err := s.projects.ListProjects(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ProjectResponse, 0, len(projects))
	for _, project := range projects {
		items = append(items, dto.ToProjectResponse(project))
	}

	return &dto.ProjectListResponse{
		Projects:   items,
		Pagination: helpers.NewPaginationInfo(total, req.Page, filter.Limit),
	}, nil
}

// GetProject fetches a single posting and bumps its view counter
func (s *projectServiceImpl) GetProject(ctx context.Context, p *auth.Principal, id int64) (*dto.ProjectResponse, error) {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if project.Status != models.ProjectActive {
		if p == nil {
			return nil, apperrors.ErrProjectNotFound
		}
		if err := auth.CanViewProject(*p, project); err != nil {
			// Unpublished postings do not leak their existence
			return nil, apperrors.ErrProjectNotFound
		}
	}

	// Every permitted read counts a view, draft and closed postings included
	if err := s.projects.IncrementViewCount(ctx, id); err != nil {
		logger.Warn().Err(err).Int64("projectID", id).Msg("Failed to increment view count")
	} else {
		project.ViewCount++
	}

	resp := dto.ToProjectResponse(project)
	return &resp, nil
}

// CreateProject creates a posting with an immutable author snapshot
func (s *projectServiceImpl) CreateProject(ctx context.Context, p auth.Principal, req dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if err := auth.CanCreateProject(p); err != nil {
		return nil, err
	}

	// New postings start as drafts unless the author publishes immediately
	status := models.ProjectStatus(req.Status)
	if req.Status == "" {
		status = models.ProjectDraft
	}
	if !models.ValidProjectStatus(status) {
		return nil, apperrors.NewBadRequestError("Unknown project status")
	}

	author, err := s.users.GetUserByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Duration:     req.Duration,
		Location:     req.Location,
		MaxStudents:  req.MaxStudents,
		Status:       status,
		AuthorID:     author.ID,
		AuthorEmail:  author.Email,
		AuthorName:   author.FullName(),
		Department:   req.Department,
		Deadline:     req.Deadline,
		Stipend:      req.Stipend,
		Outcome:      req.Outcome,
		Tags:         req.Tags,
	}
	if project.Requirements == nil {
		project.Requirements = []string{}
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	project, err = s.projects.CreateProject(ctx, project)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("projectID", project.ID).Int64("authorID", author.ID).Msg("Project created")

	resp := dto.ToProjectResponse(project)
	return &resp, nil
}

// UpdateProject applies an edit after an ownership check against the fresh
// snapshot. Author fields are never touched.
func (s *projectServiceImpl) UpdateProject(ctx context.Context, p auth.Principal, id int64, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.CanModifyProject(p, project); err != nil {
		return nil, err
	}

	status := models.ProjectStatus(req.Status)
	if !models.ValidProjectStatus(status) {
		return nil, apperrors.NewBadRequestError("Unknown project status")
	}

	project.Title = req.Title
	project.Description = req.Description
	project.Requirements = req.Requirements
	project.Duration = req.Duration
	project.Location = req.Location
	project.MaxStudents = req.MaxStudents
	project.Status = status
	project.Department = req.Department
	project.Deadline = req.Deadline
	project.Stipend = req.Stipend
	project.Outcome = req.Outcome
	project.Tags = req.Tags
	if project.Requirements == nil {
		project.Requirements = []string{}
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	if err := s.projects.UpdateProject(ctx, project); err != nil {
		return nil, err
	}

	resp := dto.ToProjectResponse(project)
	return &resp, nil
}

// DeleteProject removes a posting together with its applications' resumes
// and attached documents. Database rows cascade; stored blobs are removed
// here, best effort, after the row delete succeeds.
func (s *projectServiceImpl) DeleteProject(ctx context.Context, p auth.Principal, id int64) error {
	project, err := s.projects.GetProjectByID(ctx, id)
	if err != nil {
		return err
	}

	if err := auth.CanModifyProject(p, project); err != nil {
		return err
	}

	resumeURLs, err := s.resumes.ListResumeURLsByProject(ctx, id)
	if err != nil {
		return err
	}

	docURLs, err := s.files.DeleteFilesByResource(ctx, models.ResourceProjectDocument, id)
	if err != nil {
		return err
	}

	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return err
	}

	for _, url := range append(resumeURLs, docURLs...) {
		if err := s.storage.DeleteFile(url); err != nil {
			logger.Warn().Err(err).Str("fileURL", url).Msg("Failed to remove stored file during project delete")
		}
	}

	logger.Info().Int64("projectID", id).Int64("deletedBy", p.ID).Msg("Project deleted")
	return nil
}

// UploadDocument attaches a supporting PDF to a posting
func (s *projectServiceImpl) UploadDocument(ctx context.Context, p auth.Principal, projectID int64, fileHeader *multipart.FileHeader) (*dto.FileResponse, error) {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := auth.CanModifyProject(p, project); err != nil {
		return nil, err
	}

	if err := filestorage.ValidateUpload(fileHeader, filestorage.KindDocument); err != nil {
		return nil, err
	}

	fileURL, err := s.storage.SaveFileWithPath(fileHeader, "documents")
	if err != nil {
		return nil, err
	}

	file := &models.File{
		FileURL:      fileURL,
		FileName:     fileHeader.Filename,
		FileSize:     fileHeader.Size,
		FileType:     "application/pdf",
		ResourceType: models.ResourceProjectDocument,
		ResourceID:   projectID,
		UploadedBy:   p.ID,
	}

	file, err = s.files.CreateFile(ctx, file)
	if err != nil {
		if delErr := s.storage.DeleteFile(fileURL); delErr != nil {
			logger.Warn().Err(delErr).Str("fileURL", fileURL).Msg("Failed to remove orphaned upload")
		}
		return nil, err
	}

	resp := dto.ToFileResponse(file)
	return &resp, nil
}

// ListDocuments returns the supporting documents attached to a posting
func (s *projectServiceImpl) ListDocuments(ctx context.Context, projectID int64) ([]dto.FileResponse, error) {
	if _, err := s.projects.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}

	files, err := s.files.ListFilesByResource(ctx, models.ResourceProjectDocument, projectID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.FileResponse, 0, len(files))
	for _, file := range files {
		items = append(items, dto.ToFileResponse(file))
	}
	return items, nil
}

// DeleteDocument removes one attached document
func (s *projectServiceImpl) DeleteDocument(ctx context.Context, p auth.Principal, projectID, fileID int64) error {
	project, err := s.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return err
	}

	if err := auth.CanModifyProject(p, project); err != nil {
		return err
	}

	file, err := s.files.GetFileByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file.ResourceType != models.ResourceProjectDocument || file.ResourceID != projectID {
		return apperrors.ErrFileNotFound
	}

	if err := s.files.DeleteFile(ctx, fileID); err != nil {
		return err
	}

	if err := s.storage.DeleteFile(file.FileURL); err != nil {
		logger.Warn().Err(err).Str("fileURL", file.FileURL).Msg("Failed to remove stored document")
	}

	return nil
}
