package services

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/selin/labmatch/internal/app/auth"
	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/app/repositories"
	"github.com/selin/labmatch/internal/pkg/apperrors"
	"github.com/selin/labmatch/internal/pkg/email"
	"github.com/selin/labmatch/internal/pkg/filestorage"
	"github.com/selin/labmatch/internal/pkg/helpers"
	"github.com/selin/labmatch/internal/pkg/logger"
)

type applicationStore interface {
	CreateApplication(ctx context.Context, app *models.Application) (*models.Application, error)
	GetApplicationByID(ctx context.Context, id int64) (*models.Application, error)
	FindByProjectAndStudent(ctx context.Context, projectID, studentID int64) (*models.Application, error)
	ListApplications(ctx context.Context, filter repositories.ApplicationFilter) ([]*models.Application, int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error
	DeleteApplication(ctx context.Context, id int64) error
}

// ApplicationService defines application lifecycle operations
type ApplicationService interface {
	Apply(ctx context.Context, p auth.Principal, req dto.CreateApplicationRequest, resume *multipart.FileHeader) (*dto.ApplicationResponse, error)
	ListApplications(ctx context.Context, p auth.Principal, req dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error)
	GetApplication(ctx context.Context, p auth.Principal, id int64) (*dto.ApplicationResponse, error)
	Decide(ctx context.Context, p auth.Principal, id int64, status string) (*dto.ApplicationResponse, error)
	Withdraw(ctx context.Context, p auth.Principal, id int64) error
	GetResumePath(ctx context.Context, p auth.Principal, id int64) (string, string, error)
}

type applicationServiceImpl struct {
	applications applicationStore
	projects     projectStore
	users        userStore
	storage      filestorage.FileStorage
	notifier     email.EmailService
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(applications applicationStore, projects projectStore, users userStore, storage filestorage.FileStorage, notifier email.EmailService) ApplicationService {
	return &applicationServiceImpl{
		applications: applications,
		projects:     projects,
		users:        users,
		storage:      storage,
		notifier:     notifier,
	}
}

// Apply submits an application, optionally with a resume PDF. The student and project
// snapshots are captured here; the unique constraint on the pair is the
// final word on duplicates.
func (s *applicationServiceImpl) Apply(ctx context.Context, p auth.Principal, req dto.CreateApplicationRequest, resume *multipart.FileHeader) (*dto.ApplicationResponse, error) {
	project, err := s.projects.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	if err := auth.CanApply(p, project); err != nil {
		return nil, err
	}

	// Advisory pre-check for a friendlier error before the upload happens
	if _, err := s.applications.FindByProjectAndStudent(ctx, req.ProjectID, p.ID); err == nil {
		return nil, apperrors.ErrDuplicateApplication
	} else if !errors.Is(err, apperrors.ErrApplicationNotFound) {
		return nil, err
	}

	// The resume is optional; when present it must be a PDF within bounds
	if resume != nil {
		if err := filestorage.ValidateUpload(resume, filestorage.KindResume); err != nil {
			return nil, err
		}
	}

	student, err := s.users.GetUserByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	// The snapshot needs a finished profile
	if !student.SetupComplete {
		return nil, apperrors.ErrSetupRequired
	}

	var resumeURL *string
	if resume != nil {
		url, err := s.storage.SaveFileWithPath(resume, "resumes")
		if err != nil {
			return nil, err
		}
		resumeURL = &url
	}

	app := &models.Application{
		ProjectID:      project.ID,
		StudentID:      student.ID,
		StudentEmail:   student.Email,
		StudentName:    student.FullName(),
		StudentPhone:   student.Phone,
		GraduationYear: student.GraduationYear,
		GPA:            student.GPA,
		ProjectTitle:   project.Title,
		TeacherEmail:   project.AuthorEmail,
		TeacherName:    project.AuthorName,
		CoverLetter:    req.CoverLetter,
		Skills:         req.Skills,
		ResumeURL:      resumeURL,
	}
	if app.Skills == nil {
		app.Skills = []string{}
	}

	app, err = s.applications.CreateApplication(ctx, app)
	if err != nil {
		if resumeURL != nil {
			if delErr := s.storage.DeleteFile(*resumeURL); delErr != nil {
				logger.Warn().Err(delErr).Str("fileURL", *resumeURL).Msg("Failed to remove orphaned resume")
			}
		}
		return nil, err
	}

	logger.Info().Int64("applicationID", app.ID).Int64("projectID", project.ID).
		Int64("studentID", student.ID).Msg("Application submitted")

	// Notification failures never fail the submission
	if err := s.notifier.SendApplicationReceivedEmail(project.AuthorEmail, project.AuthorName, app.StudentName, project.Title); err != nil {
		logger.Warn().Err(err).Int64("applicationID", app.ID).Msg("Failed to send application notification")
	}

	resp := dto.ToApplicationResponse(app)
	return &resp, nil
}

// ListApplications returns the page of applications the caller may see:
// students their own, teachers those against their postings, admins all.
func (s *applicationServiceImpl) ListApplications(ctx context.Context, p auth.Principal, req dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error) {
	if req.Status != "" {
		status := models.ApplicationStatus(req.Status)
		if status != models.ApplicationPending && !models.ValidDecision(status) {
			return nil, apperrors.NewBadRequestError("Unknown application status filter")
		}
	}

	filter := repositories.ApplicationFilter{
		ProjectID: req.ProjectID,
		Status:    req.Status,
	}

	switch p.Role {
	case models.RoleStudent:
		// Students only ever see their own, whatever the filter says
		filter.StudentID = p.ID
	case models.RoleTeacher:
		filter.TeacherEmail = p.Email
		filter.StudentID = req.StudentID
	case models.RoleAdmin:
		filter.StudentID = req.StudentID
	default:
		return nil, apperrors.NewForbiddenError("Unknown role")
	}

	filter.Offset, filter.Limit = helpers.CalculateOffsetLimit(req.Page, req.PageSize)

	apps, total, err := s.applications.ListApplications(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		items = append(items, dto.ToApplicationResponse(app))
	}

	return &dto.ApplicationListResponse{
		Applications: items,
		Pagination:   helpers.NewPaginationInfo(total, req.Page, filter.Limit),
	}, nil
}

// GetApplication fetches one application after a visibility check
func (s *applicationServiceImpl) GetApplication(ctx context.Context, p auth.Principal, id int64) (*dto.ApplicationResponse, error) {
	app, project, err := s.getWithProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.CanViewApplication(p, app, project); err != nil {
		return nil, err
	}

	resp := dto.ToApplicationResponse(app)
	return &resp, nil
}

// Decide accepts or rejects a pending application. Decisions are terminal:
// the guarded update refuses to touch anything already decided.
func (s *applicationServiceImpl) Decide(ctx context.Context, p auth.Principal, id int64, status string) (*dto.ApplicationResponse, error) {
	decision := models.ApplicationStatus(status)
	if !models.ValidDecision(decision) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStatus, "Status must be ACCEPTED or REJECTED")
	}

	app, project, err := s.getWithProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := auth.CanDecideApplication(p, app, project); err != nil {
		return nil, err
	}

	if err := s.applications.UpdateStatus(ctx, id, decision); err != nil {
		return nil, err
	}
	app.Status = decision

	logger.Info().Int64("applicationID", id).Str("status", string(decision)).
		Int64("decidedBy", p.ID).Msg("Application decided")

	if err := s.notifier.SendApplicationDecidedEmail(app.StudentEmail, app.StudentName, app.ProjectTitle, string(decision)); err != nil {
		logger.Warn().Err(err).Int64("applicationID", id).Msg("Failed to send decision notification")
	}

	resp := dto.ToApplicationResponse(app)
	return &resp, nil
}

// Withdraw removes an application and its stored resume
func (s *applicationServiceImpl) Withdraw(ctx context.Context, p auth.Principal, id int64) error {
	app, err := s.applications.GetApplicationByID(ctx, id)
	if err != nil {
		return err
	}

	if err := auth.CanDeleteApplication(p, app); err != nil {
		return err
	}

	if err := s.applications.DeleteApplication(ctx, id); err != nil {
		return err
	}

	if app.ResumeURL != nil {
		if err := s.storage.DeleteFile(*app.ResumeURL); err != nil {
			logger.Warn().Err(err).Str("fileURL", *app.ResumeURL).Msg("Failed to remove stored resume")
		}
	}

	logger.Info().Int64("applicationID", id).Int64("deletedBy", p.ID).Msg("Application withdrawn")
	return nil
}

// GetResumePath resolves the filesystem path and download name of an
// application's resume for the teacher the resume was submitted to.
func (s *applicationServiceImpl) GetResumePath(ctx context.Context, p auth.Principal, id int64) (string, string, error) {
	app, project, err := s.getWithProject(ctx, id)
	if err != nil {
		return "", "", err
	}

	if err := auth.CanDownloadResume(p, project); err != nil {
		return "", "", err
	}

	if app.ResumeURL == nil || *app.ResumeURL == "" {
		return "", "", apperrors.ErrFileNotFound
	}

	fullPath := s.storage.GetFullPath(*app.ResumeURL)
	if fullPath == "" {
		return "", "", apperrors.ErrFileNotFound
	}

	downloadName := app.StudentName + " - " + app.ProjectTitle + ".pdf"
	return fullPath, downloadName, nil
}

func (s *applicationServiceImpl) getWithProject(ctx context.Context, id int64) (*models.Application, *models.Project, error) {
	app, err := s.applications.GetApplicationByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	project, err := s.projects.GetProjectByID(ctx, app.ProjectID)
	if err != nil {
		return nil, nil, err
	}

	return app, project, nil
}
