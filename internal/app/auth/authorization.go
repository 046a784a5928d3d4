package auth

import (
	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/pkg/apperrors"
)

// Principal is the authenticated identity extracted from the access token.
type Principal struct {
	ID    int64
	Email string
	Role  models.Role
}

// The guard functions below decide access from the principal and fresh
// resource snapshots alone. They never touch storage, so every rule is
// checkable in isolation. A nil error means the action is allowed.

// CanCreateProject allows teachers and admins to create postings.
func CanCreateProject(p Principal) error {
	if p.Role == models.RoleTeacher || p.Role == models.RoleAdmin {
		return nil
	}
	return apperrors.NewForbiddenError("Only teachers can create project postings")
}

// CanModifyProject allows the owning teacher, or an admin, to update or
// delete a posting. Ownership is by author ID, not the denormalized email.
func CanModifyProject(p Principal, project *models.Project) error {
	if p.Role == models.RoleAdmin {
		return nil
	}
	if p.Role == models.RoleTeacher && project.AuthorID == p.ID {
		return nil
	}
	return apperrors.NewForbiddenError("Only the project author can modify this posting")
}

// CanViewProject controls read access. ACTIVE postings are visible to any
// authenticated principal; drafts and closed postings only to their author
// or an admin.
func CanViewProject(p Principal, project *models.Project) error {
	if project.Status == models.ProjectActive {
		return nil
	}
	return CanModifyProject(p, project)
}

// CanApply allows students to apply to ACTIVE postings. The project status
// check lives here because it is an authorization condition, not input
// validation: the same request succeeds or fails depending on the posting
// state at decision time.
func CanApply(p Principal, project *models.Project) error {
	if p.Role != models.RoleStudent {
		return apperrors.NewForbiddenError("Only students can apply to projects")
	}
	if project.Status != models.ProjectActive {
		return apperrors.NewConflictError("Project is not accepting applications")
	}
	return nil
}

// CanDecideApplication allows the teacher who owns the target project, or an
// admin, to accept or reject an application.
func CanDecideApplication(p Principal, app *models.Application, project *models.Project) error {
	if p.Role == models.RoleAdmin {
		return nil
	}
	if p.Role == models.RoleTeacher && project.AuthorID == p.ID {
		return nil
	}
	return apperrors.NewForbiddenError("Only the project author can decide this application")
}

// CanDeleteApplication allows a student to withdraw their own application,
// or an admin to remove any.
func CanDeleteApplication(p Principal, app *models.Application) error {
	if p.Role == models.RoleAdmin {
		return nil
	}
	if p.Role == models.RoleStudent && app.StudentID == p.ID {
		return nil
	}
	return apperrors.NewForbiddenError("Only the applicant can withdraw this application")
}

// CanDownloadResume restricts resume downloads to the teacher whose email
// matches the posting's recorded author email. The snapshot email, not the
// author ID, is the contract here: the resume was submitted to that address.
func CanDownloadResume(p Principal, project *models.Project) error {
	if p.Role == models.RoleTeacher && project != nil && project.AuthorEmail == p.Email {
		return nil
	}
	return apperrors.NewForbiddenError("Only the posting's author can download this resume")
}

// CanViewApplication allows the applicant, the owning teacher, or an admin
// to read an application.
func CanViewApplication(p Principal, app *models.Application, project *models.Project) error {
	if p.Role == models.RoleAdmin {
		return nil
	}
	if p.Role == models.RoleStudent && app.StudentID == p.ID {
		return nil
	}
	if p.Role == models.RoleTeacher && project != nil && project.AuthorID == p.ID {
		return nil
	}
	return apperrors.NewForbiddenError("You are not allowed to view this application")
}
