package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/pkg/apperrors"
)

var (
	student      = Principal{ID: 1, Email: "ada@campus.edu.tr", Role: models.RoleStudent}
	owner        = Principal{ID: 2, Email: "turing@campus.edu.tr", Role: models.RoleTeacher}
	otherTeacher = Principal{ID: 3, Email: "hopper@campus.edu.tr", Role: models.RoleTeacher}
	admin        = Principal{ID: 4, Email: "admin@campus.edu.tr", Role: models.RoleAdmin}
)

func activeProject() *models.Project {
	return &models.Project{ID: 10, AuthorID: owner.ID, AuthorEmail: owner.Email, Status: models.ProjectActive}
}

func draftProject() *models.Project {
	p := activeProject()
	p.Status = models.ProjectDraft
	return p
}

func studentApplication() *models.Application {
	return &models.Application{ID: 20, ProjectID: 10, StudentID: student.ID}
}

func TestCanCreateProject(t *testing.T) {
	require.NoError(t, CanCreateProject(owner))
	require.NoError(t, CanCreateProject(admin))
	require.ErrorIs(t, CanCreateProject(student), apperrors.ErrPermissionDenied)
}

func TestCanModifyProject(t *testing.T) {
	project := activeProject()

	require.NoError(t, CanModifyProject(owner, project))
	require.NoError(t, CanModifyProject(admin, project))
	require.ErrorIs(t, CanModifyProject(otherTeacher, project), apperrors.ErrPermissionDenied)
	require.ErrorIs(t, CanModifyProject(student, project), apperrors.ErrPermissionDenied)

	// Ownership is decided by author ID, never by the denormalized email
	impostor := Principal{ID: 99, Email: owner.Email, Role: models.RoleTeacher}
	require.ErrorIs(t, CanModifyProject(impostor, project), apperrors.ErrPermissionDenied)
}

func TestCanViewProject(t *testing.T) {
	require.NoError(t, CanViewProject(student, activeProject()))
	require.NoError(t, CanViewProject(owner, draftProject()))
	require.NoError(t, CanViewProject(admin, draftProject()))
	require.ErrorIs(t, CanViewProject(student, draftProject()), apperrors.ErrPermissionDenied)
	require.ErrorIs(t, CanViewProject(otherTeacher, draftProject()), apperrors.ErrPermissionDenied)
}

func TestCanApply(t *testing.T) {
	require.NoError(t, CanApply(student, activeProject()))

	require.ErrorIs(t, CanApply(owner, activeProject()), apperrors.ErrPermissionDenied)
	require.ErrorIs(t, CanApply(admin, activeProject()), apperrors.ErrPermissionDenied)

	// A non-active posting is a conflict, not a permission failure: the same
	// student succeeds once the posting reopens
	require.ErrorIs(t, CanApply(student, draftProject()), apperrors.ErrConflict)

	closed := activeProject()
	closed.Status = models.ProjectClosed
	require.ErrorIs(t, CanApply(student, closed), apperrors.ErrConflict)
}

func TestCanDecideApplication(t *testing.T) {
	app := studentApplication()
	project := activeProject()

	require.NoError(t, CanDecideApplication(owner, app, project))
	require.NoError(t, CanDecideApplication(admin, app, project))
	require.ErrorIs(t, CanDecideApplication(otherTeacher, app, project), apperrors.ErrPermissionDenied)
	require.ErrorIs(t, CanDecideApplication(student, app, project), apperrors.ErrPermissionDenied)
}

func TestCanDeleteApplication(t *testing.T) {
	app := studentApplication()

	require.NoError(t, CanDeleteApplication(student, app))
	require.NoError(t, CanDeleteApplication(admin, app))
	require.ErrorIs(t, CanDeleteApplication(owner, app), apperrors.ErrPermissionDenied)

	otherStudent := Principal{ID: 50, Email: "grace@campus.edu.tr", Role: models.RoleStudent}
	require.ErrorIs(t, CanDeleteApplication(otherStudent, app), apperrors.ErrPermissionDenied)
}

func TestCanViewApplication(t *testing.T) {
	app := studentApplication()
	project := activeProject()

	require.NoError(t, CanViewApplication(student, app, project))
	require.NoError(t, CanViewApplication(owner, app, project))
	require.NoError(t, CanViewApplication(admin, app, project))
	require.ErrorIs(t, CanViewApplication(otherTeacher, app, project), apperrors.ErrPermissionDenied)

	otherStudent := Principal{ID: 50, Email: "grace@campus.edu.tr", Role: models.RoleStudent}
	require.ErrorIs(t, CanViewApplication(otherStudent, app, project), apperrors.ErrPermissionDenied)
}

func TestCanDownloadResume(t *testing.T) {
	project := activeProject()

	require.NoError(t, CanDownloadResume(owner, project))

	// The snapshot email decides, not the author ID
	renamed := Principal{ID: 99, Email: owner.Email, Role: models.RoleTeacher}
	require.NoError(t, CanDownloadResume(renamed, project))

	require.ErrorIs(t, CanDownloadResume(otherTeacher, project), apperrors.ErrPermissionDenied)
	require.ErrorIs(t, CanDownloadResume(student, project), apperrors.ErrPermissionDenied)
	require.ErrorIs(t, CanDownloadResume(admin, project), apperrors.ErrPermissionDenied)
}
