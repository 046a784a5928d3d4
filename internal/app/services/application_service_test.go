package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/selin/labmatch/internal/app/auth"
	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/app/models/dto"
	"github.com/selin/labmatch/internal/pkg/apperrors"
)

type applicationFixture struct {
	*projectFixture
	svc      ApplicationService
	notifier *fakeNotifier
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()
	pf := newProjectFixture(t)
	f := &applicationFixture{
		projectFixture: pf,
		notifier:       newFakeNotifier(),
	}
	f.svc = NewApplicationService(pf.apps, pf.projects, pf.users, pf.storage, f.notifier)
	return f
}

func (f *applicationFixture) apply(t *testing.T, projectID int64) *dto.ApplicationResponse {
	t.Helper()
	resp, err := f.svc.Apply(context.Background(), f.student, dto.CreateApplicationRequest{
		ProjectID:   projectID,
		CoverLetter: "I would love to join this project.",
		Skills:      []string{"go", "sql"},
	}, pdfHeader("cv.pdf", 1024))
	require.NoError(t, err)
	return resp
}

func TestApplyCapturesSnapshots(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))

	resp := f.apply(t, posting.ID)
	require.Equal(t, string(models.ApplicationPending), resp.Status)
	require.Equal(t, "ada"+testDomain, resp.StudentEmail)
	require.Equal(t, "Ada Lovelace", resp.StudentName)
	require.Equal(t, posting.Title, resp.ProjectTitle)
	require.Equal(t, posting.AuthorEmail, resp.TeacherEmail)
	require.NotNil(t, resp.ResumeURL)
	require.Len(t, f.storage.saved, 1)

	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, "received", f.notifier.sent[0].kind)
	require.Equal(t, posting.AuthorEmail, f.notifier.sent[0].toEmail)
}

func TestApplyRejectsNonActiveProject(t *testing.T) {
	f := newApplicationFixture(t)
	draft := f.createPosting(t, string(models.ProjectDraft))

	_, err := f.svc.Apply(context.Background(), f.student, dto.CreateApplicationRequest{
		ProjectID:   draft.ID,
		CoverLetter: "I would love to join this project.",
	}, pdfHeader("cv.pdf", 1024))
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.Empty(t, f.storage.saved, "no resume is stored for a rejected submission")
}

func TestApplyTeacherForbidden(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))

	_, err := f.svc.Apply(context.Background(), f.teacher, dto.CreateApplicationRequest{
		ProjectID:   posting.ID,
		CoverLetter: "I would love to join this project.",
	}, pdfHeader("cv.pdf", 1024))
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestApplyRequiresCompletedSetup(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))

	incomplete := f.users.add(&models.User{
		Email: "fresh" + testDomain, FirstName: "Fresh", LastName: "Arrival",
		Role: models.RoleStudent, IsActive: true, SetupComplete: false,
	})
	principal := auth.Principal{ID: incomplete.ID, Email: incomplete.Email, Role: models.RoleStudent}

	_, err := f.svc.Apply(context.Background(), principal, dto.CreateApplicationRequest{
		ProjectID:   posting.ID,
		CoverLetter: "I would love to join this project.",
	}, pdfHeader("cv.pdf", 1024))
	require.ErrorIs(t, err, apperrors.ErrSetupRequired)
}

func TestApplyWithoutResume(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))

	resp, err := f.svc.Apply(context.Background(), f.student, dto.CreateApplicationRequest{
		ProjectID:   posting.ID,
		CoverLetter: "I would love to join this project.",
	}, nil)
	require.NoError(t, err)
	require.Nil(t, resp.ResumeURL)
	require.Empty(t, f.storage.saved, "nothing is stored when no resume is attached")

	_, _, err = f.svc.GetResumePath(context.Background(), f.teacher, resp.ID)
	require.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestApplyRejectsDuplicate(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))

	f.apply(t, posting.ID)

	_, err := f.svc.Apply(context.Background(), f.student, dto.CreateApplicationRequest{
		ProjectID:   posting.ID,
		CoverLetter: "Second attempt at the same posting.",
	}, pdfHeader("cv.pdf", 1024))
	require.ErrorIs(t, err, apperrors.ErrDuplicateApplication)
	require.Len(t, f.storage.saved, 1, "the duplicate is rejected before the upload")
}

func TestApplyValidatesResume(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))

	req := dto.CreateApplicationRequest{
		ProjectID:   posting.ID,
		CoverLetter: "I would love to join this project.",
	}

	_, err := f.svc.Apply(context.Background(), f.student, req, pdfHeader("cv.docx", 1024))
	require.ErrorIs(t, err, apperrors.ErrInvalidFileType)

	_, err = f.svc.Apply(context.Background(), f.student, req, pdfHeader("cv.pdf", 6*1024*1024))
	require.ErrorIs(t, err, apperrors.ErrFileTooLarge)
}

func TestDecideIsTerminal(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))
	app := f.apply(t, posting.ID)

	_, err := f.svc.Decide(context.Background(), f.teacher, app.ID, "PENDING")
	require.ErrorIs(t, err, apperrors.ErrInvalidStatus, "PENDING is never a decision target")

	other := auth.Principal{ID: 999, Email: "other" + testDomain, Role: models.RoleTeacher}
	_, err = f.svc.Decide(context.Background(), other, app.ID, string(models.ApplicationAccepted))
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	decided, err := f.svc.Decide(context.Background(), f.teacher, app.ID, string(models.ApplicationAccepted))
	require.NoError(t, err)
	require.Equal(t, string(models.ApplicationAccepted), decided.Status)

	_, err = f.svc.Decide(context.Background(), f.teacher, app.ID, string(models.ApplicationRejected))
	require.ErrorIs(t, err, apperrors.ErrApplicationDecided)

	require.Equal(t, "decided", f.notifier.sent[len(f.notifier.sent)-1].kind)
	require.Equal(t, "ada"+testDomain, f.notifier.sent[len(f.notifier.sent)-1].toEmail)
}

func TestListApplicationsScoping(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))
	f.apply(t, posting.ID)

	// A second student applies to the same posting
	second := f.users.add(&models.User{
		Email: "grace" + testDomain, FirstName: "Grace", LastName: "Hopper",
		Role: models.RoleStudent, IsActive: true, SetupComplete: true,
	})
	secondPrincipal := auth.Principal{ID: second.ID, Email: second.Email, Role: models.RoleStudent}
	_, err := f.svc.Apply(context.Background(), secondPrincipal, dto.CreateApplicationRequest{
		ProjectID:   posting.ID,
		CoverLetter: "Count me in for this project.",
	}, pdfHeader("cv.pdf", 2048))
	require.NoError(t, err)

	mine, err := f.svc.ListApplications(context.Background(), f.student, dto.ApplicationFilterRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Applications, 1)
	require.Equal(t, f.student.ID, mine.Applications[0].StudentID)

	teacherView, err := f.svc.ListApplications(context.Background(), f.teacher, dto.ApplicationFilterRequest{})
	require.NoError(t, err)
	require.Len(t, teacherView.Applications, 2)

	otherTeacher := auth.Principal{ID: 999, Email: "other" + testDomain, Role: models.RoleTeacher}
	otherView, err := f.svc.ListApplications(context.Background(), otherTeacher, dto.ApplicationFilterRequest{})
	require.NoError(t, err)
	require.Empty(t, otherView.Applications)

	adminView, err := f.svc.ListApplications(context.Background(), f.admin, dto.ApplicationFilterRequest{})
	require.NoError(t, err)
	require.Len(t, adminView.Applications, 2)

	_, err = f.svc.ListApplications(context.Background(), f.student, dto.ApplicationFilterRequest{Status: "MAYBE"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestGetApplicationVisibility(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))
	app := f.apply(t, posting.ID)

	_, err := f.svc.GetApplication(context.Background(), f.student, app.ID)
	require.NoError(t, err)

	_, err = f.svc.GetApplication(context.Background(), f.teacher, app.ID)
	require.NoError(t, err)

	stranger := auth.Principal{ID: 999, Email: "grace" + testDomain, Role: models.RoleStudent}
	_, err = f.svc.GetApplication(context.Background(), stranger, app.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestWithdrawDeletesResume(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))
	app := f.apply(t, posting.ID)

	err := f.svc.Withdraw(context.Background(), f.teacher, app.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied, "teachers cannot withdraw applications")

	require.NoError(t, f.svc.Withdraw(context.Background(), f.student, app.ID))

	_, err = f.apps.GetApplicationByID(context.Background(), app.ID)
	require.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	require.Contains(t, f.storage.deleted, *app.ResumeURL)
}

func TestGetResumePath(t *testing.T) {
	f := newApplicationFixture(t)
	posting := f.createPosting(t, string(models.ProjectActive))
	app := f.apply(t, posting.ID)

	path, name, err := f.svc.GetResumePath(context.Background(), f.teacher, app.ID)
	require.NoError(t, err)
	require.Equal(t, f.storage.GetFullPath(*app.ResumeURL), path)
	require.Equal(t, "Ada Lovelace - "+posting.Title+".pdf", name)

	// The download right follows the recorded author email, not the author ID
	sameEmail := auth.Principal{ID: 777, Email: f.teacher.Email, Role: models.RoleTeacher}
	_, _, err = f.svc.GetResumePath(context.Background(), sameEmail, app.ID)
	require.NoError(t, err)

	_, _, err = f.svc.GetResumePath(context.Background(), f.student, app.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied, "the applicant does not download through this path")

	_, _, err = f.svc.GetResumePath(context.Background(), f.admin, app.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	otherTeacher := auth.Principal{ID: 999, Email: "other" + testDomain, Role: models.RoleTeacher}
	_, _, err = f.svc.GetResumePath(context.Background(), otherTeacher, app.ID)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
