package dto

import (
	"time"

	"github.com/selin/labmatch/internal/app/models"
)

// CreateApplicationRequest represents the multipart form for applying to a
// project. The resume PDF travels alongside as the "resume" form file.
type CreateApplicationRequest struct {
	ProjectID   int64    `form:"projectId" binding:"required,min=1"`
	CoverLetter string   `form:"coverLetter" binding:"required,min=10"`
	Skills      []string `form:"skills"`
}

// UpdateApplicationStatusRequest represents a decision on an application
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ApplicationFilterRequest represents query parameters for listing applications
type ApplicationFilterRequest struct {
	ProjectID int64  `form:"projectId"`
	StudentID int64  `form:"studentId"`
	Status    string `form:"status"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// ApplicationResponse represents an application in API responses
type ApplicationResponse struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"projectId"`
	StudentID      int64     `json:"studentId"`
	StudentEmail   string    `json:"studentEmail"`
	StudentName    string    `json:"studentName"`
	StudentPhone   *string   `json:"studentPhone,omitempty"`
	GraduationYear *int      `json:"graduationYear,omitempty"`
	GPA            *float64  `json:"gpa,omitempty"`
	ProjectTitle   string    `json:"projectTitle"`
	TeacherEmail   string    `json:"teacherEmail"`
	TeacherName    string    `json:"teacherName"`
	CoverLetter    string    `json:"coverLetter"`
	Skills         []string  `json:"skills"`
	ResumeURL      *string   `json:"resumeUrl,omitempty"`
	Status         string    `json:"status"`
	AppliedAt      time.Time `json:"appliedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ApplicationListResponse represents a paginated list of applications
type ApplicationListResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// ToApplicationResponse maps an application model to its API representation
func ToApplicationResponse(a *models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:             a.ID,
		ProjectID:      a.ProjectID,
		StudentID:      a.StudentID,
		StudentEmail:   a.StudentEmail,
		StudentName:    a.StudentName,
		StudentPhone:   a.StudentPhone,
		GraduationYear: a.GraduationYear,
		GPA:            a.GPA,
		ProjectTitle:   a.ProjectTitle,
		TeacherEmail:   a.TeacherEmail,
		TeacherName:    a.TeacherName,
		CoverLetter:    a.CoverLetter,
		Skills:         a.Skills,
		ResumeURL:      a.ResumeURL,
		Status:         string(a.Status),
		AppliedAt:      a.AppliedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	return resp
}
