package dto

import (
	"time"

	"github.com/selin/labmatch/internal/app/models"
)

// CreateProjectRequest represents the payload for creating a project posting
type CreateProjectRequest struct {
	Title        string     `json:"title" binding:"required,min=3,max=200"`
	Description  string     `json:"description" binding:"required,min=10"`
	Requirements []string   `json:"requirements,omitempty"`
	Duration     string     `json:"duration" binding:"required"`
	Location     string     `json:"location" binding:"required"`
	MaxStudents  int        `json:"maxStudents" binding:"required,min=1"`
	Status       string     `json:"status,omitempty"`
	Department   string     `json:"department" binding:"required"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Stipend      *string    `json:"stipend,omitempty"`
	Outcome      *string    `json:"outcome,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
}

// UpdateProjectRequest represents the payload for updating a project posting.
// Author identity fields are not part of the payload; they never change.
type UpdateProjectRequest struct {
	Title        string     `json:"title" binding:"required,min=3,max=200"`
	Description  string     `json:"description" binding:"required,min=10"`
	Requirements []string   `json:"requirements,omitempty"`
	Duration     string     `json:"duration" binding:"required"`
	Location     string     `json:"location" binding:"required"`
	MaxStudents  int        `json:"maxStudents" binding:"required,min=1"`
	Status       string     `json:"status" binding:"required"`
	Department   string     `json:"department" binding:"required"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Stipend      *string    `json:"stipend,omitempty"`
	Outcome      *string    `json:"outcome,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
}

// ProjectFilterRequest represents query parameters for listing projects
type ProjectFilterRequest struct {
	Status      string `form:"status"`
	AuthorEmail string `form:"authorEmail"`
	Department  string `form:"department"`
	Search      string `form:"search"`
	Tag         string `form:"tag"`
	SortBy      string `form:"sortBy"`
	SortOrder   string `form:"sortOrder"`
	Page        int    `form:"page"`
	PageSize    int    `form:"pageSize"`
}

// ProjectResponse represents a project posting in API responses
type ProjectResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Requirements []string   `json:"requirements"`
	Duration     string     `json:"duration"`
	Location     string     `json:"location"`
	MaxStudents  int        `json:"maxStudents"`
	Status       string     `json:"status"`
	AuthorID     int64      `json:"authorId"`
	AuthorEmail  string     `json:"authorEmail"`
	AuthorName   string     `json:"authorName"`
	Department   string     `json:"department"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Stipend      *string    `json:"stipend,omitempty"`
	Outcome      *string    `json:"outcome,omitempty"`
	ViewCount    int        `json:"viewCount"`
	Tags         []string   `json:"tags"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectResponse `json:"projects"`
	Pagination PaginationInfo    `json:"pagination"`
}

// ToProjectResponse maps a project model to its API representation
func ToProjectResponse(p *models.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Requirements: p.Requirements,
		Duration:     p.Duration,
		Location:     p.Location,
		MaxStudents:  p.MaxStudents,
		Status:       string(p.Status),
		AuthorID:     p.AuthorID,
		AuthorEmail:  p.AuthorEmail,
		AuthorName:   p.AuthorName,
		Department:   p.Department,
		Deadline:     p.Deadline,
		Stipend:      p.Stipend,
		Outcome:      p.Outcome,
		ViewCount:    p.ViewCount,
		Tags:         p.Tags,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if resp.Requirements == nil {
		resp.Requirements = []string{}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	return resp
}
