package models

import "time"

// Project represents a research/hackathon/conference posting authored by a
// teacher. The author reference (AuthorID plus the denormalized email/name)
// is immutable after creation. Only ACTIVE projects accept applications.
type Project struct {
	ID           int64         `json:"id" db:"id"`
	Title        string        `json:"title" db:"title"`
	Description  string        `json:"description" db:"description"`
	Requirements []string      `json:"requirements" db:"requirements"`
	Duration     string        `json:"duration" db:"duration"`
	Location     string        `json:"location" db:"location"`
	MaxStudents  int           `json:"maxStudents" db:"max_students"`
	Status       ProjectStatus `json:"status" db:"status"`
	AuthorID     int64         `json:"authorId" db:"author_id"`
	AuthorEmail  string        `json:"authorEmail" db:"author_email"`
	AuthorName   string        `json:"authorName" db:"author_name"`
	Department   string        `json:"department" db:"department"`
	Deadline     *time.Time    `json:"deadline,omitempty" db:"deadline"`
	Stipend      *string       `json:"stipend,omitempty" db:"stipend"`
	Outcome      *string       `json:"outcome,omitempty" db:"outcome"`
	ViewCount    int           `json:"viewCount" db:"view_count"`
	Tags         []string      `json:"tags" db:"tags"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
}
