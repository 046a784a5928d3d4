package models

import "time"

// Application represents a student's submission against a project posting.
// The student and project fields other than the two foreign keys are
// point-in-time snapshots captured at creation; they are never resynced
// when the source profile or posting changes.
type Application struct {
	ID        int64             `json:"id" db:"id"`
	ProjectID int64             `json:"projectId" db:"project_id"`
	StudentID int64             `json:"studentId" db:"student_id"`

	// Snapshot fields, immutable after creation
	StudentEmail   string   `json:"studentEmail" db:"student_email"`
	StudentName    string   `json:"studentName" db:"student_name"`
	StudentPhone   *string  `json:"studentPhone,omitempty" db:"student_phone"`
	GraduationYear *int     `json:"graduationYear,omitempty" db:"graduation_year"`
	GPA            *float64 `json:"gpa,omitempty" db:"gpa"`
	ProjectTitle   string   `json:"projectTitle" db:"project_title"`
	TeacherEmail   string   `json:"teacherEmail" db:"teacher_email"`
	TeacherName    string   `json:"teacherName" db:"teacher_name"`

	CoverLetter string            `json:"coverLetter" db:"cover_letter"`
	Skills      []string          `json:"skills" db:"skills"`
	ResumeURL   *string           `json:"resumeUrl,omitempty" db:"resume_url"`
	Status      ApplicationStatus `json:"status" db:"status"`
	AppliedAt   time.Time         `json:"appliedAt" db:"applied_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}
