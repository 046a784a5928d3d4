package models

// Role defines the user role type
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// ValidRole reports whether the value is one of the closed role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// ProjectStatus represents the lifecycle state of a project posting
type ProjectStatus string

const (
	ProjectDraft  ProjectStatus = "DRAFT"
	ProjectActive ProjectStatus = "ACTIVE"
	ProjectClosed ProjectStatus = "CLOSED"
)

// ValidProjectStatus reports whether the value is a known project status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectDraft, ProjectActive, ProjectClosed:
		return true
	default:
		return false
	}
}

// ApplicationStatus represents the lifecycle state of an application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// ValidDecision reports whether the status is a legal decision target.
// PENDING is the initial state only; it is never a transition target.
func ValidDecision(s ApplicationStatus) bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// ResourceType identifies what a stored file is attached to
type ResourceType string

const (
	ResourceResume          ResourceType = "RESUME"
	ResourceProjectDocument ResourceType = "PROJECT_DOCUMENT"
)
