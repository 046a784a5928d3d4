package services

import (
	"github.com/selin/labmatch/internal/app/repositories"
	"github.com/selin/labmatch/internal/pkg/auth"
	"github.com/selin/labmatch/internal/pkg/email"
	"github.com/selin/labmatch/internal/pkg/filestorage"
)

// Services holds all the service instances
type Services struct {
	AuthService        AuthService
	ProjectService     ProjectService
	ApplicationService ApplicationService
}

// NewServices wires the service layer onto the repositories and shared infrastructure
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, storage filestorage.FileStorage, notifier email.EmailService, emailDomain string) *Services {
	return &Services{
		AuthService: NewAuthService(repos.UserRepository, repos.TokenRepository, jwtService, emailDomain),
		ProjectService: NewProjectService(repos.ProjectRepository, repos.FileRepository,
			repos.ApplicationRepository, repos.UserRepository, storage),
		ApplicationService: NewApplicationService(repos.ApplicationRepository, repos.ProjectRepository,
			repos.UserRepository, storage, notifier),
	}
}
