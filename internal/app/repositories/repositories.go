package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	TokenRepository       *TokenRepository
	ProjectRepository     *ProjectRepository
	ApplicationRepository *ApplicationRepository
	FileRepository        *FileRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		TokenRepository:       NewTokenRepository(db),
		ProjectRepository:     NewProjectRepository(db),
		ApplicationRepository: NewApplicationRepository(db),
		FileRepository:        NewFileRepository(db),
	}
}
