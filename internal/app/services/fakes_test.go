package services

import (
	"context"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"sync"
	"time"

	"github.com/selin/labmatch/internal/app/models"
	"github.com/selin/labmatch/internal/app/repositories"
	"github.com/selin/labmatch/internal/pkg/apperrors"
)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
	calls  int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[int64]*models.User)}
}

func (s *fakeUserStore) add(user *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	u.ID = s.nextID
	s.nextID++
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = &u
	clone := u
	return &clone
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	s.calls++
	for _, existing := range s.users {
		if existing.Email == user.Email {
			s.mu.Unlock()
			return nil, apperrors.ErrEmailAlreadyExists
		}
		if user.Username != nil && existing.Username != nil && *existing.Username == *user.Username {
			s.mu.Unlock()
			return nil, apperrors.ErrUsernameExists
		}
	}
	s.mu.Unlock()
	return s.add(user), nil
}

func (s *fakeUserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if u, ok := s.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for _, u := range s.users {
		if u.Username != nil && *u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeUserStore) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for _, u := range s.users {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeUserStore) UpdateProfile(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	stored.FirstName = user.FirstName
	stored.LastName = user.LastName
	stored.Department = user.Department
	stored.Phone = user.Phone
	stored.GraduationYear = user.GraduationYear
	stored.GPA = user.GPA
	stored.UpdatedAt = time.Now()
	return nil
}

func (s *fakeUserStore) CompleteSetup(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if stored.SetupComplete {
		return apperrors.ErrSetupAlreadyDone
	}
	for id, existing := range s.users {
		if id != user.ID && user.Username != nil && existing.Username != nil && *existing.Username == *user.Username {
			return apperrors.ErrUsernameExists
		}
	}
	stored.Username = user.Username
	stored.Password = user.Password
	stored.Role = user.Role
	stored.Department = user.Department
	stored.Phone = user.Phone
	stored.GraduationYear = user.GraduationYear
	stored.GPA = user.GPA
	stored.SetupComplete = true
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		now := time.Now()
		u.LastLoginAt = &now
		return nil
	}
	return apperrors.ErrUserNotFound
}

type tokenRecord struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*tokenRecord
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*tokenRecord)}
}

func (s *fakeTokenStore) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[token]; exists {
		return apperrors.ErrTokenInvalid
	}
	s.tokens[token] = &tokenRecord{userID: userID, expiry: expiryDate}
	return nil
}

func (s *fakeTokenStore) GetTokenByValue(ctx context.Context, token string) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[token]
	if !ok {
		return 0, time.Time{}, apperrors.ErrTokenNotFound
	}
	if rec.revoked {
		return 0, time.Time{}, apperrors.ErrTokenRevoked
	}
	if time.Now().After(rec.expiry) {
		return 0, time.Time{}, apperrors.ErrTokenExpired
	}
	return rec.userID, rec.expiry, nil
}

func (s *fakeTokenStore) RevokeToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	rec.revoked = true
	return nil
}

func (s *fakeTokenStore) RevokeAllUserTokens(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.tokens {
		if rec.userID == userID {
			rec.revoked = true
		}
	}
	return nil
}

type fakeProjectStore struct {
	mu       sync.Mutex
	nextID   int64
	projects map[int64]*models.Project
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{nextID: 1, projects: make(map[int64]*models.Project)}
}

func (s *fakeProjectStore) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *project
	p.ID = s.nextID
	s.nextID++
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.projects[p.ID] = &p
	clone := p
	return &clone, nil
}

func (s *fakeProjectStore) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, apperrors.ErrProjectNotFound
}

func (s *fakeProjectStore) ListProjects(ctx context.Context, filter repositories.ProjectFilter) ([]*models.Project, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.Project
	for _, p := range s.projects {
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		if filter.AuthorID != 0 && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.AuthorEmail != "" && p.AuthorEmail != filter.AuthorEmail {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	total := int64(len(matched))
	if int(filter.Offset) >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *fakeProjectStore) UpdateProject(ctx context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.projects[project.ID]
	if !ok {
		return apperrors.ErrProjectNotFound
	}
	clone := *project
	clone.AuthorID = stored.AuthorID
	clone.AuthorEmail = stored.AuthorEmail
	clone.AuthorName = stored.AuthorName
	clone.CreatedAt = stored.CreatedAt
	clone.UpdatedAt = time.Now()
	s.projects[project.ID] = &clone
	return nil
}

func (s *fakeProjectStore) DeleteProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return apperrors.ErrProjectNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *fakeProjectStore) IncrementViewCount(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return apperrors.ErrProjectNotFound
	}
	p.ViewCount++
	return nil
}

type fakeApplicationStore struct {
	mu     sync.Mutex
	nextID int64
	apps   map[int64]*models.Application
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{nextID: 1, apps: make(map[int64]*models.Application)}
}

func (s *fakeApplicationStore) CreateApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.apps {
		if existing.ProjectID == app.ProjectID && existing.StudentID == app.StudentID {
			return nil, apperrors.ErrDuplicateApplication
		}
	}
	a := *app
	a.ID = s.nextID
	s.nextID++
	a.Status = models.ApplicationPending
	now := time.Now()
	a.AppliedAt = now
	a.UpdatedAt = now
	s.apps[a.ID] = &a
	clone := a
	return &clone, nil
}

func (s *fakeApplicationStore) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.apps[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, apperrors.ErrApplicationNotFound
}

func (s *fakeApplicationStore) FindByProjectAndStudent(ctx context.Context, projectID, studentID int64) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.apps {
		if a.ProjectID == projectID && a.StudentID == studentID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, apperrors.ErrApplicationNotFound
}

func (s *fakeApplicationStore) ListApplications(ctx context.Context, filter repositories.ApplicationFilter) ([]*models.Application, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.Application
	for _, a := range s.apps {
		if filter.ProjectID != 0 && a.ProjectID != filter.ProjectID {
			continue
		}
		if filter.StudentID != 0 && a.StudentID != filter.StudentID {
			continue
		}
		if filter.TeacherEmail != "" && a.TeacherEmail != filter.TeacherEmail {
			continue
		}
		if filter.Status != "" && string(a.Status) != filter.Status {
			continue
		}
		clone := *a
		matched = append(matched, &clone)
	}
	total := int64(len(matched))
	if int(filter.Offset) >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *fakeApplicationStore) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	if a.Status != models.ApplicationPending {
		return apperrors.ErrApplicationDecided
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (s *fakeApplicationStore) DeleteApplication(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[id]; !ok {
		return apperrors.ErrApplicationNotFound
	}
	delete(s.apps, id)
	return nil
}

// fakeApplicationStore doubles as the resume lister used by project deletion
func (s *fakeApplicationStore) ListResumeURLsByProject(ctx context.Context, projectID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var urls []string
	for _, a := range s.apps {
		if a.ProjectID == projectID && a.ResumeURL != nil && *a.ResumeURL != "" {
			urls = append(urls, *a.ResumeURL)
		}
	}
	return urls, nil
}

type fakeFileStore struct {
	mu     sync.Mutex
	nextID int64
	files  map[int64]*models.File
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{nextID: 1, files: make(map[int64]*models.File)}
}

func (s *fakeFileStore) CreateFile(ctx context.Context, file *models.File) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := *file
	f.ID = s.nextID
	s.nextID++
	f.CreatedAt = time.Now()
	s.files[f.ID] = &f
	clone := f
	return &clone, nil
}

func (s *fakeFileStore) GetFileByID(ctx context.Context, id int64) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok {
		clone := *f
		return &clone, nil
	}
	return nil, apperrors.ErrFileNotFound
}

func (s *fakeFileStore) ListFilesByResource(ctx context.Context, resourceType models.ResourceType, resourceID int64) ([]*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*models.File
	for _, f := range s.files {
		if f.ResourceType == resourceType && f.ResourceID == resourceID {
			clone := *f
			matched = append(matched, &clone)
		}
	}
	return matched, nil
}

func (s *fakeFileStore) DeleteFile(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return apperrors.ErrFileNotFound
	}
	delete(s.files, id)
	return nil
}

func (s *fakeFileStore) DeleteFilesByResource(ctx context.Context, resourceType models.ResourceType, resourceID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var urls []string
	for id, f := range s.files {
		if f.ResourceType == resourceType && f.ResourceID == resourceID {
			urls = append(urls, f.FileURL)
			delete(s.files, id)
		}
	}
	return urls, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	nextID  int
	saved   []string
	deleted []string
	failure error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{}
}

func (s *fakeStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	return s.SaveFileWithPath(fileHeader, "")
}

func (s *fakeStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return "", s.failure
	}
	s.nextID++
	url := "/uploads/" + path + "/" + strconv.Itoa(s.nextID) + ".pdf"
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakeStorage) DeleteFile(filePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, filePath)
	return nil
}

func (s *fakeStorage) GetFullPath(fileURL string) string {
	return "/srv/storage" + fileURL
}

type notification struct {
	kind    string
	toEmail string
	subject string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{}
}

func (n *fakeNotifier) SendApplicationReceivedEmail(toEmail, toName, studentName, projectTitle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: "received", toEmail: toEmail, subject: projectTitle})
	return nil
}

func (n *fakeNotifier) SendApplicationDecidedEmail(toEmail, toName, projectTitle, status string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{kind: "decided", toEmail: toEmail, subject: projectTitle})
	return nil
}

func pdfHeader(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{"application/pdf"}},
	}
}
