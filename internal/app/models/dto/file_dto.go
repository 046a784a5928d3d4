package dto

import (
	"time"

	"github.com/selin/labmatch/internal/app/models"
)

// FileResponse represents a stored file in API responses
type FileResponse struct {
	ID           int64     `json:"id"`
	FileURL      string    `json:"fileUrl"`
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	FileType     string    `json:"fileType"`
	ResourceType string    `json:"resourceType"`
	ResourceID   int64     `json:"resourceId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ToFileResponse maps a file model to its API representation
func ToFileResponse(f *models.File) FileResponse {
	return FileResponse{
		ID:           f.ID,
		FileURL:      f.FileURL,
		FileName:     f.FileName,
		FileSize:     f.FileSize,
		FileType:     f.FileType,
		ResourceType: string(f.ResourceType),
		ResourceID:   f.ResourceID,
		CreatedAt:    f.CreatedAt,
	}
}
