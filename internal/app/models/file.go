package models

import "time"

// File defines a stored attachment record based on the 'files' table
type File struct {
	ID           int64        `json:"id" db:"id"`
	FileURL      string       `json:"fileUrl" db:"file_url"`
	FileName     string       `json:"fileName" db:"file_name"`
	FileSize     int64        `json:"fileSize" db:"file_size"`
	FileType     string       `json:"fileType" db:"file_type"`
	ResourceType ResourceType `json:"resourceType" db:"resource_type"`
	ResourceID   int64        `json:"resourceId" db:"resource_id"`
	UploadedBy   int64        `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
}
