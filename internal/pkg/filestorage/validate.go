package filestorage

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/selin/labmatch/internal/pkg/apperrors"
)

// Upload size limits in bytes
const (
	MaxResumeSize   = 5 * 1024 * 1024
	MaxDocumentSize = 10 * 1024 * 1024
)

// UploadKind classifies an upload for validation purposes
type UploadKind string

const (
	KindResume   UploadKind = "resume"
	KindDocument UploadKind = "document"
)

// ValidateUpload checks the file header against the limits for its kind.
// Both kinds accept PDF only; the check looks at extension and declared
// content type, the payload itself is not sniffed.
func ValidateUpload(fileHeader *multipart.FileHeader, kind UploadKind) error {
	if fileHeader == nil {
		return apperrors.NewBadRequestError("File is required")
	}

	maxSize := int64(MaxResumeSize)
	if kind == KindDocument {
		maxSize = MaxDocumentSize
	}
	if fileHeader.Size > maxSize {
		return apperrors.NewCustomError(apperrors.ErrFileTooLarge, "File exceeds the maximum allowed size")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".pdf" {
		return apperrors.NewCustomError(apperrors.ErrInvalidFileType, "Only PDF files are accepted")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/pdf" {
		return apperrors.NewCustomError(apperrors.ErrInvalidFileType, "Only PDF files are accepted")
	}

	return nil
}
