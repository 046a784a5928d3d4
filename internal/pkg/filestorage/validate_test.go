package filestorage

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/selin/labmatch/internal/pkg/apperrors"
)

func header(name, contentType string, size int64) *multipart.FileHeader {
	h := &multipart.FileHeader{Filename: name, Size: size, Header: textproto.MIMEHeader{}}
	if contentType != "" {
		h.Header.Set("Content-Type", contentType)
	}
	return h
}

func TestValidateUploadResume(t *testing.T) {
	require.NoError(t, ValidateUpload(header("cv.pdf", "application/pdf", 1024), KindResume))
	require.NoError(t, ValidateUpload(header("CV.PDF", "", MaxResumeSize), KindResume), "extension check is case-insensitive, declared type optional")

	require.ErrorIs(t, ValidateUpload(nil, KindResume), apperrors.ErrBadRequest)
	require.ErrorIs(t, ValidateUpload(header("cv.pdf", "application/pdf", MaxResumeSize+1), KindResume), apperrors.ErrFileTooLarge)
	require.ErrorIs(t, ValidateUpload(header("cv.docx", "application/pdf", 1024), KindResume), apperrors.ErrInvalidFileType)
	require.ErrorIs(t, ValidateUpload(header("cv.pdf", "image/png", 1024), KindResume), apperrors.ErrInvalidFileType)
}

func TestValidateUploadDocument(t *testing.T) {
	require.NoError(t, ValidateUpload(header("syllabus.pdf", "application/pdf", MaxDocumentSize), KindDocument))

	// The document limit is larger than the resume limit
	oversizedForResume := header("syllabus.pdf", "application/pdf", MaxResumeSize+1)
	require.NoError(t, ValidateUpload(oversizedForResume, KindDocument))
	require.ErrorIs(t, ValidateUpload(oversizedForResume, KindResume), apperrors.ErrFileTooLarge)

	require.ErrorIs(t, ValidateUpload(header("syllabus.pdf", "application/pdf", MaxDocumentSize+1), KindDocument), apperrors.ErrFileTooLarge)
}
