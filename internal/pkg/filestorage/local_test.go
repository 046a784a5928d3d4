package filestorage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// realFileHeader builds a *multipart.FileHeader backed by actual content so
// fileHeader.Open works.
func realFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	headers := form.File["file"]
	require.Len(t, headers, 1)
	return headers[0]
}

func TestSaveFileWithPathRoundTrip(t *testing.T) {
	base := t.TempDir()
	storage, err := NewLocalStorage(base, "http://localhost:8080/uploads")
	require.NoError(t, err)

	content := []byte("%PDF-1.4 test payload")
	url, err := storage.SaveFileWithPath(realFileHeader(t, "cv.pdf", content), "resumes")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/resumes/"))
	require.True(t, strings.HasSuffix(url, ".pdf"), "original extension is kept")
	require.NotContains(t, url, "cv.pdf", "original filename is hidden")

	fullPath := storage.GetFullPath(url)
	require.Equal(t, filepath.Join(base, "resumes", filepath.Base(url)), fullPath)

	saved, err := os.ReadFile(fullPath)
	require.NoError(t, err)
	require.Equal(t, content, saved)

	require.NoError(t, storage.DeleteFile(url))
	_, err = os.Stat(fullPath)
	require.True(t, os.IsNotExist(err))

	// Deleting again is a no-op
	require.NoError(t, storage.DeleteFile(url))
}

func TestSaveFileWithoutSubdirectory(t *testing.T) {
	base := t.TempDir()
	storage, err := NewLocalStorage(base, "http://localhost:8080/uploads")
	require.NoError(t, err)

	url, err := storage.SaveFile(realFileHeader(t, "avatar.pdf", []byte("data")))
	require.NoError(t, err)

	fullPath := storage.GetFullPath(url)
	require.Equal(t, filepath.Join(base, filepath.Base(url)), fullPath)
	_, err = os.Stat(fullPath)
	require.NoError(t, err)
}

func TestSaveFileNilHeader(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	url, err := storage.SaveFile(nil)
	require.NoError(t, err)
	require.Empty(t, url)
}

func TestDeleteFileEmptyPath(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	require.NoError(t, storage.DeleteFile(""))
}
