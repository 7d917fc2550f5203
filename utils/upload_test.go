package utils

import (
	"bytes"
	"mime/multipart"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, form.Close())

	parsed, err := multipart.NewReader(body, form.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = parsed.RemoveAll() })
	return parsed.File["file"][0]
}

// chdir changes the working directory for the duration of the test,
// matching t.Chdir which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestUploadImageLocalFallback(t *testing.T) {
	chdir(t, t.TempDir())

	header := testFileHeader(t, "badge.png", []byte("png-bytes"))
	url, err := UploadImage(header, "items")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/items-"), "got %s", url)
	assert.True(t, strings.HasSuffix(url, ".png"), "got %s", url)

	stored, err := os.ReadFile(GetUploadPath(strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), stored)
}

func TestUploadImageDefaultsExtension(t *testing.T) {
	chdir(t, t.TempDir())

	header := testFileHeader(t, "photo", []byte("raw"))
	url, err := UploadImage(header, "avatars")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".jpg"), "got %s", url)
}
