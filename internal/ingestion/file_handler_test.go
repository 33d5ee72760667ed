package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewFileHandler(t *testing.T) {
	fh := NewFileHandler("test_uploads")
	require.NotNil(t, fh)
	assert.Equal(t, "test_uploads", fh.UploadsDir())
}

func TestSaveUploadedFile(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "uploads")
	fh := NewFileHandler(tmpDir)

	path, err := fh.SaveUploadedFile("../escape_cv.pdf", strings.NewReader("%PDF-1.4 test"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "escape_cv.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
}

func TestCollectResumes_OrderAndFiltering(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "batch")
	require.NoError(t, os.MkdirAll(sub, 0755))

	writeFile(t, filepath.Join(dir, "zed.pdf"), "%PDF-1.4 zed")
	writeFile(t, filepath.Join(sub, "b.docx"), "PK\x03\x04 not really a docx")
	writeFile(t, filepath.Join(sub, "a.pdf"), "%PDF-1.4 a")
	writeFile(t, filepath.Join(sub, "notes.txt"), "plain text")

	resumes, err := CollectResumes([]string{filepath.Join(dir, "zed.pdf"), sub})
	require.NoError(t, err)

	want := []struct {
		name        string
		contentType string
	}{
		{"zed.pdf", MIMEPDF},
		{"a.pdf", MIMEPDF},
		{"b.docx", MIMEDOCX},
	}
	require.Len(t, resumes, len(want))
	for i, w := range want {
		assert.Equal(t, w.name, resumes[i].Name, "resume %d", i)
		assert.Equal(t, w.contentType, resumes[i].ContentType, "resume %d", i)
	}
}

func TestCollectResumes_MissingPath(t *testing.T) {
	_, err := CollectResumes([]string{filepath.Join(t.TempDir(), "missing.pdf")})
	assert.Error(t, err)
}

func TestLoadUploadsAndClear(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "uploads")
	fh := NewFileHandler(tmpDir)

	resumes, err := fh.LoadUploads()
	require.NoError(t, err)
	assert.Empty(t, resumes)

	_, err = fh.SaveUploadedFile("JaneDoe_cv.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	resumes, err = fh.LoadUploads()
	require.NoError(t, err)
	require.Len(t, resumes, 1)
	assert.Equal(t, "JaneDoe_cv.pdf", resumes[0].Name)

	require.NoError(t, fh.ClearUploads())
	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		fallback string
		want     string
	}{
		{"pdf magic", "%PDF-1.7\n", MIMEDOCX, MIMEPDF},
		{"plain zip falls back", "PK\x03\x04garbage", MIMEDOCX, MIMEDOCX},
		{"text falls back", "hello", MIMEPDF, MIMEPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContentType([]byte(tt.data), tt.fallback))
		})
	}
}
