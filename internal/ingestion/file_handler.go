package ingestion

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fmuoria/resume-matcher/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// Resume content types the evaluation service can read
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AllowedExtensions lists the resume formats accepted by the service
var AllowedExtensions = map[string]string{
	".pdf":  MIMEPDF,
	".docx": MIMEDOCX,
}

// FileHandler manages resume files on disk
type FileHandler struct {
	uploadsDir string
}

// NewFileHandler creates a new file handler
func NewFileHandler(uploadsDir string) *FileHandler {
	return &FileHandler{
		uploadsDir: uploadsDir,
	}
}

// UploadsDir returns the directory downloaded resumes are stored in
func (fh *FileHandler) UploadsDir() string {
	return fh.uploadsDir
}

// SaveUploadedFile saves a resume to the uploads directory
func (fh *FileHandler) SaveUploadedFile(filename string, content io.Reader) (string, error) {
	if err := os.MkdirAll(fh.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	filePath := filepath.Join(fh.uploadsDir, filepath.Base(filename))
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// LoadUploads loads every resume in the uploads directory
func (fh *FileHandler) LoadUploads() ([]models.ResumeFile, error) {
	if _, err := os.Stat(fh.uploadsDir); os.IsNotExist(err) {
		return []models.ResumeFile{}, nil
	}
	return CollectResumes([]string{fh.uploadsDir})
}

// ClearUploads removes all files from the uploads directory
func (fh *FileHandler) ClearUploads() error {
	if err := os.RemoveAll(fh.uploadsDir); err != nil {
		return fmt.Errorf("failed to clear uploads directory: %w", err)
	}
	return os.MkdirAll(fh.uploadsDir, 0755)
}

// CollectResumes reads resumes from files and directories. Explicit files
// keep their given order; directory entries are added sorted by name.
// Files with unsupported extensions are skipped.
func CollectResumes(paths []string) ([]models.ResumeFile, error) {
	resumes := make([]models.ResumeFile, 0, len(paths))

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}

		if !info.IsDir() {
			resume, ok, err := loadResume(p)
			if err != nil {
				return nil, err
			}
			if ok {
				resumes = append(resumes, resume)
			}
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Name() < entries[j].Name()
		})

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			resume, ok, err := loadResume(filepath.Join(p, entry.Name()))
			if err != nil {
				return nil, err
			}
			if ok {
				resumes = append(resumes, resume)
			}
		}
	}

	return resumes, nil
}

func loadResume(path string) (models.ResumeFile, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	fallback, ok := AllowedExtensions[ext]
	if !ok {
		log.Printf("Skipping unsupported file type: %s", path)
		return models.ResumeFile{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.ResumeFile{}, false, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return models.ResumeFile{
		Name:        filepath.Base(path),
		ContentType: DetectContentType(data, fallback),
		Data:        data,
	}, true, nil
}

// DetectContentType sniffs data and falls back to the extension's type
// when the content is ambiguous (a .docx sniffs as a plain zip when its
// parts are in an unusual order)
func DetectContentType(data []byte, fallback string) string {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(MIMEPDF) || m.Is(MIMEDOCX) {
			return m.String()
		}
	}
	return fallback
}
