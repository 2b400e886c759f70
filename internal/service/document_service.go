package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/docquiz/docquiz-backend/internal/config"
	"github.com/docquiz/docquiz-backend/internal/extract"
	"github.com/docquiz/docquiz-backend/internal/model"
	"github.com/google/uuid"
)

// Sentinel errors for document uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

const (
	previewMaxFiles = 3
	previewMaxChars = 500
)

// DocumentService handles source-document uploads, sample listing and
// previews.
type DocumentService struct {
	cfg *config.Config
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(cfg *config.Config) *DocumentService {
	return &DocumentService{cfg: cfg}
}

// SaveUpload stores an uploaded document with a UUID filename, keeping the
// original extension so the extractor can dispatch on it.
func (s *DocumentService) SaveUpload(file multipart.File, header *multipart.FileHeader) (model.UploadedFile, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !extract.IsSupported(header.Filename) {
		return model.UploadedFile{}, fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, ext, strings.Join(extract.SupportedExtensions, ", "))
	}

	if header.Size > s.cfg.MaxUploadBytes {
		return model.UploadedFile{}, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return model.UploadedFile{}, fmt.Errorf("create upload dir: %w", err)
	}

	storedName := uuid.New().String() + ext
	destPath := filepath.Join(s.cfg.UploadDir, storedName)

	dst, err := os.Create(destPath)
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("write file: %w", err)
	}

	return model.UploadedFile{
		Name:       header.Filename,
		StoredName: storedName,
		Size:       written,
		Type:       strings.TrimPrefix(ext, "."),
	}, nil
}

// ListSamples returns the readable documents in the sample directory.
func (s *DocumentService) ListSamples() ([]model.SampleFile, error) {
	entries, err := os.ReadDir(s.cfg.SampleDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.SampleFile{}, nil
		}
		return nil, fmt.Errorf("read sample dir: %w", err)
	}

	files := make([]model.SampleFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !extract.IsSupported(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name())), ".")
		files = append(files, model.SampleFile{
			Name:        entry.Name(),
			Size:        humanSize(info.Size()),
			Type:        ext,
			Description: fmt.Sprintf("Sample %s file for quiz generation", strings.ToUpper(ext)),
		})
	}
	return files, nil
}

// PreviewSamples extracts a short text preview from the first few sample
// documents.
func (s *DocumentService) PreviewSamples() (model.SamplePreview, error) {
	samples, err := s.ListSamples()
	if err != nil {
		return model.SamplePreview{}, err
	}
	if len(samples) > previewMaxFiles {
		samples = samples[:previewMaxFiles]
	}

	var preview model.SamplePreview
	var sb strings.Builder

	for _, sample := range samples {
		path := filepath.Join(s.cfg.SampleDir, sample.Name)

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		stats := model.SampleFileStats{
			Name:         sample.Name,
			Size:         sample.Size,
			LastModified: info.ModTime().Format("2006-01-02 15:04:05"),
		}

		sb.WriteString(fmt.Sprintf("\n\n=== %s ===\n\n", sample.Name))
		src, err := extract.ReadFile(path)
		if err != nil {
			sb.WriteString(fmt.Sprintf("Error reading document: %v", err))
		} else {
			text := src.Text
			if len(text) > previewMaxChars {
				text = text[:previewMaxChars] + "..."
			}
			sb.WriteString(text)
			stats.Pages = src.Pages
		}

		preview.Metadata = append(preview.Metadata, stats)
	}

	preview.Content = strings.TrimSpace(sb.String())
	return preview, nil
}

// humanSize formats a byte count the way the file pickers display it.
func humanSize(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
