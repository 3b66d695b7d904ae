package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/speechlab/dubkit/internal/ports"
)

type archiveService struct {
	client ports.S3Client
}

func NewArchiveService(client ports.S3Client) ports.ArchiveService {
	return &archiveService{client: client}
}

// ObjectKey — bucket path for an archived dub result.
func (s *archiveService) ObjectKey(projectID, filename string) string {
	date := time.Now().Format("2006-01-02")
	clean := filepath.Base(filename)
	return fmt.Sprintf("dubs/%s/%s/%s", projectID, date, clean)
}

func (s *archiveService) SaveResult(ctx context.Context, projectID, path string) (string, error) {
	if projectID == "" {
		return "", fmt.Errorf("projectID required")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open result: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat result: %w", err)
	}

	key := s.ObjectKey(projectID, path)
	return s.client.PutObject(ctx, key, f, info.Size(), "video/mp4")
}
