package ports

import (
	"context"
	"time"

	"github.com/speechlab/dubkit/internal/dubbing"
)

type DubService interface {
	CreateProject(ctx context.Context, name, sourceLang, targetLang string) (*dubbing.Project, error)
	GetProject(ctx context.Context, projectID string) (*dubbing.Project, error)
	ListProjects(ctx context.Context, limit, offset int) ([]dubbing.Project, error)
	UploadMedia(ctx context.Context, projectID, path string) (*dubbing.MediaAsset, error)
	StartDubbing(ctx context.Context, projectID string) error
	PollStatus(ctx context.Context, projectID string) (*dubbing.JobStatus, error)
	WaitUntilComplete(ctx context.Context, projectID string, interval, timeout time.Duration) (*dubbing.JobStatus, error)
	DownloadResult(ctx context.Context, projectID, destDir string) (*dubbing.Result, error)
	GenerateShareLink(ctx context.Context, projectID string) (*dubbing.ShareLink, error)
}
