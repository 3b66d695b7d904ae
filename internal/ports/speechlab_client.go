package ports

import (
	"context"
	"io"

	"github.com/speechlab/dubkit/internal/dubbing"
)

// Low-level client for the Speechlab HTTP API. One method per remote
// capability, no retries, typed errors from the dubbing package.
type SpeechlabClient interface {
	CreateProjectAndDub(ctx context.Context, params dubbing.CreateProjectParams) (*dubbing.ProjectDetails, error)
	GetProject(ctx context.Context, projectID string) (*dubbing.ProjectDetails, error)
	ListProjects(ctx context.Context, limit, offset int) ([]dubbing.ProjectDetails, error)
	UploadMedia(ctx context.Context, projectID, path string) error
	StartDub(ctx context.Context, projectID string) error
	DownloadURL(ctx context.Context, projectID string) (string, error)
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
	GenerateSharingLink(ctx context.Context, projectID string) (string, error)
}
