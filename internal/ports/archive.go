package ports

import "context"

// ArchiveService mirrors downloaded dub results into object storage.
type ArchiveService interface {
	ObjectKey(projectID, filename string) string
	SaveResult(ctx context.Context, projectID, path string) (publicURL string, err error)
}
