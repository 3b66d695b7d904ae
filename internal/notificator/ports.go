package notificator

import (
	"context"

	"github.com/speechlab/dubkit/internal/dubbing"
)

type Notificator interface {
	// Notify — reports an error to the admin chat
	Notify(ctx context.Context, err error, details string) error
	JobDone(ctx context.Context, projectID string, status dubbing.JobStatus) error
}
