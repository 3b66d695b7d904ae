package notificator

import (
	"context"

	"github.com/speechlab/dubkit/internal/dubbing"
)

type Service struct {
	infra Notificator
}

func NewService(infra Notificator) *Service {
	return &Service{infra: infra}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	return s.infra.Notify(ctx, err, details)
}

func (s *Service) JobDone(ctx context.Context, projectID string, status dubbing.JobStatus) error {
	return s.infra.JobDone(ctx, projectID, status)
}
