package service

import (
	"context"

	"artbid-api/internal/repo"
)

type DiagnosticsService struct {
	diagnosticsRepo repo.Diagnostics
}

func NewDiagnosticsService(deps Dependencies) *DiagnosticsService {
	return &DiagnosticsService{diagnosticsRepo: deps.Repos.Diagnostics}
}

func (s *DiagnosticsService) Ping(ctx context.Context) error {
	if err := s.diagnosticsRepo.Ping(ctx); err != nil {
		return persistenceError(err)
	}

	return nil
}
