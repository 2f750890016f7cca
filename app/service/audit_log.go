package service

import (
	"context"

	"github.com/vibast-solutions/ms-go-wellness/app/entity"
	"github.com/vibast-solutions/ms-go-wellness/app/repository"
	"github.com/vibast-solutions/ms-go-wellness/app/types"
)

type auditLogReader interface {
	List(ctx context.Context, filter repository.AuditLogFilter) ([]*entity.AuditLog, error)
}

type AuditLogService interface {
	List(ctx context.Context, req *types.ListAuditLogsRequest) ([]*types.AuditLogResponse, error)
}

type auditLogService struct {
	repo auditLogReader
}

func NewAuditLogService(repo auditLogReader) AuditLogService {
	return &auditLogService{repo: repo}
}

// List returns the newest entries first.
func (s *auditLogService) List(ctx context.Context, req *types.ListAuditLogsRequest) ([]*types.AuditLogResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidInput(err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = types.DefaultAuditLogLimit
	}

	logs, err := s.repo.List(ctx, repository.AuditLogFilter{
		UserID: req.UserID,
		Action: req.Action,
		Limit:  limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, err
	}

	result := make([]*types.AuditLogResponse, 0, len(logs))
	for _, log := range logs {
		result = append(result, types.NewAuditLogResponse(log))
	}
	return result, nil
}
