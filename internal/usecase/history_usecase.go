package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/internal/repository"
	"github.com/user/backlink-reclaim/pkg/utils"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// History defines the interface for reading stored scans.
type History interface {
	List(ctx context.Context, domain string, limit int) ([]*entity.ScanResult, error)
	Get(ctx context.Context, id string) (*entity.ScanResult, error)
}

type historyUseCase struct {
	repo repository.ScanRepository
}

// NewHistoryUseCase creates a new instance of the history use case. With a nil repo every
// call fails with repository.ErrHistoryUnavailable.
func NewHistoryUseCase(repo repository.ScanRepository) History {
	return &historyUseCase{repo: repo}
}

// List returns the latest scans of domain, newest first.
func (uc *historyUseCase) List(ctx context.Context, domain string, limit int) ([]*entity.ScanResult, error) {
	if uc.repo == nil {
		return nil, repository.ErrHistoryUnavailable
	}
	normalized, err := utils.NormalizeDomain(domain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	scans, err := uc.repo.ListByDomain(ctx, normalized, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans for %s: %w", normalized, err)
	}
	return scans, nil
}

// Get returns one stored scan.
func (uc *historyUseCase) Get(ctx context.Context, id string) (*entity.ScanResult, error) {
	if uc.repo == nil {
		return nil, repository.ErrHistoryUnavailable
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrScanNotFound
	}
	return uc.repo.FindByID(ctx, id)
}
