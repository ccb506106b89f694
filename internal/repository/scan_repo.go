package repository

import (
	"context"
	"errors"

	"github.com/user/backlink-reclaim/internal/entity"
)

var (
	ErrScanNotFound       = errors.New("scan not found")
	ErrHistoryUnavailable = errors.New("scan history is not configured")
)

// ScanRepository defines the interface for storing and retrieving completed scans.
type ScanRepository interface {
	// Save stores a completed scan.
	Save(ctx context.Context, scan *entity.ScanResult) error
	// FindByID retrieves one scan.
	FindByID(ctx context.Context, id string) (*entity.ScanResult, error)
	// ListByDomain returns the most recent scans of a domain, newest first.
	ListByDomain(ctx context.Context, domain string, limit int) ([]*entity.ScanResult, error)
}
