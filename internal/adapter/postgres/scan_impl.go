package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/backlink-reclaim/internal/entity"
	"github.com/user/backlink-reclaim/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS scans (
		id UUID PRIMARY KEY,
		domain TEXT NOT NULL,
		scanned_at TIMESTAMPTZ NOT NULL,
		dead_pages INTEGER NOT NULL,
		total_backlinks INTEGER NOT NULL,
		results JSONB NOT NULL,
		inconclusive JSONB NOT NULL DEFAULT '[]',
		debug JSONB NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS scans_domain_scanned_at_idx ON scans (domain, scanned_at DESC);
`

// ScanRepoImpl provides a concrete implementation for the ScanRepository interface using PostgreSQL.
type ScanRepoImpl struct {
	db *pgxpool.Pool
}

// NewScanRepo creates a new instance of ScanRepoImpl.
func NewScanRepo(db *pgxpool.Pool) *ScanRepoImpl {
	return &ScanRepoImpl{db: db}
}

// Migrate creates the scans table when it does not exist yet.
func (r *ScanRepoImpl) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate scans: %w", err)
	}
	return nil
}

// Save stores a completed scan.
func (r *ScanRepoImpl) Save(ctx context.Context, scan *entity.ScanResult) error {
	resultsJSON, err := json.Marshal(nonNil(scan.Results))
	if err != nil {
		return err
	}
	inconclusiveJSON, err := json.Marshal(nonNil(scan.Inconclusive))
	if err != nil {
		return err
	}
	debugJSON, err := json.Marshal(scan.Debug)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scans (id, domain, scanned_at, dead_pages, total_backlinks, results, inconclusive, debug)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = r.db.Exec(ctx, query,
		scan.ID,
		scan.Domain,
		scan.ScannedAt,
		len(scan.Results),
		scan.TotalBacklinks,
		resultsJSON,
		inconclusiveJSON,
		debugJSON,
	)
	return err
}

// FindByID retrieves one scan by its id.
func (r *ScanRepoImpl) FindByID(ctx context.Context, id string) (*entity.ScanResult, error) {
	query := `
		SELECT id, domain, scanned_at, total_backlinks, results, inconclusive, debug
		FROM scans
		WHERE id = $1;
	`
	scan, err := scanRow(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrScanNotFound
	}
	return scan, err
}

// ListByDomain returns the most recent scans of a domain, newest first.
func (r *ScanRepoImpl) ListByDomain(ctx context.Context, domain string, limit int) ([]*entity.ScanResult, error) {
	query := `
		SELECT id, domain, scanned_at, total_backlinks, results, inconclusive, debug
		FROM scans
		WHERE domain = $1
		ORDER BY scanned_at DESC
		LIMIT $2;
	`
	rows, err := r.db.Query(ctx, query, domain, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := make([]*entity.ScanResult, 0)
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, rows.Err()
}

func scanRow(row pgx.Row) (*entity.ScanResult, error) {
	var scan entity.ScanResult
	var resultsJSON, inconclusiveJSON, debugJSON []byte

	err := row.Scan(
		&scan.ID,
		&scan.Domain,
		&scan.ScannedAt,
		&scan.TotalBacklinks,
		&resultsJSON,
		&inconclusiveJSON,
		&debugJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(resultsJSON, &scan.Results); err != nil {
		return nil, fmt.Errorf("decode results of scan %s: %w", scan.ID, err)
	}
	if err := json.Unmarshal(inconclusiveJSON, &scan.Inconclusive); err != nil {
		return nil, fmt.Errorf("decode inconclusive of scan %s: %w", scan.ID, err)
	}
	if err := json.Unmarshal(debugJSON, &scan.Debug); err != nil {
		return nil, fmt.Errorf("decode debug of scan %s: %w", scan.ID, err)
	}
	if len(scan.Inconclusive) == 0 {
		scan.Inconclusive = nil
	}
	return &scan, nil
}

func nonNil(pages []entity.DeadPage) []entity.DeadPage {
	if pages == nil {
		return []entity.DeadPage{}
	}
	return pages
}
