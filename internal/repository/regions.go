package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

func (r *Repository) GetAllRegions() ([]*domain.Region, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, description, created_at, version
		FROM regions
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regions := make([]*domain.Region, 0)
	for rows.Next() {
		region := &domain.Region{}
		dst := []any{&region.ID, &region.Name, &region.Description, &region.CreatedAt, &region.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return regions, nil
}

func (r *Repository) CreateRegion(region *domain.Region) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO regions (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, version
	`

	args := []any{region.ID, region.Name, region.Description}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&region.CreatedAt, &region.Version); err != nil {
		return err
	}

	return nil
}
