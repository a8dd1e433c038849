package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

func (r *Repository) GetAllAttractions() ([]*domain.Attraction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, name, description, cultural_value, created_at, version
		FROM attractions
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attractions := make([]*domain.Attraction, 0)
	for rows.Next() {
		a := &domain.Attraction{}
		dst := []any{&a.ID, &a.Name, &a.Description, &a.CulturalValue, &a.CreatedAt, &a.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		attractions = append(attractions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attractions, nil
}

func (r *Repository) CreateAttraction(a *domain.Attraction) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO attractions (name, description, cultural_value)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	args := []any{a.Name, a.Description, a.CulturalValue}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.Version); err != nil {
		return err
	}

	return nil
}
