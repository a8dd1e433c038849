package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

func (r *Repository) GetAllTourAttractions() ([]*domain.TourAttraction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT tour_id, attraction_id
		FROM tour_attractions
		ORDER BY tour_id, attraction_id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*domain.TourAttraction, 0)
	for rows.Next() {
		link := &domain.TourAttraction{}
		if err := rows.Scan(&link.TourID, &link.AttractionID); err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return links, nil
}

func (r *Repository) CreateTourAttraction(link *domain.TourAttraction) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO tour_attractions (tour_id, attraction_id)
		VALUES ($1, $2)
	`

	if _, err := r.dbpool.ExecContext(ctx, query, link.TourID, link.AttractionID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTourAttraction(link *domain.TourAttraction) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM tour_attractions WHERE tour_id = $1 AND attraction_id = $2
	`

	res, err := r.dbpool.ExecContext(ctx, query, link.TourID, link.AttractionID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
