package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/tour-planner/backend/internal/domain"
)

func (r *Repository) GetAllTours() ([]*domain.Tour, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, region_id, name, description, duration_days, cost, created_at, version
		FROM tours
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tours := make([]*domain.Tour, 0)
	for rows.Next() {
		t := &domain.Tour{}
		dst := []any{&t.ID, &t.RegionID, &t.Name, &t.Description, &t.DurationDays, &t.Cost, &t.CreatedAt, &t.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tours, nil
}

// CreateTour 在同一个事务中插入 tour 以及它包含的景点
func (r *Repository) CreateTour(t *domain.Tour, attractionIDs []int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO tours (region_id, name, description, duration_days, cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	args := []any{t.RegionID, t.Name, t.Description, t.DurationDays, t.Cost}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.Version); err != nil {
		return err
	}

	for _, attractionID := range attractionIDs {
		query = `
			INSERT INTO tour_attractions (tour_id, attraction_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, query, t.ID, attractionID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTour(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM tours WHERE id = $1
	`

	res, err := r.dbpool.ExecContext(ctx, query, id)
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
