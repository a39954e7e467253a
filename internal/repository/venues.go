package repository

import (
	"context"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

func (r *Repository) CreateVenue(venue *domain.Venue) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO venues (name, priority, availability_deadline_day, tip_pool_enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{venue.Name, venue.Priority, venue.AvailabilityDeadlineDay, venue.TipPoolEnabled}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&venue.ID, &venue.CreatedAt, &venue.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetVenueByID(id int64) (*domain.Venue, error) {
	query := `
		SELECT name, priority, availability_deadline_day, tip_pool_enabled, created_at, version
		FROM venues WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	venue := &domain.Venue{
		ID: id,
	}

	dst := []any{&venue.Name, &venue.Priority, &venue.AvailabilityDeadlineDay, &venue.TipPoolEnabled, &venue.CreatedAt, &venue.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return venue, nil
}

func (r *Repository) GetAllVenues() ([]*domain.Venue, error) {
	query := `
		SELECT id, name, priority, availability_deadline_day, tip_pool_enabled, created_at, version
		FROM venues
		ORDER BY priority, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := make([]*domain.Venue, 0)
	for rows.Next() {
		venue := &domain.Venue{}
		dst := []any{&venue.ID, &venue.Name, &venue.Priority, &venue.AvailabilityDeadlineDay, &venue.TipPoolEnabled, &venue.CreatedAt, &venue.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		venues = append(venues, venue)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return venues, nil
}

func (r *Repository) UpdateVenue(venue *domain.Venue) error {
	query := `
		UPDATE venues
		SET
			name = $1,
			priority = $2,
			availability_deadline_day = $3,
			tip_pool_enabled = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{venue.Name, venue.Priority, venue.AvailabilityDeadlineDay, venue.TipPoolEnabled, venue.ID, venue.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&venue.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteVenue(id int64) error {
	query := `
		DELETE FROM venues WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
