package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

func (r *Repository) CreateShift(shift *domain.Shift) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shifts (venue_id, date, start_time, end_time, bartenders_required, barbacks_required, leads_required)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, tips_published, created_at, version
	`

	args := []any{
		shift.VenueID,
		shift.Date,
		shift.StartTime,
		shift.EndTime,
		shift.BartendersRequired,
		shift.BarbacksRequired,
		shift.LeadsRequired,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&shift.ID, &shift.TipsPublished, &shift.CreatedAt, &shift.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetShiftByID(id int64) (*domain.Shift, error) {
	query := `
		SELECT venue_id, date, start_time, end_time, bartenders_required, barbacks_required, leads_required,
			tips_published, tips_published_by, tips_published_at, created_at, version
		FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	shift := &domain.Shift{
		ID: id,
	}

	dst := []any{
		&shift.VenueID,
		&shift.Date,
		&shift.StartTime,
		&shift.EndTime,
		&shift.BartendersRequired,
		&shift.BarbacksRequired,
		&shift.LeadsRequired,
		&shift.TipsPublished,
		&shift.TipsPublishedBy,
		&shift.TipsPublishedAt,
		&shift.CreatedAt,
		&shift.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return shift, nil
}

func (r *Repository) GetShiftsByDate(date string) ([]*domain.Shift, error) {
	query := `
		SELECT id, venue_id, date, start_time, end_time, bartenders_required, barbacks_required, leads_required,
			tips_published, tips_published_by, tips_published_at, created_at, version
		FROM shifts
		WHERE date = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.queryShifts(ctx, query, date)
}

func (r *Repository) GetShiftsByVenueAndDateRange(venueID int64, from string, to string) ([]*domain.Shift, error) {
	query := `
		SELECT id, venue_id, date, start_time, end_time, bartenders_required, barbacks_required, leads_required,
			tips_published, tips_published_by, tips_published_at, created_at, version
		FROM shifts
		WHERE venue_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, start_time, id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.queryShifts(ctx, query, venueID, from, to)
}

func (r *Repository) queryShifts(ctx context.Context, query string, args ...any) ([]*domain.Shift, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{}
		dst := []any{
			&shift.ID,
			&shift.VenueID,
			&shift.Date,
			&shift.StartTime,
			&shift.EndTime,
			&shift.BartendersRequired,
			&shift.BarbacksRequired,
			&shift.LeadsRequired,
			&shift.TipsPublished,
			&shift.TipsPublishedBy,
			&shift.TipsPublishedAt,
			&shift.CreatedAt,
			&shift.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) DeleteShift(id int64) error {
	// 排班记录跟着班次级联删除
	query := `
		DELETE FROM shifts WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// CreateAssignment 是所有组件写排班记录的唯一入口
// (shift_id, staff_id) 唯一约束触发时返回 domain.ErrDuplicateAssignment
func (r *Repository) CreateAssignment(sa *domain.ShiftAssignment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shift_assignments (shift_id, staff_id, slot_kind)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	if err := r.dbpool.QueryRowContext(ctx, query, sa.ShiftID, sa.StaffID, sa.SlotKind).Scan(&sa.ID, &sa.CreatedAt, &sa.Version); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "shift_assignments_shift_id_staff_id_key" {
			return domain.ErrDuplicateAssignment
		}
		return err
	}

	return nil
}

func (r *Repository) GetShiftAssignments(shiftID int64) ([]*domain.ShiftAssignment, error) {
	query := `
		SELECT id, shift_id, staff_id, slot_kind, tip_amount, created_at, version
		FROM shift_assignments
		WHERE shift_id = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.queryAssignments(ctx, query, shiftID)
}

func (r *Repository) GetAssignmentsByDate(date string) ([]*domain.ShiftAssignment, error) {
	query := `
		SELECT sa.id, sa.shift_id, sa.staff_id, sa.slot_kind, sa.tip_amount, sa.created_at, sa.version
		FROM shift_assignments sa
		JOIN shifts s ON sa.shift_id = s.id
		WHERE s.date = $1
		ORDER BY sa.id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	return r.queryAssignments(ctx, query, date)
}

func (r *Repository) queryAssignments(ctx context.Context, query string, args ...any) ([]*domain.ShiftAssignment, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.ShiftAssignment, 0)
	for rows.Next() {
		sa := &domain.ShiftAssignment{}
		dst := []any{&sa.ID, &sa.ShiftID, &sa.StaffID, &sa.SlotKind, &sa.TipAmount, &sa.CreatedAt, &sa.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		assignments = append(assignments, sa)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *Repository) GetAssignmentByID(id int64) (*domain.ShiftAssignment, error) {
	query := `
		SELECT shift_id, staff_id, slot_kind, tip_amount, created_at, version
		FROM shift_assignments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	sa := &domain.ShiftAssignment{
		ID: id,
	}

	dst := []any{&sa.ShiftID, &sa.StaffID, &sa.SlotKind, &sa.TipAmount, &sa.CreatedAt, &sa.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return sa, nil
}

// PublishShiftTips 把基准分成写入各条排班记录并发布
// tips_published 只会从 false 变成 true；重新发布会重算金额但不会取消发布
func (r *Repository) PublishShiftTips(shift *domain.Shift, amounts map[int64]int64, publisherID int64, at time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for assignmentID, amount := range amounts {
		query := `
			UPDATE shift_assignments
			SET tip_amount = $1, version = version + 1
			WHERE id = $2 AND shift_id = $3
		`
		if _, err := tx.ExecContext(ctx, query, amount, assignmentID, shift.ID); err != nil {
			return err
		}
	}

	query := `
		UPDATE shifts
		SET
			tips_published = TRUE,
			tips_published_by = $1,
			tips_published_at = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, query, publisherID, at, shift.ID, shift.Version).Scan(&shift.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	shift.TipsPublished = true
	shift.TipsPublishedBy = &publisherID
	shift.TipsPublishedAt = &at

	return nil
}
