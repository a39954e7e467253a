package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

func (r *Repository) CreateStaffMember(member *domain.StaffMember) error {
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
		INSERT INTO staff_members (username, password_hash, full_name, email, role, is_lead, has_day_job, day_job_cutoff, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	args := []any{
		member.Username,
		member.PasswordHash,
		member.FullName,
		member.Email,
		member.Role,
		member.IsLead,
		member.HasDayJob,
		member.DayJobCutoff,
		member.Status,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&member.ID, &member.CreatedAt, &member.Version); err != nil {
		return err
	}

	if err := r.insertStaffVenues(ctx, tx, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) insertStaffVenues(ctx context.Context, tx *sql.Tx, member *domain.StaffMember) error {
	for position, venueID := range member.PreferredVenues {
		query := `
			INSERT INTO staff_preferred_venues (staff_id, venue_id, position)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, member.ID, venueID, position); err != nil {
			return err
		}
	}

	for venueID, rank := range member.VenueRankings {
		query := `
			INSERT INTO staff_venue_rankings (staff_id, venue_id, rank)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, member.ID, venueID, rank); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) GetStaffMemberByID(id int64) (*domain.StaffMember, error) {
	query := `
		SELECT username, password_hash, full_name, email, role, is_lead, has_day_job, day_job_cutoff, status, created_at, version
		FROM staff_members WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	member := &domain.StaffMember{
		ID: id,
	}

	dst := []any{
		&member.Username,
		&member.PasswordHash,
		&member.FullName,
		&member.Email,
		&member.Role,
		&member.IsLead,
		&member.HasDayJob,
		&member.DayJobCutoff,
		&member.Status,
		&member.CreatedAt,
		&member.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadStaffVenues(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

func (r *Repository) GetStaffMemberByUsername(username string) (*domain.StaffMember, error) {
	query := `
		SELECT id, password_hash, full_name, email, role, is_lead, has_day_job, day_job_cutoff, status, created_at, version
		FROM staff_members WHERE username = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	member := &domain.StaffMember{
		Username: username,
	}

	dst := []any{
		&member.ID,
		&member.PasswordHash,
		&member.FullName,
		&member.Email,
		&member.Role,
		&member.IsLead,
		&member.HasDayJob,
		&member.DayJobCutoff,
		&member.Status,
		&member.CreatedAt,
		&member.Version,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadStaffVenues(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

func (r *Repository) loadStaffVenues(ctx context.Context, member *domain.StaffMember) error {
	member.PreferredVenues = make([]int64, 0)
	member.VenueRankings = make(map[int64]int32)

	query := `
		SELECT venue_id FROM staff_preferred_venues
		WHERE staff_id = $1
		ORDER BY position
	`
	rows, err := r.dbpool.QueryContext(ctx, query, member.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var venueID int64
		if err := rows.Scan(&venueID); err != nil {
			return err
		}
		member.PreferredVenues = append(member.PreferredVenues, venueID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	query = `
		SELECT venue_id, rank FROM staff_venue_rankings
		WHERE staff_id = $1
	`
	rankRows, err := r.dbpool.QueryContext(ctx, query, member.ID)
	if err != nil {
		return err
	}
	defer rankRows.Close()

	for rankRows.Next() {
		var venueID int64
		var rank int32
		if err := rankRows.Scan(&venueID, &rank); err != nil {
			return err
		}
		member.VenueRankings[venueID] = rank
	}

	return rankRows.Err()
}

func (r *Repository) GetAllStaffMembers() ([]*domain.StaffMember, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, username, password_hash, full_name, email, role, is_lead, has_day_job, day_job_cutoff, status, created_at, version
		FROM staff_members
		ORDER BY id
	`

	return r.queryStaffMembers(ctx, query)
}

// GetVenueStaff 返回把某个门店列入偏好列表的所有员工（偏好列表即可工作门店列表）
func (r *Repository) GetVenueStaff(venueID int64) ([]*domain.StaffMember, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT sm.id, sm.username, sm.password_hash, sm.full_name, sm.email, sm.role, sm.is_lead, sm.has_day_job, sm.day_job_cutoff, sm.status, sm.created_at, sm.version
		FROM staff_members sm
		JOIN staff_preferred_venues spv ON sm.id = spv.staff_id
		WHERE spv.venue_id = $1
		ORDER BY sm.id
	`

	return r.queryStaffMembers(ctx, query, venueID)
}

func (r *Repository) queryStaffMembers(ctx context.Context, query string, args ...any) ([]*domain.StaffMember, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.StaffMember, 0)
	for rows.Next() {
		member := &domain.StaffMember{}
		dst := []any{
			&member.ID,
			&member.Username,
			&member.PasswordHash,
			&member.FullName,
			&member.Email,
			&member.Role,
			&member.IsLead,
			&member.HasDayJob,
			&member.DayJobCutoff,
			&member.Status,
			&member.CreatedAt,
			&member.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, member := range members {
		if err := r.loadStaffVenues(ctx, member); err != nil {
			return nil, err
		}
	}

	return members, nil
}

// UpdateStaffMember 更新员工档案，偏好门店和优先级整体替换
func (r *Repository) UpdateStaffMember(member *domain.StaffMember) error {
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
		UPDATE staff_members
		SET
			password_hash = $1,
			email = $2,
			role = $3,
			is_lead = $4,
			has_day_job = $5,
			day_job_cutoff = $6,
			status = $7,
			version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING username, full_name, created_at, version
	`

	args := []any{
		member.PasswordHash,
		member.Email,
		member.Role,
		member.IsLead,
		member.HasDayJob,
		member.DayJobCutoff,
		member.Status,
		member.ID,
		member.Version,
	}
	dst := []any{&member.Username, &member.FullName, &member.CreatedAt, &member.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return err
	}

	// 先删后插，保持偏好顺序与提交一致
	query = `DELETE FROM staff_preferred_venues WHERE staff_id = $1`
	if _, err := tx.ExecContext(ctx, query, member.ID); err != nil {
		return err
	}
	query = `DELETE FROM staff_venue_rankings WHERE staff_id = $1`
	if _, err := tx.ExecContext(ctx, query, member.ID); err != nil {
		return err
	}

	if err := r.insertStaffVenues(ctx, tx, member); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
