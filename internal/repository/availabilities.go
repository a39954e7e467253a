package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

var ErrAvailabilityLocked = errors.New("该月的空闲时间表已锁定，不能再修改")

// UpsertAvailability 覆盖保存某员工某月的空闲时间表
// 已锁定的记录拒绝覆盖；IsLocked 为 true 的提交相当于显式锁定
func (r *Repository) UpsertAvailability(av *domain.Availability) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 锁住旧记录，防止和并发提交互相覆盖
	query := `
		SELECT is_locked FROM availabilities
		WHERE staff_id = $1 AND year = $2 AND month = $3
		FOR UPDATE
	`
	var isLocked bool
	err = tx.QueryRowContext(ctx, query, av.StaffID, av.Year, av.Month).Scan(&isLocked)
	switch {
	case err == nil:
		if isLocked {
			return ErrAvailabilityLocked
		}
	case errors.Is(err, sql.ErrNoRows):
		// 第一次提交
	default:
		return err
	}

	// 先把原先的记录删除再插入
	query = `DELETE FROM availabilities WHERE staff_id = $1 AND year = $2 AND month = $3`
	if _, err := tx.ExecContext(ctx, query, av.StaffID, av.Year, av.Month); err != nil {
		return err
	}

	query = `
		INSERT INTO availabilities (staff_id, year, month, is_locked)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, av.StaffID, av.Year, av.Month, av.IsLocked).Scan(&av.ID, &av.CreatedAt, &av.Version); err != nil {
		return err
	}

	for _, w := range av.Windows {
		query := `
			INSERT INTO availability_windows (availability_id, day, start_time, end_time)
			VALUES ($1, $2, $3, $4)
		`
		if _, err := tx.ExecContext(ctx, query, av.ID, w.Day, w.StartTime, w.EndTime); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetStaffMonthAvailability(staffID int64, year int32, month int32) (*domain.Availability, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, is_locked, created_at, version
		FROM availabilities
		WHERE staff_id = $1 AND year = $2 AND month = $3
	`

	av := &domain.Availability{
		StaffID: staffID,
		Year:    year,
		Month:   month,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, staffID, year, month).Scan(&av.ID, &av.IsLocked, &av.CreatedAt, &av.Version); err != nil {
		return nil, err
	}

	query = `
		SELECT day, start_time, end_time
		FROM availability_windows
		WHERE availability_id = $1
		ORDER BY day, start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, av.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	av.Windows = make([]domain.AvailabilityWindow, 0)
	for rows.Next() {
		var w domain.AvailabilityWindow
		if err := rows.Scan(&w.Day, &w.StartTime, &w.EndTime); err != nil {
			return nil, err
		}
		av.Windows = append(av.Windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return av, nil
}

// GetMonthAvailability 返回某个月所有员工的空闲时间表，按员工 ID 建索引
func (r *Repository) GetMonthAvailability(year int32, month int32) (map[int64]*domain.Availability, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			a.id,
			a.staff_id,
			a.is_locked,
			a.created_at,
			a.version,
			aw.day,
			aw.start_time,
			aw.end_time
		FROM availabilities a
		LEFT JOIN availability_windows aw ON a.id = aw.availability_id
		WHERE a.year = $1 AND a.month = $2
		ORDER BY a.id, aw.day, aw.start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	availabilityMap := make(map[int64]*domain.Availability)

	for rows.Next() {
		var row struct {
			id        int64
			staffID   int64
			isLocked  bool
			createdAt time.Time
			version   int32
			day       sql.NullInt32
			startTime sql.NullString
			endTime   sql.NullString
		}

		dst := []any{
			&row.id,
			&row.staffID,
			&row.isLocked,
			&row.createdAt,
			&row.version,
			&row.day,
			&row.startTime,
			&row.endTime,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		av, exists := availabilityMap[row.staffID]
		if !exists {
			av = &domain.Availability{
				ID:        row.id,
				StaffID:   row.staffID,
				Year:      year,
				Month:     month,
				Windows:   make([]domain.AvailabilityWindow, 0),
				IsLocked:  row.isLocked,
				CreatedAt: row.createdAt,
				Version:   row.version,
			}
			availabilityMap[row.staffID] = av
		}

		// day 为空表示该月提交了空表，没有任何空闲时段
		if !row.day.Valid {
			continue
		}

		av.Windows = append(av.Windows, domain.AvailabilityWindow{
			Day:       row.day.Int32,
			StartTime: row.startTime.String,
			EndTime:   row.endTime.String,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return availabilityMap, nil
}

// LockAvailability 显式提交（锁定）某员工某月的空闲时间表
func (r *Repository) LockAvailability(staffID int64, year int32, month int32) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE availabilities
		SET is_locked = TRUE, version = version + 1
		WHERE staff_id = $1 AND year = $2 AND month = $3
		RETURNING id
	`

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, query, staffID, year, month).Scan(&id); err != nil {
		return err
	}

	return nil
}
