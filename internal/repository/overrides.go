package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

func (r *Repository) CreateOverride(o *domain.Override) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO overrides (shift_id, staff_id, violation, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	args := []any{o.ShiftID, o.StaffID, o.Violation, o.Reason, o.Status}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&o.ID, &o.CreatedAt, &o.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetOverrideByID(id int64) (*domain.Override, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT shift_id, staff_id, violation, reason, status, created_at, version
		FROM overrides WHERE id = $1
	`

	o := &domain.Override{
		ID: id,
	}

	dst := []any{&o.ShiftID, &o.StaffID, &o.Violation, &o.Reason, &o.Status, &o.CreatedAt, &o.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	query = `
		SELECT id, approver_id, approver_role, approved, comment, created_at
		FROM override_approvals
		WHERE override_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	o.Approvals = make([]domain.OverrideApproval, 0)
	for rows.Next() {
		a := domain.OverrideApproval{
			OverrideID: id,
		}
		dst := []any{&a.ID, &a.ApproverID, &a.ApproverRole, &a.Approved, &a.Comment, &a.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		o.Approvals = append(o.Approvals, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return o, nil
}

// GetOverridesByShiftID 返回某个班次的全部豁免（带审批记录）
func (r *Repository) GetOverridesByShiftID(shiftID int64) ([]*domain.Override, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			o.id,
			o.staff_id,
			o.violation,
			o.reason,
			o.status,
			o.created_at,
			o.version,
			oa.id,
			oa.approver_id,
			oa.approver_role,
			oa.approved,
			oa.comment,
			oa.created_at
		FROM overrides o
		LEFT JOIN override_approvals oa ON o.id = oa.override_id
		WHERE o.shift_id = $1
		ORDER BY o.id, oa.created_at, oa.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overridesMap := make(map[int64]*domain.Override)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			id        int64
			staffID   int64
			violation domain.ViolationType
			reason    string
			status    domain.OverrideStatus
			createdAt time.Time
			version   int32

			approvalID   sql.NullInt64
			approverID   sql.NullInt64
			approverRole sql.NullString
			approved     sql.NullBool
			comment      sql.NullString
			approvedAt   sql.NullTime
		}

		dst := []any{
			&row.id,
			&row.staffID,
			&row.violation,
			&row.reason,
			&row.status,
			&row.createdAt,
			&row.version,
			&row.approvalID,
			&row.approverID,
			&row.approverRole,
			&row.approved,
			&row.comment,
			&row.approvedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		o, exists := overridesMap[row.id]
		if !exists {
			o = &domain.Override{
				ID:        row.id,
				ShiftID:   shiftID,
				StaffID:   row.staffID,
				Violation: row.violation,
				Reason:    row.reason,
				Status:    row.status,
				Approvals: make([]domain.OverrideApproval, 0),
				CreatedAt: row.createdAt,
				Version:   row.version,
			}
			overridesMap[row.id] = o
			order = append(order, row.id)
		}

		// approvalID 为空表示该豁免还没有任何审批记录
		if !row.approvalID.Valid {
			continue
		}

		o.Approvals = append(o.Approvals, domain.OverrideApproval{
			ID:           row.approvalID.Int64,
			OverrideID:   row.id,
			ApproverID:   row.approverID.Int64,
			ApproverRole: domain.Role(row.approverRole.String),
			Approved:     row.approved.Bool,
			Comment:      row.comment.String,
			CreatedAt:    row.approvedAt.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	overrides := make([]*domain.Override, 0, len(order))
	for _, id := range order {
		overrides = append(overrides, overridesMap[id])
	}

	return overrides, nil
}

// SaveOverrideDecision 把最新一条审批记录和推导出的聚合状态写入同一个事务
func (r *Repository) SaveOverrideDecision(o *domain.Override) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	latest := &o.Approvals[len(o.Approvals)-1]

	query := `
		INSERT INTO override_approvals (override_id, approver_id, approver_role, approved, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	args := []any{o.ID, latest.ApproverID, latest.ApproverRole, latest.Approved, latest.Comment, latest.CreatedAt}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&latest.ID); err != nil {
		return err
	}

	query = `
		UPDATE overrides
		SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, query, o.Status, o.ID, o.Version).Scan(&o.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// ActivateOverride 把已批准的豁免标记为生效，重复调用无副作用
func (r *Repository) ActivateOverride(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE overrides
		SET status = $1, version = version + 1
		WHERE id = $2 AND status = $3
	`

	if _, err := r.dbpool.ExecContext(ctx, query, domain.OverrideActive, id, domain.OverrideApproved); err != nil {
		return err
	}

	return nil
}
