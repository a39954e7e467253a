package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

func (r *Repository) CreateTrade(t *domain.ShiftTrade) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO shift_trades (shift_id, assignment_id, proposer_id, receiver_id, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{t.ShiftID, t.AssignmentID, t.ProposerID, t.ReceiverID, t.Status, t.Reason}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&t.ID, &t.CreatedAt, &t.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTradeByID(id int64) (*domain.ShiftTrade, error) {
	query := `
		SELECT shift_id, assignment_id, proposer_id, receiver_id, status, reason, created_at, version
		FROM shift_trades WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	t := &domain.ShiftTrade{
		ID: id,
	}

	dst := []any{&t.ShiftID, &t.AssignmentID, &t.ProposerID, &t.ReceiverID, &t.Status, &t.Reason, &t.CreatedAt, &t.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return t, nil
}

func (r *Repository) GetTradesByShiftID(shiftID int64) ([]*domain.ShiftTrade, error) {
	query := `
		SELECT id, assignment_id, proposer_id, receiver_id, status, reason, created_at, version
		FROM shift_trades
		WHERE shift_id = $1
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]*domain.ShiftTrade, 0)
	for rows.Next() {
		t := &domain.ShiftTrade{
			ShiftID: shiftID,
		}
		dst := []any{&t.ID, &t.AssignmentID, &t.ProposerID, &t.ReceiverID, &t.Status, &t.Reason, &t.CreatedAt, &t.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trades, nil
}

// UpdateTradeStatus 持久化一次纯状态流转（接受、拒绝、撤回）
func (r *Repository) UpdateTradeStatus(t *domain.ShiftTrade) error {
	query := `
		UPDATE shift_trades
		SET status = $1, reason = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, t.Status, t.Reason, t.ID, t.Version).Scan(&t.Version); err != nil {
		return err
	}

	return nil
}

// ApproveTradeSwap 在同一个事务里完成排班记录的转让和换班状态的落地
// 事务内会重新校验发起人仍然持有这条排班记录：
// 被并发换班或手工改动抢先时返回 domain.ErrStaleTrade，换班保持 accepted 等待人工处理
func (r *Repository) ApproveTradeSwap(t *domain.ShiftTrade) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 槽位和 slot_kind 原样保留，只换人
	query := `
		UPDATE shift_assignments
		SET staff_id = $1, version = version + 1
		WHERE id = $2 AND shift_id = $3 AND staff_id = $4
	`

	res, err := tx.ExecContext(ctx, query, t.ReceiverID, t.AssignmentID, t.ShiftID, t.ProposerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "shift_assignments_shift_id_staff_id_key" {
			// 接收人已经在这个班次上了，同样留给人工处理
			return domain.ErrStaleTrade
		}
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return domain.ErrStaleTrade
	}

	query = `
		UPDATE shift_trades
		SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`
	if err := tx.QueryRowContext(ctx, query, domain.TradeApproved, t.ID, t.Version).Scan(&t.Version); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	t.Status = domain.TradeApproved

	return nil
}
