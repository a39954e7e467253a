package domain

import "time"

type TradeStatus string

const (
	TradeProposed  TradeStatus = "proposed"
	TradeAccepted  TradeStatus = "accepted"
	TradeApproved  TradeStatus = "approved"
	TradeDeclined  TradeStatus = "declined"
	TradeCancelled TradeStatus = "cancelled"
)

func (s TradeStatus) Terminal() bool {
	return s == TradeApproved || s == TradeDeclined || s == TradeCancelled
}

// ShiftTrade 表示把一条排班记录从发起人转让给接收人的协商过程
type ShiftTrade struct {
	ID           int64       `json:"id"`
	ShiftID      int64       `json:"shiftID"`
	AssignmentID int64       `json:"assignmentID"` // 发起时锁定的排班记录
	ProposerID   int64       `json:"proposerID"`
	ReceiverID   int64       `json:"receiverID"`
	Status       TradeStatus `json:"status"`
	Reason       string      `json:"reason"`
	CreatedAt    time.Time   `json:"createdAt"`
	Version      int32       `json:"-"`
}
