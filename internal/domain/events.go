package domain

// 领域事件统一通过消息队列投递给 notifier，投递失败绝不回滚业务状态
type EventMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const (
	EventAssignmentCreated = "assignment_created"
	EventOverrideResolved  = "override_resolved"
	EventTradeUpdate       = "trade_update"
	EventAccountCreated    = "account_created"
	EventResetPassword     = "reset_password"
)

type AssignmentCreatedEventData struct {
	FullName  string `json:"fullName"`
	VenueName string `json:"venueName"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	SlotKind  string `json:"slotKind"`
}

type OverrideResolvedEventData struct {
	FullName  string `json:"fullName"`
	Violation string `json:"violation"`
	Status    string `json:"status"`
	Date      string `json:"date"`
}

type TradeUpdateEventData struct {
	FullName     string `json:"fullName"`
	Counterparty string `json:"counterparty"`
	Status       string `json:"status"`
	Date         string `json:"date"`
}

type AccountCreatedEventData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordEventData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}
