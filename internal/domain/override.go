package domain

import "time"

type ViolationType string

const (
	ViolationCutoff        ViolationType = "cutoff"
	ViolationDoubleBooking ViolationType = "double_booking"
	ViolationLeadShortage  ViolationType = "lead_shortage"
)

func (v ViolationType) Valid() bool {
	return v == ViolationCutoff || v == ViolationDoubleBooking || v == ViolationLeadShortage
}

type OverrideStatus string

const (
	OverridePending  OverrideStatus = "pending"
	OverrideApproved OverrideStatus = "approved"
	OverrideDeclined OverrideStatus = "declined"
	OverrideActive   OverrideStatus = "active" // 已附着到实际排班记录上，仅作审计保留
)

type OverrideApproval struct {
	ID           int64     `json:"id"`
	OverrideID   int64     `json:"overrideID"`
	ApproverID   int64     `json:"approverID"`
	ApproverRole Role      `json:"approverRole"` // 冗余存一份审批时的角色，方便审计和推导聚合状态
	Approved     bool      `json:"approved"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Override 是对某条硬约束的豁免申请，聚合状态由审批记录推导
type Override struct {
	ID        int64              `json:"id"`
	ShiftID   int64              `json:"shiftID"`
	StaffID   int64              `json:"staffID"`
	Violation ViolationType      `json:"violation"`
	Reason    string             `json:"reason"`
	Status    OverrideStatus     `json:"status"`
	Approvals []OverrideApproval `json:"approvals"`
	CreatedAt time.Time          `json:"createdAt"`
	Version   int32              `json:"-"`
}

// 该豁免是否可以让候选人跳过对应的软约束
func (o *Override) Waives(violation ViolationType) bool {
	return o.Violation == violation && (o.Status == OverrideApproved || o.Status == OverrideActive)
}
