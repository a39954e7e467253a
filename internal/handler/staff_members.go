package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/jtomassoni/scheduler-sub001/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// CreateStaffMember 创建员工账号，初始密码随机生成并通过邮件告知本人
func (h *Handler) CreateStaffMember(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Username        string          `json:"username" validate:"required,min=2,max=32"`
		FullName        string          `json:"fullName" validate:"required"`
		Email           string          `json:"email" validate:"required,email"`
		Role            domain.Role     `json:"role" validate:"required"`
		IsLead          bool            `json:"isLead"`
		HasDayJob       bool            `json:"hasDayJob"`
		DayJobCutoff    string          `json:"dayJobCutoff"`
		PreferredVenues []int64         `json:"preferredVenues"`
		VenueRankings   map[int64]int32 `json:"venueRankings"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewStaff.PasswordLength)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	member := &domain.StaffMember{
		Username:        req.Username,
		PasswordHash:    string(passwordHash),
		FullName:        req.FullName,
		Email:           req.Email,
		Role:            req.Role,
		IsLead:          req.IsLead,
		HasDayJob:       req.HasDayJob,
		DayJobCutoff:    req.DayJobCutoff,
		Status:          domain.StaffPending,
		PreferredVenues: req.PreferredVenues,
		VenueRankings:   req.VenueRankings,
	}
	if member.PreferredVenues == nil {
		member.PreferredVenues = make([]int64, 0)
	}
	if member.VenueRankings == nil {
		member.VenueRankings = make(map[int64]int32)
	}

	if err := utils.ValidateStaffRole(member); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateStaffMember(member); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.ConstraintName {
			case "staff_members_username_key":
				h.errorResponse(w, r, "该用户名已被使用")
				return
			case "staff_members_email_key":
				h.errorResponse(w, r, "该邮箱已被使用")
				return
			}
		}
		h.internalServerError(w, r, err)
		return
	}

	h.publishEvent(domain.EventAccountCreated, member.Email, domain.AccountCreatedEventData{
		FullName: member.FullName,
		Username: member.Username,
		Password: password,
	})

	h.successResponse(w, r, "创建员工成功", member)
}

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(MyInfoCtx).(*domain.StaffMember)
	h.successResponse(w, r, "获取个人信息成功", member)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(MyInfoCtx).(*domain.StaffMember)

	req := struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, "原密码错误")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	member.PasswordHash = string(passwordHash)
	// 待入职的员工第一次改密码后转为在职
	if member.Status == domain.StaffPending {
		member.Status = domain.StaffActive
	}

	if err := h.repository.UpdateStaffMember(member); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "修改密码成功", nil)
}

func (h *Handler) GetAllStaffMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.repository.GetAllStaffMembers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取员工列表成功", members)
}

func (h *Handler) GetStaffMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(StaffInfoCtx).(*domain.StaffMember)
	h.successResponse(w, r, "获取员工信息成功", member)
}

// UpdateStaffMember 管理者更新员工档案，未提交的字段保持原值
func (h *Handler) UpdateStaffMember(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(StaffInfoCtx).(*domain.StaffMember)

	req := struct {
		Email           *string             `json:"email" validate:"omitempty,email"`
		Role            *domain.Role        `json:"role"`
		IsLead          *bool               `json:"isLead"`
		HasDayJob       *bool               `json:"hasDayJob"`
		DayJobCutoff    *string             `json:"dayJobCutoff"`
		Status          *domain.StaffStatus `json:"status"`
		PreferredVenues []int64             `json:"preferredVenues"`
		VenueRankings   map[int64]int32     `json:"venueRankings"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Email != nil {
		member.Email = *req.Email
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.IsLead != nil {
		member.IsLead = *req.IsLead
	}
	if req.HasDayJob != nil {
		member.HasDayJob = *req.HasDayJob
		if !member.HasDayJob {
			member.DayJobCutoff = ""
		}
	}
	if req.DayJobCutoff != nil {
		member.DayJobCutoff = *req.DayJobCutoff
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.StaffActive, domain.StaffInactive, domain.StaffPending:
		default:
			h.errorResponse(w, r, "未知的员工状态")
			return
		}
		member.Status = *req.Status
	}
	if req.PreferredVenues != nil {
		member.PreferredVenues = req.PreferredVenues
	}
	if req.VenueRankings != nil {
		member.VenueRankings = req.VenueRankings
	}

	if err := utils.ValidateStaffRole(member); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateStaffMember(member); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "staff_members_email_key" {
			h.errorResponse(w, r, "该邮箱已被使用")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新员工信息成功", member)
}

// UpdateStaffPassword 管理者直接为员工设置新密码
func (h *Handler) UpdateStaffPassword(w http.ResponseWriter, r *http.Request) {
	member := r.Context().Value(StaffInfoCtx).(*domain.StaffMember)

	req := struct {
		NewPassword string `json:"newPassword" validate:"required,min=8"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	member.PasswordHash = string(passwordHash)
	if err := h.repository.UpdateStaffMember(member); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "重置员工密码成功", nil)
}
