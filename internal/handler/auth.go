package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jtomassoni/scheduler-sub001/internal/domain"
	"github.com/jtomassoni/scheduler-sub001/internal/utils"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const tokenCookieName = "__venue_scheduler_token"

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	member, err := h.repository.GetStaffMemberByUsername(req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "用户名或密码错误")
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)); err != nil {
		h.errorResponse(w, r, "用户名或密码错误")
		return
	}

	if member.Status == domain.StaffInactive {
		h.errorResponse(w, r, "该账号已离职，不能登录")
		return
	}

	now := time.Now()
	claims := tokenClaims{
		Role: member.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", member.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(h.config.JWT.Expiration) * time.Second)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.config.JWT.Expiration,
		HttpOnly: true,
		Secure:   h.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	h.successResponse(w, r, "登录成功", member)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	h.successResponse(w, r, "登出成功", nil)
}

func resetPasswordKey(username string) string {
	return "reset_password_otp:" + username
}

// RequireResetPassword 生成一次性验证码并通过邮件发送
// 为了不暴露用户名是否存在，找不到账号时同样返回成功
func (h *Handler) RequireResetPassword(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Username string `json:"username" validate:"required"`
	}{}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	member, err := h.repository.GetStaffMemberByUsername(req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.successResponse(w, r, "如果该账号存在，验证码已发送到绑定邮箱", nil)
			return
		}
		h.internalServerError(w, r, err)
		return
	}

	otp := utils.GenerateRandomOTP()

	ctx, cancel := contextWithTimeout(h.config.Redis.OperationExpiration)
	defer cancel()

	expiration := time.Duration(h.config.OTP.Expiration) * time.Second
	if err := h.redisClient.Set(ctx, resetPasswordKey(member.Username), otp, expiration).Err(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.publishEvent(domain.EventResetPassword, member.Email, domain.ResetPasswordEventData{
		FullName:   member.FullName,
		OTP:        otp,
		Expiration: h.config.OTP.Expiration / 60,
	})

	h.successResponse(w, r, "如果该账号存在，验证码已发送到绑定邮箱", nil)
}

func (h *Handler) ConfirmResetPassword(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Username    string `json:"username" validate:"required"`
		OTP         string `json:"otp" validate:"required,len=6"`
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

	ctx, cancel := contextWithTimeout(h.config.Redis.OperationExpiration)
	defer cancel()

	storedOTP, err := h.redisClient.GetDel(ctx, resetPasswordKey(req.Username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			h.errorResponse(w, r, "验证码错误或已过期")
			return
		}
		h.internalServerError(w, r, err)
		return
	}
	if storedOTP != req.OTP {
		h.errorResponse(w, r, "验证码错误或已过期")
		return
	}

	member, err := h.repository.GetStaffMemberByUsername(req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.errorResponse(w, r, "该账号不存在")
			return
		}
		h.internalServerError(w, r, err)
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

	h.successResponse(w, r, "密码重置成功", nil)
}
