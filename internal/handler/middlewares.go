package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jtomassoni/scheduler-sub001/internal/domain"
)

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("收到请求", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				slog.Error("请求处理过程中发生 panic", "method", r.Method, "path", r.URL.Path, "panic", rvr)
				h.writeJSON(w, r, http.StatusInternalServerError, Response{
					Success: false,
					Message: "服务器内部错误",
					Data:    nil,
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type tokenClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			h.errorResponse(w, r, "请先登录")
			return
		}

		claims := &tokenClaims{}
		token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
			return []byte(h.config.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			h.errorResponse(w, r, "登录状态已失效，请重新登录")
			return
		}

		sub, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "登录状态已失效，请重新登录")
			return
		}

		ctx := context.WithValue(r.Context(), SubCtxKey, sub)
		ctx = context.WithValue(ctx, RoleCtxKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := r.Context().Value(RoleCtxKey).(domain.Role)

			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			h.errorResponse(w, r, "没有进行此操作的权限")
		})
	}
}

// myInfo 加载当前登录员工的完整档案
func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub := r.Context().Value(SubCtxKey).(int64)

		member, err := h.repository.GetStaffMemberByID(sub)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				h.errorResponse(w, r, "当前账号不存在")
				return
			}
			h.internalServerError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, member)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) preventInactiveStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member := r.Context().Value(MyInfoCtx).(*domain.StaffMember)

		if member.Status != domain.StaffActive {
			h.errorResponse(w, r, "当前账号不是在职状态，不能进行此操作")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// 初始管理员账号不允许被其他人修改
func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member := r.Context().Value(StaffInfoCtx).(*domain.StaffMember)

		if member.Username == h.config.InitialAdmin.Username {
			h.errorResponse(w, r, "不允许修改初始管理员账号")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) staffInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "员工 ID 格式错误")
			return
		}

		member, err := h.repository.GetStaffMemberByID(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				h.errorResponse(w, r, "该员工不存在")
				return
			}
			h.internalServerError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), StaffInfoCtx, member)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) venueInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "门店 ID 格式错误")
			return
		}

		venue, err := h.repository.GetVenueByID(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				h.errorResponse(w, r, "该门店不存在")
				return
			}
			h.internalServerError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), VenueCtx, venue)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) shiftInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "班次 ID 格式错误")
			return
		}

		shift, err := h.repository.GetShiftByID(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				h.errorResponse(w, r, "该班次不存在")
				return
			}
			h.internalServerError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ShiftCtx, shift)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) overrideInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "豁免 ID 格式错误")
			return
		}

		o, err := h.repository.GetOverrideByID(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				h.errorResponse(w, r, "该豁免申请不存在")
				return
			}
			h.internalServerError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), OverrideCtx, o)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) tradeInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.parseIDParam(r)
		if err != nil {
			h.errorResponse(w, r, "换班 ID 格式错误")
			return
		}

		t, err := h.repository.GetTradeByID(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				h.errorResponse(w, r, "该换班申请不存在")
				return
			}
			h.internalServerError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), TradeCtx, t)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
