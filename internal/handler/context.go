package handler

import (
	"context"
	"time"
)

type ContextKey string

var (
	RoleCtxKey   ContextKey = "role"
	SubCtxKey    ContextKey = "sub"
	MyInfoCtx    ContextKey = "myInfo"
	StaffInfoCtx ContextKey = "staffInfo"
	VenueCtx     ContextKey = "venue"
	ShiftCtx     ContextKey = "shift"
	OverrideCtx  ContextKey = "override"
	TradeCtx     ContextKey = "trade"
)

func contextWithTimeout(seconds int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(seconds)*time.Second)
}
