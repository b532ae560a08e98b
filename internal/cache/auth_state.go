package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tinythreads/internal/constants"
	"github.com/tinythreads/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// AdminAuthState 管理员鉴权快照，命中时鉴权不查库
// InvalidBefore 为 Unix 秒，早于该时刻签发的 Token 失效，0 表示不限制
type AdminAuthState struct {
	AdminID       uint   `json:"admin_id"`
	Username      string `json:"username"`
	TokenVersion  uint64 `json:"token_version"`
	InvalidBefore int64  `json:"invalid_before"`
	IsSuper       bool   `json:"is_super"`
}

// Accepts 判断 Token 的版本与签发时间是否仍有效
func (s *AdminAuthState) Accepts(tokenVersion uint64, issuedAt time.Time) bool {
	if s == nil || tokenVersion != s.TokenVersion {
		return false
	}
	if s.InvalidBefore <= 0 {
		return true
	}
	return !issuedAt.IsZero() && issuedAt.Unix() >= s.InvalidBefore
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	state := &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
	}
	if admin.TokenInvalidBefore != nil {
		state.InvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return state
}

// GetAdminAuthState 读取鉴权快照，未启用缓存时总是未命中
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	state := &AdminAuthState{}
	hit, err := GetJSON(ctx, adminAuthStateKey(adminID), state)
	if err != nil || !hit {
		return nil, false, err
	}
	return state, true, nil
}

// SetAdminAuthState 写入鉴权快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, authStateCacheTTL)
}

// DelAdminAuthState 删除鉴权快照
func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, adminAuthStateKey(adminID))
}

func adminAuthStateKey(adminID uint) string {
	return fmt.Sprintf(constants.CacheKeyAdminAuthFmt, adminID)
}
