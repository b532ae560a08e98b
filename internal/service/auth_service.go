package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/tinythreads/internal/cache"
	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/logger"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{
		cfg:       cfg,
		adminRepo: adminRepo,
	}
}

// jwtIssuer 后台 Token 签发方
const jwtIssuer = "tinythreads-admin"

const defaultTokenTTL = 24 * time.Hour

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// 未知用户名也跑一次比对，登录耗时与密码错误一致
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("tinythreads-dummy"), bcrypt.DefaultCost)

// JWTClaims JWT 声明
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// SecretConfigured 是否配置了 JWT 密钥
func (s *AuthService) SecretConfigured() bool {
	return s != nil && s.cfg != nil && strings.TrimSpace(s.cfg.JWT.SecretKey) != ""
}

func (s *AuthService) tokenTTL() time.Duration {
	if s.cfg.JWT.ExpireHours <= 0 {
		return defaultTokenTTL
	}
	return time.Duration(s.cfg.JWT.ExpireHours) * time.Hour
}

// GenerateJWT 签发后台 Token，携带 token_version 用于改密后吊销
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	if !s.SecretConfigured() {
		return "", time.Time{}, ErrTokenInvalid
	}
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL())
	claims := JWTClaims{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    jwtIssuer,
			Subject:   strconv.FormatUint(uint64(admin.ID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseJWT 解析并校验后台 Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	if !s.SecretConfigured() {
		return nil, ErrTokenInvalid
	}
	claims := &JWTClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithExpirationRequired(),
	)
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	}); err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	if claims.AdminID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Login 管理员登录，成功后刷新认证状态缓存
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	hash := dummyPasswordHash
	if admin != nil {
		hash = []byte(admin.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || admin == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	now := time.Now()
	if err := s.adminRepo.TouchLogin(admin.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	admin.LastLoginAt = &now
	s.refreshAuthState(ctx, admin)
	return admin, token, expiresAt, nil
}

// GetAdmin 获取管理员
func (s *AuthService) GetAdmin(adminID uint) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}
	return admin, nil
}

// ChangePassword 修改管理员密码，旧 Token 全部失效
func (s *AuthService) ChangePassword(ctx context.Context, adminID uint, oldPassword, newPassword string) error {
	admin, err := s.GetAdmin(adminID)
	if err != nil {
		return err
	}
	if s.VerifyPassword(admin.PasswordHash, oldPassword) != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashed, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	admin.PasswordHash = hashed
	admin.TokenVersion++
	admin.TokenInvalidBefore = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}
	s.refreshAuthState(ctx, admin)
	return nil
}

// refreshAuthState 缓存写失败只记录，中间件会回源数据库
func (s *AuthService) refreshAuthState(ctx context.Context, admin *models.Admin) {
	if err := cache.SetAdminAuthState(ctx, cache.BuildAdminAuthState(admin)); err != nil {
		logger.Warnw("admin_auth_state_cache_failed", "admin_id", admin.ID, "error", err)
	}
}

// EnsureDefaultAdmin 管理员表为空时创建超级管理员，返回是否新建
// 已有管理员时只保证默认账号仍是超级管理员
func (s *AuthService) EnsureDefaultAdmin(username, password string) (bool, error) {
	count, err := s.adminRepo.Count()
	if err != nil {
		return false, err
	}
	if count > 0 {
		existing, err := s.adminRepo.GetByUsername(defaultAdminUsername)
		if err != nil || existing == nil || existing.IsSuper {
			return false, err
		}
		existing.IsSuper = true
		return false, s.adminRepo.Update(existing)
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = defaultAdminUsername
	}
	if password == "" {
		password = defaultAdminPassword
	} else if err := s.ValidatePassword(password); err != nil {
		return false, err
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return false, err
	}
	if err := s.adminRepo.Create(&models.Admin{Username: username, PasswordHash: hash, IsSuper: true}); err != nil {
		return false, err
	}
	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
	} else {
		logger.Infow("default_admin_created", "username", username)
	}
	return true, nil
}
