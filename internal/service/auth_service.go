package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/maya-downloads/api/internal/config"
	"github.com/maya-downloads/api/internal/logger"
	"github.com/maya-downloads/api/internal/models"
	"github.com/maya-downloads/api/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// AuthService 管理端认证服务
type AuthService struct {
	admins repository.AdminRepository
	jwtCfg config.JWTConfig
}

// NewAuthService 创建认证服务
func NewAuthService(admins repository.AdminRepository, jwtCfg config.JWTConfig) *AuthService {
	return &AuthService{
		admins: admins,
		jwtCfg: jwtCfg,
	}
}

// JWTClaims JWT 声明
type JWTClaims struct {
	AdminID  uint   `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// HashPassword 生成密码散列
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 校验密码
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Login 管理员登录，成功返回 JWT Token
func (s *AuthService) Login(username, password string) (string, *models.Admin, error) {
	admin, err := s.admins.GetByUsername(username)
	if err != nil {
		return "", nil, err
	}
	if admin == nil || !VerifyPassword(admin.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(admin)
	if err != nil {
		return "", nil, err
	}

	if err := s.admins.TouchLastLogin(admin.ID, time.Now()); err != nil {
		logger.Warnw("auth_touch_last_login_failed", "admin_id", admin.ID, "error", err)
	}
	return token, admin, nil
}

// ChangePassword 修改管理员密码
func (s *AuthService) ChangePassword(adminID uint, oldPassword, newPassword string) error {
	admin, err := s.admins.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil || !VerifyPassword(admin.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.admins.UpdatePassword(adminID, hash)
}

// GenerateJWT 生成 JWT Token
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, error) {
	expireHours := s.jwtCfg.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	now := time.Now()
	claims := JWTClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expireHours) * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}

// ParseJWT 解析并校验 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtCfg.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
