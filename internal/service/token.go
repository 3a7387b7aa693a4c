package service

import (
	"errors"
	"time"

	"github.com/marketgate/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

// ErrInvalidToken token 无法通过校验
var ErrInvalidToken = errors.New("invalid token")

// HashPassword 使用 bcrypt 加密密码
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func tokenTTL(cfg config.JWTConfig) time.Duration {
	if cfg.ExpireHours <= 0 {
		return defaultTokenTTL
	}
	return time.Duration(cfg.ExpireHours) * time.Hour
}

// tokenWindow 以 now 为起点的签发窗口
func tokenWindow(cfg config.JWTConfig, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL(cfg))),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

// signToken 以 HS256 签名，返回 token 与过期时间
func signToken(cfg config.JWTConfig, claims jwt.Claims) (string, time.Time, error) {
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return "", time.Time{}, ErrInvalidToken
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp.Time, nil
}

// parseToken 只接受 HS256
func parseToken[C jwt.Claims](cfg config.JWTConfig, raw string, claims C) (C, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.SecretKey), nil
	})
	if err != nil {
		return claims, err
	}
	if !token.Valid {
		return claims, ErrInvalidToken
	}
	return claims, nil
}
