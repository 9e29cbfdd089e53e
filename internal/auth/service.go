package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abduss/mediavault/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Service validates bearer tokens issued by an external identity provider.
type Service struct {
	secret  []byte
	nowFunc func() time.Time
	parser  *jwt.Parser
}

// NewService creates a Service from the auth configuration.
func NewService(cfg config.AuthConfig) *Service {
	s := &Service{
		secret:  []byte(cfg.AccessTokenSecret),
		nowFunc: time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(func() time.Time { return s.nowFunc() }),
	)
	return s
}

// Enabled reports whether token checks are active.
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// UserClaims describes the validated identity extracted from an access token.
type UserClaims struct {
	Subject   string
	Name      string
	IsAdmin   bool
	ExpiresAt time.Time
}

// ValidateAccessToken verifies the token signature and extracts user claims.
// The subject comes from "sub", falling back to "id".
func (s *Service) ValidateAccessToken(tokenString string) (UserClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return UserClaims{}, ErrUnauthorized
	}

	parsed, err := s.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return UserClaims{}, ErrTokenExpired
		}
		return UserClaims{}, ErrUnauthorized
	}
	if !parsed.Valid {
		return UserClaims{}, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return UserClaims{}, ErrUnauthorized
	}

	subject := stringClaim(claims, "sub", "id")
	if subject == "" {
		return UserClaims{}, ErrUnauthorized
	}

	isAdmin, _ := claims["is_admin"].(bool)

	var exp time.Time
	if expAt, err := claims.GetExpirationTime(); err == nil && expAt != nil {
		exp = expAt.Time
	}

	return UserClaims{
		Subject:   subject,
		Name:      stringClaim(claims, "userName", "email"),
		IsAdmin:   isAdmin,
		ExpiresAt: exp,
	}, nil
}

// stringClaim returns the first non-empty claim among keys. Numeric ids are
// formatted without a fraction.
func stringClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
