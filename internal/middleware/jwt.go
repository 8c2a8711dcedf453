package middleware

import (
	"context"
	"net/http"

	"sabaibill/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims carries the authenticated user and company scope. Token
// issuance lives in the external auth service; this core only validates and
// unpacks.
type JWTCustomClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	CompanyID uuid.UUID `json:"company_id"`
	jwt.RegisteredClaims
}

// ParseJWTPayload validates the parsed claims and copies the identifiers
// into the request context under the common context keys.
func ParseJWTPayload(c echo.Context, claims *JWTCustomClaims) (*JWTCustomClaims, error) {
	if claims.UserID == uuid.Nil || claims.CompanyID == uuid.Nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Token missing identity claims")
	}

	ctx := context.WithValue(c.Request().Context(), common.UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, common.CompanyIDKey, claims.CompanyID)
	c.SetRequest(c.Request().WithContext(ctx))

	return claims, nil
}

// ScopeFromToken runs after the JWT middleware and moves the verified
// claims into the request context. Mount it on every protected group.
func ScopeFromToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
		}
		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token claims")
		}
		if _, err := ParseJWTPayload(c, claims); err != nil {
			return err
		}
		return next(c)
	}
}
