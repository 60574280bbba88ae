package http

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

const (
	// UserIDKey is where the authenticated user id is kept on the echo context.
	UserIDKey = "user_id"

	// DevUserHeader names the caller when token verification is disabled.
	DevUserHeader = "X-User-ID"
	anonymousUser = "anonymous"

	tokenIssuer = "mentor-relay"

	// IssuerKeyHeader carries the key that unlocks the development token route.
	IssuerKeyHeader = "X-API-Key"
	devTokenTTL     = 24 * time.Hour
)

// Claims are the access token claims. Subject carries the user id, as issued
// by the auth provider.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an Authenticator for secret. An empty secret
// disables verification; the user id is then taken from DevUserHeader.
func NewAuthenticator(secret string) *Authenticator {
	if secret == "" {
		log.With().Warn("JWT_SECRET is not set, protected routes accept any caller")
	}
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Enabled() bool {
	return len(a.secret) > 0
}

// IssueToken signs a token for userID valid for ttl.
func (a *Authenticator) IssueToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Middleware rejects requests without a valid bearer token and stores the
// token subject under UserIDKey.
func (a *Authenticator) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !a.Enabled() {
			userID := c.Request().Header.Get(DevUserHeader)
			if userID == "" {
				userID = anonymousUser
			}
			return a.authenticated(c, next, userID)
		}

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil {
			log.WithCtx(c.Request().Context()).Info("JWT validation failed", zap.Error(err))
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid || claims.Subject == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token claims")
		}
		return a.authenticated(c, next, claims.Subject)
	}
}

func (a *Authenticator) authenticated(c echo.Context, next echo.HandlerFunc, userID string) error {
	c.Set(UserIDKey, userID)
	req := c.Request()
	c.SetRequest(req.WithContext(log.ContextWith(req.Context(), log.UserIDKey, userID)))
	return next(c)
}

// TokenIssuer hands out access tokens to callers presenting the issuer key.
// Real deployments get their tokens from the auth provider; this route only
// exists for local work with the CLI.
type TokenIssuer struct {
	auth *Authenticator
	key  []byte
}

// NewTokenIssuer returns nil when auth is disabled or key is empty, which
// leaves the route unmounted.
func NewTokenIssuer(auth *Authenticator, key string) *TokenIssuer {
	if auth == nil || !auth.Enabled() || key == "" {
		return nil
	}
	return &TokenIssuer{auth: auth, key: []byte(key)}
}

type tokenRequest struct {
	UserID string `json:"user_id"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (i *TokenIssuer) Issue(c echo.Context) error {
	key := c.Request().Header.Get(IssuerKeyHeader)
	if subtle.ConstantTimeCompare([]byte(key), i.key) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	token, err := i.auth.IssueToken(req.UserID, devTokenTTL)
	if err != nil {
		log.WithCtx(c.Request().Context()).Error("Error signing JWT", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, tokenResponse{
		Token:     token,
		Type:      "Bearer",
		ExpiresAt: time.Now().Add(devTokenTTL).UTC(),
	})
}

// RequestID tags every request with an id, taken from X-Request-ID when the
// caller sent one, and exposes it to the request logger.
func RequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		id := req.Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, id)
		c.SetRequest(req.WithContext(log.ContextWith(req.Context(), log.RequestIDKey, id)))
		return next(c)
	}
}

func userID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}
