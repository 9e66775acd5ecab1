package handler

import (
	"homeservice-booking/internal/model"
	"homeservice-booking/pkg/auth"
	apperrors "homeservice-booking/pkg/errors"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	principalKey         = "principal"
	slowRequestThreshold = 200 * time.Millisecond
)

// TokenVerifier resolves a bearer token to its claims
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// JWTAuth resolves the bearer token into a principal for later handlers
func JWTAuth(tokens TokenVerifier, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			resp.Error(c, apperrors.ErrUnauthorized)
			return
		}

		claims, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			resp.Error(c, err)
			return
		}

		p := model.Principal{ID: claims.Sub, Role: model.Role(claims.Role)}
		if p.ID == "" || !p.Role.Valid() {
			resp.Error(c, apperrors.ErrForbidden)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// RequireRole rejects principals whose role is not listed
func RequireRole(resp *Responder, roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, principal(c).Role) {
			resp.Error(c, apperrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequestLogger logs every request with its latency and flags slow ones
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		log := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if latency > slowRequestThreshold {
			log.Warn("slow request")
			return
		}
		log.Info("request")
	}
}

func principal(c *gin.Context) model.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(model.Principal); ok {
			return p
		}
	}
	return model.Principal{}
}
