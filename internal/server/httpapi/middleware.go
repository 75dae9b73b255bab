package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/gin-gonic/gin"
)

const (
	userKey = "user"

	authenticateHeader = `Bearer realm="api"`

	detailNotProvided  = "Authentication credentials were not provided."
	detailTokenExpired = "Token is expired."
	detailTokenInvalid = "Given token not valid."
	detailUserInvalid  = "User not found or inactive."
	detailInternal     = "internal error"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// requireAuth runs the authenticator chain and rejects the request unless
// some authenticator resolved a user.
func requireAuth(a auth.Authenticator, l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := a.Authenticate(c.Request)
		if err != nil {
			if detail, ok := authFailureDetail(err); ok {
				unauthorized(c, detail)
				return
			}
			l.Error(c.Request.Context(), "authentication", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Detail: detailInternal})
			return
		}
		if res == nil || res.User == nil {
			unauthorized(c, detailNotProvided)
			return
		}

		c.Set(userKey, res.User)
		c.Next()
	}
}

func authFailureDetail(err error) (string, bool) {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return detailTokenExpired, true
	case errors.Is(err, common.ErrInvalidToken):
		return detailTokenInvalid, true
	case errors.Is(err, common.ErrorUnauthorized):
		return detailUserInvalid, true
	}
	return "", false
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", authenticateHeader)
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Detail: detail})
}

// currentUser returns the user stored by requireAuth.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		)
	}
}
