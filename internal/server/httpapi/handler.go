package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/services"
	"github.com/gin-gonic/gin"
)

const (
	detailInvalidPage      = "Invalid page."
	detailBadCredentials   = "No active account found with the given credentials"
	detailMalformedSignIn  = "email and password are required"
	detailMalformedRefresh = "refresh is required"
	detailRefreshRejected  = "Token is invalid or expired"
)

// UserService is what the handlers need from the user layer.
type UserService interface {
	List(ctx context.Context, page, pageSize int) (*services.Page, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type Handler struct {
	users    UserService
	logger   logging.Logger
	pageSize int
}

func NewHandler(us UserService, l logging.Logger, pageSize int) *Handler {
	if pageSize < 1 {
		pageSize = 20
	}
	return &Handler{users: us, logger: l, pageSize: pageSize}
}

// Register mounts the routes on r. Everything under /api/accounts except
// token/ requires an authenticated caller.
func (h *Handler) Register(r gin.IRouter, a auth.Authenticator) {
	r.GET("/health", h.Health)

	api := r.Group("/api/accounts")
	api.POST("/token/", h.Token)
	api.POST("/token/refresh/", h.TokenRefresh)

	protected := api.Group("", requireAuth(a, h.logger))
	{
		protected.GET("/me/", h.Me)
		protected.GET("/list", h.List)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, NewUserResponse(currentUser(c)))
}

func (h *Handler) List(c *gin.Context) {
	q := c.Request.URL.Query()

	page, last, ok := parsePage(q)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Detail: detailInvalidPage})
		return
	}
	size := parsePageSize(q, h.pageSize)

	res, err := h.users.List(c.Request.Context(), page, size)
	if err != nil {
		h.internalError(c, err)
		return
	}

	pages := numPages(res.Count, size)
	if last && pages > 1 {
		// the first read only told us how many pages there are
		page = pages
		if res, err = h.users.List(c.Request.Context(), page, size); err != nil {
			h.internalError(c, err)
			return
		}
		pages = numPages(res.Count, size)
	}
	if page > pages {
		c.JSON(http.StatusNotFound, errorResponse{Detail: detailInvalidPage})
		return
	}

	next, previous := pageLinks(c.Request, page, pages)
	c.JSON(http.StatusOK, PageResponse{
		Count:    res.Count,
		Next:     next,
		Previous: previous,
		Results:  NewUserResponses(res.Users),
	})
}

type tokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (h *Handler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: detailMalformedSignIn})
		return
	}

	pair, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, errorResponse{Detail: detailBadCredentials})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// TokenRefresh exchanges a refresh token for a new pair. The presented
// token is consumed.
func (h *Handler) TokenRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: detailMalformedRefresh})
		return
	}

	pair, err := h.users.RefreshToken(c.Request.Context(), req.Refresh)
	if err != nil {
		if _, ok := authFailureDetail(err); ok {
			c.JSON(http.StatusUnauthorized, errorResponse{Detail: detailRefreshRejected})
			return
		}
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Access: pair.AccessToken, Refresh: pair.RefreshToken})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	h.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{Detail: detailInternal})
}
