// Package httpapi is the HTTP boundary of the service. It translates gin
// requests into session operations, maps sentinel errors to status codes,
// and manages the accessToken/refreshToken cookie pair.
package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamvault/streamvault/internal/logging"
	"github.com/streamvault/streamvault/internal/server/auth"
	"github.com/streamvault/streamvault/internal/server/models"
	"github.com/streamvault/streamvault/internal/server/services"
)

// Session is the slice of the session service the HTTP layer needs.
type Session interface {
	Register(ctx context.Context, p services.RegisterParams) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*services.LoginResult, error)
	Refresh(ctx context.Context, presented string) (*services.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID string, r io.Reader, contentType string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, userID string, r io.Reader, contentType string) (*models.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	Tokens() *auth.TokenIssuer
}

// Options carries the cookie policy of the deployment.
type Options struct {
	CookieSecure bool
	CookieDomain string
}

type Handler struct {
	session Session
	logger  logging.Logger
	opts    Options
}

func NewHandler(session Session, logger logging.Logger, opts Options) *Handler {
	return &Handler{
		session: session,
		logger:  logger.With("component", "httpapi"),
		opts:    opts,
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	users.POST("/register", h.register)
	users.POST("/login", h.login)
	users.POST("/refresh-token", h.refresh)

	authed := users.Group("")
	authed.Use(h.requireAuth())
	authed.POST("/logout", h.logout)
	authed.GET("/me", h.currentUser)
	authed.PATCH("/me", h.updateProfile)
	authed.POST("/change-password", h.changePassword)
	authed.PATCH("/avatar", h.updateAvatar)
	authed.PATCH("/cover", h.updateCoverImage)

	return r
}
