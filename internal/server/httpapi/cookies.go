package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamvault/streamvault/internal/server/services"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// setSessionCookies stores the token pair as http-only cookies whose
// lifetimes match the token TTLs.
func (h *Handler) setSessionCookies(c *gin.Context, pair services.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessTokenCookie, pair.AccessToken,
		int(h.session.Tokens().AccessTTL().Seconds()),
		"/", h.opts.CookieDomain, h.opts.CookieSecure, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken,
		int(h.session.Tokens().RefreshTTL().Seconds()),
		"/", h.opts.CookieDomain, h.opts.CookieSecure, true)
}

func (h *Handler) clearSessionCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", h.opts.CookieDomain, h.opts.CookieSecure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", h.opts.CookieDomain, h.opts.CookieSecure, true)
}
