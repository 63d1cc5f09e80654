package httpapi

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamvault/streamvault/internal/common"
	"github.com/streamvault/streamvault/internal/server/models"
	"github.com/streamvault/streamvault/internal/server/services"
)

// register handles a multipart form with the profile fields and optional
// avatar / coverImage file parts.
func (h *Handler) register(c *gin.Context) {
	params := services.RegisterParams{
		Username: c.PostForm("username"),
		Email:    c.PostForm("email"),
		FullName: c.PostForm("fullName"),
		Password: c.PostForm("password"),
	}

	avatar, avatarType, err := openFormFile(c, "avatar")
	if err != nil {
		respondErr(c, common.ErrorValidation)
		return
	}
	if avatar != nil {
		defer avatar.Close()
		params.Avatar = avatar
		params.AvatarContentType = avatarType
	}

	cover, coverType, err := openFormFile(c, "coverImage")
	if err != nil {
		respondErr(c, common.ErrorValidation)
		return
	}
	if cover != nil {
		defer cover.Close()
		params.Cover = cover
		params.CoverContentType = coverType
	}

	user, err := h.session.Register(c.Request.Context(), params)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"user": toUserDTO(user)})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// identifierOf accepts either the identifier field or the older
// username/email fields.
func (r loginRequest) identifierOf() string {
	switch {
	case r.Identifier != "":
		return r.Identifier
	case r.Username != "":
		return r.Username
	default:
		return r.Email
	}
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, common.ErrorValidation)
		return
	}

	res, err := h.session.Login(c.Request.Context(), req.identifierOf(), req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}

	h.setSessionCookies(c, res.Tokens)
	respondOK(c, http.StatusOK, gin.H{
		"user":         toUserDTO(res.User),
		"accessToken":  res.Tokens.AccessToken,
		"refreshToken": res.Tokens.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refresh exchanges the refresh token from the cookie, falling back to the
// JSON body for clients that do not hold cookies.
func (h *Handler) refresh(c *gin.Context) {
	token, _ := c.Cookie(refreshTokenCookie)
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.session.Refresh(c.Request.Context(), token)
	if err != nil {
		respondErr(c, err)
		return
	}

	h.setSessionCookies(c, *pair)
	respondOK(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.session.Logout(c.Request.Context(), c.GetString(ctxUserID)); err != nil {
		respondErr(c, err)
		return
	}
	h.clearSessionCookies(c)
	respondOK(c, http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) currentUser(c *gin.Context) {
	user, err := h.session.CurrentUser(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": toUserDTO(user)})
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, common.ErrorValidation)
		return
	}

	user, err := h.session.UpdateProfile(c.Request.Context(), c.GetString(ctxUserID), req.FullName, req.Email)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": toUserDTO(user)})
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, common.ErrorValidation)
		return
	}

	err := h.session.ChangePassword(c.Request.Context(), c.GetString(ctxUserID), req.OldPassword, req.NewPassword)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"message": "password changed"})
}

func (h *Handler) updateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.session.UpdateAvatar)
}

func (h *Handler) updateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.session.UpdateCoverImage)
}

func (h *Handler) updateImage(c *gin.Context, field string,
	update func(ctx context.Context, userID string, r io.Reader, contentType string) (*models.User, error)) {

	file, contentType, err := openFormFile(c, field)
	if err != nil || file == nil {
		respondErr(c, common.ErrorValidation)
		return
	}
	defer file.Close()

	user, err := update(c.Request.Context(), c.GetString(ctxUserID), file, contentType)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": toUserDTO(user)})
}

// openFormFile returns the opened file part and its declared content type,
// or (nil, "", nil) when the part is absent.
func openFormFile(c *gin.Context, field string) (multipart.File, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", err
	}
	f, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	return f, header.Header.Get("Content-Type"), nil
}
