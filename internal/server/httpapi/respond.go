package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamvault/streamvault/internal/common"
	"github.com/streamvault/streamvault/internal/server/models"
)

// envelope is the uniform response shape of the API.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// userDTO is the wire shape of a user record. The credential fields are
// already stripped by the service layer; the DTO keeps them out of the
// contract entirely.
type userDTO struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondErr(c *gin.Context, err error) {
	status, msg := statusOf(err)
	c.AbortWithStatusJSON(status, envelope{Success: false, Error: msg})
}

// statusOf maps the sentinel errors to HTTP status codes. Anything
// unrecognized is reported as an internal error without detail.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, "already exists"
	case errors.Is(err, common.ErrorUpstream):
		return http.StatusBadGateway, "upstream failure"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
