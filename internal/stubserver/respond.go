package stubserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/studentlink-portal/internal/models"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

// envelope mirrors the wire contract the client decodes. The client's
// Envelope uses json.RawMessage for data; the server side marshals any value.
type envelope struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Errors     map[string]string  `json:"errors,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondPage(c *gin.Context, data any, page *models.Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: page})
}

func respondErr(c *gin.Context, err error) {
	appErr := appErrors.Normalize(err)
	status := appErr.Status
	if status == 0 {
		status = statusForKind(appErr.Kind)
	}
	c.JSON(status, envelope{Success: false, Message: appErr.Message})
}

func statusForKind(kind appErrors.Kind) int {
	switch kind {
	case appErrors.KindAuthentication:
		return http.StatusUnauthorized
	case appErrors.KindValidation:
		return http.StatusUnprocessableEntity
	case appErrors.KindServer:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: true, Message: message})
}
