package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/university-admin-api/pkg/errors"
	"github.com/noah-isme/university-admin-api/pkg/i18n"
	"github.com/noah-isme/university-admin-api/pkg/middleware/locale"
)

// ErrorEnvelope represents the error response contract.
type ErrorEnvelope struct {
	Message string           `json:"message"`
	Error   *appErrors.Error `json:"error"`
}

// JSON sends data as the bare response body. List and detail reads use this
// shape because the UI consumes them directly.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, data)
}

// Message sends a localized message merged with the optional payload fields.
func Message(c *gin.Context, status int, key string, payload gin.H) {
	noStore(c)
	body := gin.H{"message": locale.T(c, key)}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Created responds with HTTP 201 Created and a localized message.
func Created(c *gin.Context, key string, payload gin.H) {
	Message(c, http.StatusCreated, key, payload)
}

// Error sends an error response converting the error to the common structure.
// The cause is attached to the gin context so the request logger can report it.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	_ = c.Error(err)
	noStore(c)
	c.JSON(appErr.Status, ErrorEnvelope{
		Message: locale.T(c, messageKey(appErr)),
		Error:   appErr,
	})
}

// Attachment streams a rendered file to the client.
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func messageKey(err *appErrors.Error) string {
	if err.Key != "" {
		return err.Key
	}
	switch {
	case err.Status >= http.StatusInternalServerError:
		return i18n.ServerError
	case err.Status == http.StatusNotFound:
		return i18n.NotFound
	default:
		return i18n.ValidationFailed
	}
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
