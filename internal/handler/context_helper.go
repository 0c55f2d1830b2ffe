package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/university-admin-api/pkg/errors"
	"github.com/noah-isme/university-admin-api/pkg/i18n"
	"github.com/noah-isme/university-admin-api/pkg/response"
)

// bindJSON decodes the request body into dest. An empty body leaves dest
// untouched so the service reports the missing fields. Malformed JSON is
// answered with 400 and false is returned.
func bindJSON(c *gin.Context, dest interface{}) bool {
	err := c.ShouldBindJSON(dest)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	appErr.Key = i18n.ValidationFailed
	response.Error(c, appErr)
	return false
}
