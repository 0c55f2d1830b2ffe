package service

import (
	"database/sql"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/university-admin-api/pkg/errors"
	"github.com/noah-isme/university-admin-api/pkg/i18n"
)

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError converts validator output into a client error. Missing
// required fields use requiredKey; any other rule failure names the field.
func validationError(err error, message, requiredKey string) *appErrors.Error {
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	appErr.Key = i18n.ValidationFailed

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErr
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			appErr.Key = requiredKey
			appErr.Field = fe.Field()
			return appErr
		}
	}
	appErr.Field = fieldErrs[0].Field()
	return appErr
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func invalidIDError(field string) *appErrors.Error {
	return appErrors.WithField(appErrors.WithKey(appErrors.Clone(appErrors.ErrValidation, "malformed id"), i18n.InvalidID), field)
}

func notFoundError(message, key string) *appErrors.Error {
	return appErrors.WithKey(appErrors.Clone(appErrors.ErrNotFound, message), key)
}

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
