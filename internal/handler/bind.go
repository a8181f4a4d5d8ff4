package handler

import (
	"fmt"
	"mediastore-checkout/internal/middleware"
	"mediastore-checkout/internal/service"
	"net/http"
	"strconv"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo.
type Validator struct {
	validate *validatorv10.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validatorv10.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func bindAndValidate(c echo.Context, out interface{}) error {
	if err := c.Bind(out); err != nil {
		return fmt.Errorf("%w: invalid request body", service.ErrValidation)
	}

	if err := c.Validate(out); err != nil {
		return fmt.Errorf("%w: %s", service.ErrValidation, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	ve, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return err.Error()
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func userIDFromContext(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.UserIDKey).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	return userID, nil
}

func idParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s %q", service.ErrNotFound, name, c.Param(name))
	}
	return uint(id), nil
}
