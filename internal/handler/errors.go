package handler

import (
	"errors"
	"fmt"
	"log"
	"mediastore-checkout/internal/dto"
	"mediastore-checkout/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrInvalidState, http.StatusBadRequest, "invalid_state"},
	{service.ErrValidation, http.StatusBadRequest, "validation_failed"},
	{service.ErrAlreadyProcessed, http.StatusBadRequest, "already_processed"},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests, "too_many_attempts"},
	{service.ErrConfirmationFailed, http.StatusServiceUnavailable, "confirmation_failed"},
}

// ErrorHandler renders every error as {"error": {"code", "message"}}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, dto.ErrorResponse{Error: body})
	}
	if err != nil {
		log.Printf("write error response: %v", err)
	}
}

func classify(err error) (int, dto.ErrorBody) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			msg := err.Error()
			if m.status >= http.StatusInternalServerError {
				msg = m.target.Error()
			}
			return m.status, dto.ErrorBody{Code: m.code, Message: msg}
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, dto.ErrorBody{Code: httpErrorCode(he.Code), Message: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, dto.ErrorBody{Code: "internal_error", Message: "internal server error"}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusBadRequest:
		return "bad_request"
	default:
		if status >= http.StatusInternalServerError {
			return "internal_error"
		}
		return "request_failed"
	}
}
