package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse writes an error envelope with the given status.
func ErrorResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:  statusCode,
		Message: http.StatusText(statusCode),
		Data:    data,
	})
}

// BadRequestResponse writes bad request error.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return ErrorResponse(c, http.StatusBadRequest, data)
}

// TooManyRequestsResponse writes rate-limit rejection.
func TooManyRequestsResponse(c echo.Context, data interface{}) error {
	return ErrorResponse(c, http.StatusTooManyRequests, data)
}

// InternalServerErrorResponse writes internal server error without
// leaking internal detail.
func InternalServerErrorResponse(c echo.Context) error {
	return ErrorResponse(c, http.StatusInternalServerError, "Something went wrong")
}

// AppErrorResponse writes application error response.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ErrorResponse(c, appErr.Status, []*AppError{appErr})
	}
	return InternalServerErrorResponse(c)
}
