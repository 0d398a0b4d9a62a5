package er

import (
	"errors"
	"fmt"
	"net/http"
)

type Code int

const (
	BadRequestCode      Code = 400
	UnauthenticatedCode Code = 401
	ForbiddenCode       Code = 403
	NotFoundCode        Code = 404
	InternalErrorCode   Code = 500
)

var ErrStrMap = map[Code]string{
	BadRequestCode:      "bad request",
	UnauthenticatedCode: "unauthenticated",
	ForbiddenCode:       "forbidden",
	NotFoundCode:        "not found",
	InternalErrorCode:   "internal server error",
}

// Err carries an error code alongside the message so the API layer
// can map it onto an HTTP status without inspecting message text.
type Err struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("code: %d, message: %s", e.Code, e.Message)
}

func New(code Code, message string) *Err {
	return &Err{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Err {
	return &Err{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf unwraps err and returns its Code.
// Unrecognized errors map to InternalErrorCode.
func CodeOf(err error) Code {
	var e *Err
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalErrorCode
}

// HTTPStatus converts a Code into an HTTP status code. Codes already
// use HTTP numbering, but anything unknown falls back to 500.
func HTTPStatus(code Code) int {
	switch code {
	case BadRequestCode, UnauthenticatedCode, ForbiddenCode, NotFoundCode:
		return int(code)
	default:
		return http.StatusInternalServerError
	}
}
