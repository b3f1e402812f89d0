package serializer

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var errorDetail atomic.Bool

// ShowErrorDetail controls whether error responses carry the underlying
// error text. Only development turns it on.
func ShowErrorDetail(on bool) { errorDetail.Store(on) }

// Response
type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// TrackedErrorResponse carries the trace id of a failed request so it can be
// found in the tracing backend.
type TrackedErrorResponse struct {
	Response
	TraceID string `json:"trace_id,omitempty"`
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code:    errCode,
		Message: msg,
	}
	// development mode, show error detail
	if err != nil && errorDetail.Load() {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// DBErr
func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "internal server error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// Forbidden
func Forbidden(msg string) Response {
	if msg == "" {
		msg = "access denied"
	}
	return Err(http.StatusForbidden, msg, nil)
}

// NotFound
func NotFound(msg string) Response {
	if msg == "" {
		msg = "not found"
	}
	return Err(http.StatusNotFound, msg, nil)
}

// Conflict
func Conflict(msg string) Response {
	if msg == "" {
		msg = "conflict"
	}
	return Err(http.StatusConflict, msg, nil)
}

// TooManyRequests
func TooManyRequests() Response {
	return Err(http.StatusTooManyRequests, "too many requests", nil)
}
