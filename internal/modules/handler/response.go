package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/amansoomro062/codesign/internal/middleware"
	"github.com/amansoomro062/codesign/internal/modules/serializer"
	"github.com/amansoomro062/codesign/internal/modules/service"
	"github.com/amansoomro062/codesign/internal/telemetry"
)

// serviceErr writes the response for an error returned by a service.
// Unrecognised errors become a 500 tagged with the request's trace id.
func serviceErr(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, serializer.ParamErr(err.Error(), nil))
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(err.Error()))
	case errors.Is(err, service.ErrAccessDenied):
		c.JSON(http.StatusForbidden, serializer.Forbidden(""))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFound(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, serializer.Conflict(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, serializer.TrackedErrorResponse{
			Response: serializer.DBErr("", err),
			TraceID:  telemetry.TraceID(c.Request.Context()),
		})
	}
}

// paramUUID parses a path parameter, writing a 400 when it is malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated user; routes without UserAuth get a 401.
func caller(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
	}
	return id, ok
}
