package handler

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/aegis-triage/internal/repository"
	"github.com/jwalitptl/aegis-triage/internal/triage"
	"github.com/jwalitptl/aegis-triage/pkg/errors"
)

// MapError converts service and domain errors into *errors.AppError so the
// error middleware can pick a status. Unknown errors become internal errors.
func MapError(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, triage.ErrNonMedicalIntent):
		return errors.NewNonMedicalIntent(err)
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NotFound("resource", err)
	default:
		return errors.Internal(err)
	}
}

// Fail attaches err to the context for ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(MapError(err))
	c.Abort()
}

// BindJSON binds the request body, failing the request on error.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Fail(c, errors.BadRequest("invalid request body", err))
		return false
	}
	return true
}

// UUIDParam parses a path parameter as a UUID, failing the request on error.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Fail(c, errors.BadRequest("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}
