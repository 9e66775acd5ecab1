package handler

import (
	apperrors "homeservice-booking/pkg/errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Responder writes the JSON envelope shared by every endpoint
type Responder struct {
	logger logrus.FieldLogger
	debug  bool
}

// NewResponder creates a responder. debug adds the underlying error text to
// failure responses and must stay off outside development.
func NewResponder(logger logrus.FieldLogger, debug bool) *Responder {
	return &Responder{logger: logger, debug: debug}
}

// OK writes a success envelope with body merged at the top level
func (r *Responder) OK(c *gin.Context, status int, message string, body gin.H) {
	out := gin.H{"success": true, "message": message}
	for k, v := range body {
		out[k] = v
	}
	c.JSON(status, out)
}

// Error writes a failure envelope for err and aborts the chain
func (r *Responder) Error(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	code, message := apperrors.Public(err)

	if status >= http.StatusInternalServerError {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"code":   code,
		}).Error("request failed")
	}

	out := gin.H{"success": false, "message": message, "code": code}
	if r.debug {
		out["error"] = err.Error()
	}
	c.AbortWithStatusJSON(status, out)
}

// BadRequest reports a body or query that failed to bind
func (r *Responder) BadRequest(c *gin.Context, err error) {
	r.Error(c, apperrors.Wrap(apperrors.New(apperrors.KindValidation, "INVALID_REQUEST", "invalid request body"), err))
}
