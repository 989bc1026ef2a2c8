package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/PratikDhanave/idp-hook-bridge/internal/hooks"
	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
)

// MaxBodyBytes caps a webhook delivery body.
const MaxBodyBytes = 1 << 20

// HookHandler adapts a hooks.Processor to gin.
//
// The status code and body of the processor's response are written as-is;
// an empty body is sent with no content type.
func HookHandler(p hooks.Processor, logger logrus.FieldLogger) gin.HandlerFunc {
	logger = logging.OrDiscard(logger)
	return func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.Status(http.StatusRequestEntityTooLarge)
				return
			}
			logger.WithError(err).WithField(logging.FieldPath, c.FullPath()).Warn("failed to read delivery body")
			c.Status(http.StatusBadRequest)
			return
		}

		resp := p.Process(c.Request.Context(), hooks.Request{
			Method:  c.Request.Method,
			Headers: flattenHeaders(c.Request.Header),
			Body:    body,
		})
		writeResponse(c, resp)
	}
}

// flattenHeaders keeps the first value of each header.
func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}
	return headers
}

func writeResponse(c *gin.Context, resp hooks.Response) {
	if resp.Body == "" {
		c.Status(resp.StatusCode)
		return
	}
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	c.Data(resp.StatusCode, contentType, []byte(resp.Body))
}

// RegisterHookRoutes registers the webhook endpoints for the enabled sources.
//
// POST /hooks/auth0
// POST /hooks/okta
// GET  /hooks/okta  (event hook verification)
func RegisterHookRoutes(r gin.IRoutes, auth0, okta hooks.Processor, logger logrus.FieldLogger) {
	if auth0 != nil {
		r.POST("/hooks/auth0", HookHandler(auth0, logger))
	}
	if okta != nil {
		h := HookHandler(okta, logger)
		r.POST("/hooks/okta", h)
		r.GET("/hooks/okta", h)
	}
}
