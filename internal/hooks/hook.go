// Package hooks turns webhook deliveries from an identity provider into
// recipient directory updates.
//
// Each source has its own failure policy. Auth0 batches are processed in
// order and every per-event failure is logged and swallowed, so a partially
// applied batch is never redelivered. Okta batches fan out in parallel and
// the first failure fails the delivery, which Okta then retries; the dedup
// tracker keeps the retry from re-applying events that already completed.
package hooks

import (
	"context"
	"errors"
	"net/http"

	"github.com/PratikDhanave/idp-hook-bridge/internal/auth"
)

// Request is a webhook delivery, independent of the HTTP framework.
type Request struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

// Header returns a header value, matching the name case-insensitively.
func (r Request) Header(name string) string {
	v, _ := auth.Header(r.Headers, name)
	return v
}

// Response is what the delivery is answered with. Body is empty unless
// ContentType says otherwise.
type Response struct {
	StatusCode  int
	Body        string
	ContentType string
}

// Processor handles one delivery.
type Processor interface {
	Process(ctx context.Context, req Request) Response
}

// invalidAuthorization is the only failure explained to the sender.
const invalidAuthorization = "Invalid Authorization"

var ErrInvalidAuthorization = errors.New("invalid authorization")

func unauthorized() Response {
	return Response{StatusCode: http.StatusInternalServerError, Body: invalidAuthorization, ContentType: "text/plain; charset=utf-8"}
}

func ok() Response {
	return Response{StatusCode: http.StatusOK}
}

func badRequest() Response {
	return Response{StatusCode: http.StatusBadRequest}
}

func failed() Response {
	return Response{StatusCode: http.StatusInternalServerError}
}
