package hooks

import (
	"encoding/json"
	"net/http"

	"github.com/PratikDhanave/idp-hook-bridge/internal/auth"
)

// HeaderVerificationChallenge carries Okta's one-time verification value.
const HeaderVerificationChallenge = "X-Okta-Verification-Challenge"

type verificationBody struct {
	Verification *string `json:"verification,omitempty"`
}

// Verify answers Okta's event hook verification by echoing the challenge.
// It is unauthenticated.
func Verify(req Request) Response {
	var body verificationBody
	if v, ok := auth.Header(req.Headers, HeaderVerificationChallenge); ok {
		body.Verification = &v
	}
	b, _ := json.Marshal(body)
	return Response{StatusCode: http.StatusOK, Body: string(b), ContentType: "application/json"}
}
