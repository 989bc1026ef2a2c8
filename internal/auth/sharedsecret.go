package auth

import (
	"crypto/subtle"
	"strings"
)

// HeaderAuthorization carries the shared webhook secret.
const HeaderAuthorization = "Authorization"

// Header returns the value of name from headers, matching the key
// case-insensitively.
func Header(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// SharedSecret authorizes webhook deliveries by comparing the Authorization
// header with a pre-shared value. The value is compared verbatim: no
// scheme prefix, case-sensitive, constant time.
type SharedSecret struct {
	secret []byte
}

func NewSharedSecret(secret string) SharedSecret {
	return SharedSecret{secret: []byte(secret)}
}

// Authorized reports whether headers carry the shared secret. An empty
// configured secret never authorizes.
func (s SharedSecret) Authorized(headers map[string]string) bool {
	if len(s.secret) == 0 {
		return false
	}
	got, ok := Header(headers, HeaderAuthorization)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), s.secret) == 1
}
