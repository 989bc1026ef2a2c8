package duo

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Escape percent-encodes s per RFC 3986. Unlike encodeURIComponent-style
// encoders it also escapes ! ' ( ) and *, which Duo requires.
func Escape(s string) string {
	// QueryEscape already escapes the five sub-delims; only the space
	// differs from RFC 3986.
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// EncodeParams renders params as k=v pairs joined by "&", ordered by key.
// The same string is signed and sent as the request body or query, so the
// order must be deterministic.
func EncodeParams(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range params[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(Escape(k))
			b.WriteByte('=')
			b.WriteString(Escape(v))
		}
	}
	return b.String()
}

// Canonicalize builds the string Duo recomputes server side.
func Canonicalize(date, method, host, path, encodedParams string) string {
	return strings.Join([]string{
		date,
		strings.ToUpper(method),
		strings.ToLower(host),
		path,
		encodedParams,
	}, "\n")
}

// SignedRequest is one signed call. It is only valid for the date it was
// signed with.
type SignedRequest struct {
	Method        string
	Path          string
	Params        url.Values
	Date          string
	Authorization string
}

// Header returns the headers Duo expects on the request.
func (r SignedRequest) Header() http.Header {
	h := http.Header{}
	h.Set("Date", r.Date)
	h.Set("Authorization", "Basic "+r.Authorization)
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	return h
}

// Signer signs Admin API requests with an integration key pair.
type Signer struct {
	integrationKey string
	secretKey      string
	host           string
	now            func() time.Time
}

// NewSigner returns a signer for the API host (no scheme or port).
func NewSigner(integrationKey, secretKey, host string) *Signer {
	return &Signer{
		integrationKey: integrationKey,
		secretKey:      secretKey,
		host:           host,
		now:            time.Now,
	}
}

// Sign returns base64(ikey:hex(HMAC-SHA1(skey, canon))).
func (s *Signer) Sign(date, method, path string, params url.Values) string {
	canon := Canonicalize(date, method, s.host, path, EncodeParams(params))

	mac := hmac.New(sha1.New, []byte(s.secretKey))
	mac.Write([]byte(canon))
	sig := hex.EncodeToString(mac.Sum(nil))

	return base64.StdEncoding.EncodeToString([]byte(s.integrationKey + ":" + sig))
}

// NewRequest signs a request for the current time.
func (s *Signer) NewRequest(method, path string, params url.Values) SignedRequest {
	date := s.now().UTC().Format(http.TimeFormat)
	return SignedRequest{
		Method:        strings.ToUpper(method),
		Path:          path,
		Params:        params,
		Date:          date,
		Authorization: s.Sign(date, method, path, params),
	}
}
