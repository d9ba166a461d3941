// Package spark implements the iFlytek Spark chat vendor: HMAC-SHA256
// request signing plus the WebSocket and SSE transports that stream
// completions.
package spark

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Credentials are the static vendor credentials. They are configuration,
// not request-scoped state.
type Credentials struct {
	AppID     string
	APIKey    string
	APISecret string
}

// Signer computes the vendor's canonical HMAC-SHA256 authentication for one
// outbound call. A signed value embeds the wall-clock date and is valid only
// for that instant; callers must sign immediately before use.
type Signer struct {
	creds Credentials
}

// NewSigner validates the credentials and returns a Signer. Missing
// credentials are a configuration error, never a runtime one.
func NewSigner(creds Credentials) (*Signer, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	return &Signer{creds: creds}, nil
}

// Authorization computes the base64 authorization token over the vendor's
// canonical signing string:
//
//	host: <host>
//	date: <date>
//	<METHOD> <path> HTTP/1.1
//
// The method line must match exactly what the transport will use; a mismatch
// makes the vendor reject authentication with an opaque error.
func (s *Signer) Authorization(host, path, method, date string) string {
	origin := fmt.Sprintf("host: %s\ndate: %s\n%s %s HTTP/1.1", host, date, method, path)

	mac := hmac.New(sha256.New, []byte(s.creds.APISecret))
	mac.Write([]byte(origin))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	authOrigin := fmt.Sprintf(
		`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		s.creds.APIKey, signature,
	)

	return base64.StdEncoding.EncodeToString([]byte(authOrigin))
}

// AuthURL returns the WebSocket endpoint with authorization, date, and host
// appended as query parameters, signed for a GET upgrade at the given
// instant.
func (s *Signer) AuthURL(rawURL string, now time.Time) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing endpoint url: %w", err)
	}

	date := now.UTC().Format(http.TimeFormat)
	auth := s.Authorization(u.Host, u.Path, http.MethodGet, date)

	q := u.Query()
	q.Set("authorization", auth)
	q.Set("date", date)
	q.Set("host", u.Host)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// AuthHeaders returns the same three values as request headers
// (Authorization, Date, Host) for an HTTP call with the given method.
func (s *Signer) AuthHeaders(rawURL, method string, now time.Time) (http.Header, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint url: %w", err)
	}

	date := now.UTC().Format(http.TimeFormat)

	h := make(http.Header)
	h.Set("Authorization", s.Authorization(u.Host, u.Path, method, date))
	h.Set("Date", date)
	h.Set("Host", u.Host)

	return h, nil
}
