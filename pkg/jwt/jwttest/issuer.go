// Package jwttest provides a fake token issuer for tests: an RSA key, the
// matching key-set document served over an in-memory HTTP client, and a
// token signer.
package jwttest

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	DefaultDomain   = "coffee-shop.test"
	DefaultAudience = "drinks"
	DefaultKeyID    = "kid-1"
)

type Issuer struct {
	Domain   string
	Audience string
	KeyID    string
	Key      *rsa.PrivateKey

	fetches atomic.Int32
	status  atomic.Int32
}

func NewIssuer(t testing.TB) *Issuer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	issuer := &Issuer{
		Domain:   DefaultDomain,
		Audience: DefaultAudience,
		KeyID:    DefaultKeyID,
		Key:      key,
	}
	issuer.status.Store(http.StatusOK)
	return issuer
}

func (i *Issuer) JWKSURL() string {
	return "https://" + i.Domain + "/.well-known/jwks.json"
}

func (i *Issuer) Fetches() int {
	return int(i.fetches.Load())
}

// FailFetches makes the key-set endpoint answer with status until reset with http.StatusOK.
func (i *Issuer) FailFetches(status int) {
	i.status.Store(int32(status))
}

func (i *Issuer) HTTPClient() *http.Client {
	return &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.String() != i.JWKSURL() {
				return jsonResponse(http.StatusNotFound, `{}`), nil
			}
			i.fetches.Add(1)
			if status := int(i.status.Load()); status != http.StatusOK {
				return jsonResponse(status, `{}`), nil
			}
			return jsonResponse(http.StatusOK, i.JWKS()), nil
		}),
	}
}

func (i *Issuer) JWKS() string {
	payload := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": i.KeyID,
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(i.Key.PublicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(i.Key.PublicKey.E)).Bytes()),
			},
		},
	}
	out, _ := json.Marshal(payload)
	return string(out)
}

// Claims returns valid claims for this issuer. A nil permissions slice leaves
// the claim out entirely.
func (i *Issuer) Claims(permissions []string) jwt.MapClaims {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": "https://" + i.Domain + "/",
		"aud": i.Audience,
		"sub": "auth0|barista",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	if permissions != nil {
		claims["permissions"] = permissions
	}
	return claims
}

func (i *Issuer) Token(t testing.TB, permissions []string) string {
	t.Helper()
	return i.Sign(t, i.Claims(permissions))
}

func (i *Issuer) Sign(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = i.KeyID
	signed, err := token.SignedString(i.Key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}
