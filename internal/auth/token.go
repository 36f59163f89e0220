package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rbkantor/eightsleep-nosub-app/internal"
)

// CookieName is the session cookie the front end sends on every request.
const CookieName = "8slpAutht"

// SessionTTL is the validity window of a freshly minted session token.
const SessionTTL = 90 * 24 * time.Hour

// Claims is the payload of a session token. The email is the identity
// key across all stores.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueSessionToken mints a signed session token for the given email.
func IssueSessionToken(email, secret string, now time.Time) (string, error) {
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifySessionToken validates signature and expiry and returns the
// embedded email. Any failure maps to ErrUnauthenticated.
func VerifySessionToken(tokenString, secret string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", internal.ErrUnauthenticated
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return "", internal.ErrUnauthenticated
	}
	return claims.Email, nil
}

// VerifyCookieHeader extracts the session cookie from a raw Cookie
// header value and verifies it. This is the precondition gate every
// authenticated operation runs first; it touches no store.
func VerifyCookieHeader(rawCookieHeader, secret string) (string, error) {
	if rawCookieHeader == "" {
		return "", internal.ErrUnauthenticated
	}
	// Parse with the stdlib rather than splitting by hand.
	req := http.Request{Header: http.Header{"Cookie": {rawCookieHeader}}}
	cookie, err := req.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", internal.ErrUnauthenticated
	}
	return VerifySessionToken(cookie.Value, secret)
}
