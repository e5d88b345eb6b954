package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/maisondecor/maison/internal/errors"
)

// PeekExpiry extracts the expiry claim from an access token without
// verifying its signature. The backend owns verification; the client
// only uses the claim for display ("expires in 4m") and to decide
// whether a silent refresh is worth attempting at startup.
func PeekExpiry(token string) (time.Time, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, errors.Wrap(errors.ErrCodeAuthTokenMalformed, "failed to parse access token", err)
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New(errors.ErrCodeAuthTokenMalformed, "access token carries no expiry claim")
	}

	return exp.Time, nil
}

// TokenExpired reports whether the token's expiry claim is in the past.
// Tokens that cannot be parsed are treated as expired.
func TokenExpired(token string, now time.Time) bool {
	exp, err := PeekExpiry(token)
	if err != nil {
		return true
	}
	return exp.Before(now)
}
