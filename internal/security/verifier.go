package security

import (
	"errors"
	"time"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// OperatorClaims identifies who asked for a batch run. The trigger surface
// needs exactly two things from a token: which operator, and whether they
// hold the admin role.
type OperatorClaims struct {
	OperatorID string
	Role       string
	Exp        time.Time
}

// OperatorVerifier checks trigger tokens minted by the auth service.
type OperatorVerifier interface {
	VerifyOperatorToken(token string) (OperatorClaims, error)
}
