package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Verifier validates operator tokens. The expected issuer is pinned at
// construction, so a token minted by any other service fails verification.
type HS256Verifier struct {
	secret []byte
	issuer string
}

func NewHS256Verifier(secret, issuer string) *HS256Verifier {
	return &HS256Verifier{secret: []byte(secret), issuer: issuer}
}

type operatorClaims struct {
	OperatorID string `json:"uid"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

func (v *HS256Verifier) VerifyOperatorToken(token string) (OperatorClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &operatorClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, ErrTokenInvalid
		}
		return v.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return OperatorClaims{}, ErrTokenExpired
		}
		return OperatorClaims{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*operatorClaims)
	if !ok || !parsed.Valid {
		return OperatorClaims{}, ErrTokenInvalid
	}

	exp := time.Time{}
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	return OperatorClaims{
		OperatorID: claims.OperatorID,
		Role:       claims.Role,
		Exp:        exp,
	}, nil
}
