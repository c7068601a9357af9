package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier resolves a bearer credential to a caller identity.
// The production implementation validates JWTs locally; tests substitute
// failing or canned verifiers.
type TokenVerifier interface {
	VerifyToken(token string) (userID, role string, err error)
}

// CustomClaims defines the structure of the data stored inside the JWT,
// mirroring what the platform's account service signs.
type CustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens with a shared secret.
type JWTVerifier struct {
	key []byte
}

func NewJWTVerifier(secret string) JWTVerifier {
	return JWTVerifier{key: []byte(secret)}
}

// VerifyToken parses and validates the signature and expiration of a JWT
// string, returning the embedded identity.
func (v JWTVerifier) VerifyToken(tokenString string) (string, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil {
		return "", "", err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims.UserID, claims.Role, nil
	}
	return "", "", jwt.ErrSignatureInvalid
}

// GenerateToken creates a signed JWT for a specific user. Used by tests
// and by operator tooling; the pipeline itself never issues credentials.
func GenerateToken(secret, userID, role string, ttl time.Duration) (string, error) {
	claims := &CustomClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "comms-hub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
