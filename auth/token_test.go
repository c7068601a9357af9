package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "unit_test_secret_key_for_comms_hub"

func TestGenerateAndVerifyToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(testSecret, "user-42", "dispatcher", time.Hour)
	req.NoError(err)

	v := NewJWTVerifier(testSecret)
	userID, role, err := v.VerifyToken(token)
	req.NoError(err)
	req.Equal("user-42", userID)
	req.Equal("dispatcher", role)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(testSecret, "user-42", "dispatcher", time.Hour)
	req.NoError(err)

	v := NewJWTVerifier("a_completely_different_secret")
	_, _, err = v.VerifyToken(token)
	req.Error(err)
}

func TestVerifyToken_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(testSecret, "user-42", "responder", -time.Minute)
	req.NoError(err)

	v := NewJWTVerifier(testSecret)
	_, _, err = v.VerifyToken(token)
	req.Error(err)
}
