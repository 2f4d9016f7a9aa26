package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var signingKey = []byte("4e48e1f4f4f2a1b8cc1772b9e2ba5f10")

func TestGenerateToken_Round_Trip(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("alice", signingKey, time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(token, signingKey)
	req.NoError(err)
	req.Equal("alice", claims.UserID)
	req.Equal("chat-relay", claims.Issuer)
}

func TestValidateToken_Wrong_Key(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("alice", signingKey, time.Hour)
	req.NoError(err)

	_, err = ValidateToken(token, []byte("some-other-signing-key-32-bytes!"))
	req.Error(err)
}

func TestValidateToken_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("alice", signingKey, -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token, signingKey)
	req.Error(err)
}

func TestValidateToken_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ValidateToken("definitely.not.a-token", signingKey)
	req.Error(err)
}
