package userauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*Auther, RepositoryManager, *TokenCodec) {
	t.Helper()

	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	codec := newTestCodec()
	revoker := NewMemoryRevocationStore()

	return NewAuthenticator(repo, codec, revoker, testConfig()), repo, codec
}

func TestLoginIssuesAccessToken(t *testing.T) {
	auther, repo, codec := newAuthFixture(t)
	user := seedUser(t, repo, confirmed())

	token, err := auther.Login(context.Background(), user.Email, testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, MissionAccessToken, claims.Mission)

	subject, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	auther, repo, _ := newAuthFixture(t)
	user := seedUser(t, repo, confirmed())

	_, err := auther.Login(context.Background(), user.Email, "wrong guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	auther, _, _ := newAuthFixture(t)

	_, err := auther.Login(context.Background(), "nobody@example.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsUnconfirmedAccount(t *testing.T) {
	auther, repo, _ := newAuthFixture(t)
	user := seedUser(t, repo)

	// Same rejection as a wrong password, never a not-found.
	_, err := auther.Login(context.Background(), user.Email, testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccessVerifierAcceptsRepeatedUse(t *testing.T) {
	auther, repo, _ := newAuthFixture(t)
	user := seedUser(t, repo, confirmed())

	token, err := auther.Login(context.Background(), user.Email, testPassword)
	require.NoError(t, err)

	verifier := auther.AccessVerifier()
	for i := 0; i < 3; i++ {
		got, err := verifier.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	}
}

func TestAccessVerifierRejectsMissionTokens(t *testing.T) {
	auther, repo, codec := newAuthFixture(t)
	user := seedUser(t, repo, confirmed())

	token, err := codec.Issue(user.ID, MissionRecoverPassword, time.Hour)
	require.NoError(t, err)

	_, err = auther.AccessVerifier().Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
