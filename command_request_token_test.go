package userauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMissionTokenDeliversToken(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	codec := newTestCodec()
	notifier := newCapturingNotifier()

	user := seedUser(t, repo)

	handler := NewRequestMissionTokenHandler(repo, codec, time.Hour).
		WithNotifier(notifier)

	var resp *RequestMissionTokenResponse
	err := handler.Execute(context.Background(), RequestMissionTokenMessage{
		Email:      user.Email,
		Mission:    MissionRegistrationConfirmation,
		OnResponse: func(r *RequestMissionTokenResponse) { resp = r },
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)

	claims, err := codec.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, MissionRegistrationConfirmation, claims.Mission)

	subject, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	delivery := notifier.waitForDelivery(t)
	assert.Equal(t, user.Email, delivery.Recipient)
	assert.Equal(t, resp.Token, delivery.Token)
	assert.Equal(t, MFATokenTemplate, delivery.Template)
}

func TestRequestMissionTokenRejectsAccessMission(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)
	notifier := newCapturingNotifier()

	user := seedUser(t, repo)

	handler := NewRequestMissionTokenHandler(repo, newTestCodec(), time.Hour).
		WithNotifier(notifier)

	err := handler.Execute(context.Background(), RequestMissionTokenMessage{
		Email:   user.Email,
		Mission: MissionAccessToken,
	})
	assert.ErrorIs(t, err, ErrMissionNotDeliverable)
	assert.Empty(t, notifier.sent)
}

func TestRequestMissionTokenUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepositoryManager(db)

	handler := NewRequestMissionTokenHandler(repo, newTestCodec(), time.Hour)

	err := handler.Execute(context.Background(), RequestMissionTokenMessage{
		Email:   "nobody@example.com",
		Mission: MissionRecoverPassword,
	})
	assert.ErrorIs(t, err, ErrPrincipalNotFound)
}
